package syncd

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dreamware/hivedir/internal/hivelog"
)

type countingReloader struct {
	calls  int32
	failN  int32 // fail the first failN calls
	failed int32
}

func (r *countingReloader) ForceSynchronize(ctx context.Context) error {
	n := atomic.AddInt32(&r.calls, 1)
	if n <= r.failN {
		atomic.AddInt32(&r.failed, 1)
		return assertErr
	}
	return nil
}

var assertErr = errString("synchronize failed")

type errString string

func (e errString) Error() string { return string(e) }

func testLogger() *hivelog.Logger {
	return hivelog.New(logrus.ErrorLevel)
}

func TestDaemonRunsImmediatelyOnStart(t *testing.T) {
	r := &countingReloader{}
	d := New(r, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()

	waitForCalls(t, r, 1)
	cancel()
	<-done
}

func TestDaemonTicksRepeatedly(t *testing.T) {
	r := &countingReloader{}
	d := New(r, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()

	waitForCalls(t, r, 3)
	cancel()
	<-done
}

func TestDaemonSwallowsErrorsAndRetries(t *testing.T) {
	r := &countingReloader{failN: 2}
	d := New(r, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()

	waitForCalls(t, r, 3)
	cancel()
	<-done

	assert.Equal(t, int32(2), atomic.LoadInt32(&r.failed))
}

func TestDaemonStopEndsRunningStart(t *testing.T) {
	r := &countingReloader{}
	d := New(r, time.Hour, testLogger())

	done := make(chan struct{})
	go func() {
		d.Start(context.Background())
		close(done)
	}()

	waitForCalls(t, r, 1)
	d.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestDaemonSecondStartIsNoop(t *testing.T) {
	r := &countingReloader{}
	d := New(r, time.Hour, testLogger())

	go d.Start(context.Background())
	waitForCalls(t, r, 1)

	// a second Start call on an already-running daemon returns immediately.
	d.Start(context.Background())

	d.Stop()
}

func waitForCalls(t *testing.T, r *countingReloader, n int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&r.calls) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d calls, got %d", n, atomic.LoadInt32(&r.calls))
}
