// Package syncd implements the sync daemon of spec.md §4.7: a ticker-driven
// loop that compares the locally cached HiveSemaphore revision against the
// persisted one and triggers a full metadata reload when they diverge.
//
// Grounded on internal/coordinator/health_monitor.go's HealthMonitor: the
// same ticker + context + WaitGroup start/stop shape, generalized from
// periodic node health checks to periodic revision checks, with the
// swallow-and-retry error handling the teacher applies to individual node
// check failures applied here to a failed reload.
package syncd

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dreamware/hivedir/internal/hivelog"
)

// Reloader performs one synchronization attempt: it compares the persisted
// revision against the locally known one and, if they differ, reloads all
// metadata gateways into a fresh object graph and swaps it in atomically.
// Implemented by the hive façade; syncd knows nothing about the metadata
// graph itself.
type Reloader interface {
	ForceSynchronize(ctx context.Context) error
}

// Daemon runs Reloader.ForceSynchronize on a ticker, cooperatively and
// single-threaded per hive instance, matching spec.md §4.7 and §5.
type Daemon struct {
	reloader Reloader
	interval time.Duration
	log      *hivelog.Logger

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Daemon that calls reloader.ForceSynchronize every interval.
func New(reloader Reloader, interval time.Duration, log *hivelog.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		reloader: reloader,
		interval: interval,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the ticker loop in the current goroutine. It blocks until ctx
// (or the daemon's own Stop) is canceled. An initial synchronization attempt
// runs immediately, before the first tick.
func (d *Daemon) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.wg.Add(1)
	defer d.wg.Done()

	if ctx == nil {
		ctx = d.ctx
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			d.runOnce(ctx)
		case <-ctx.Done():
			d.log.Infof("sync daemon stopping: %v", ctx.Err())
			return
		case <-d.ctx.Done():
			d.log.Infof("sync daemon stopping: internal cancellation")
			return
		}
	}
}

// Stop cancels the daemon's internal context and waits for Start to return.
func (d *Daemon) Stop() {
	d.cancel()
	d.wg.Wait()
}

// runOnce executes one ForceSynchronize call. Per spec.md §7, sync-daemon
// errors are logged and swallowed — the next tick retries.
func (d *Daemon) runOnce(ctx context.Context) {
	cycleID := uuid.NewString()
	cycleLog := d.log.WithField("sync_cycle", cycleID)
	if err := d.reloader.ForceSynchronize(ctx); err != nil {
		cycleLog.Warnf("sync cycle failed, will retry next tick: %v", err)
		return
	}
	cycleLog.Debugf("sync cycle complete")
}
