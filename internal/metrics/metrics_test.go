package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusSinkIncrementsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	s.NewReadConnection()
	s.NewReadConnection()
	s.NewWriteConnection()
	s.ConnectionFailure()
	s.DirectoryRead()
	s.DirectoryWrite()
	s.DirectoryWrite()

	assert.Equal(t, float64(2), testutil.ToFloat64(s.readConnections))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.writeConnections))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.connFailures))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.directoryReads))
	assert.Equal(t, float64(2), testutil.ToFloat64(s.directoryWrites))
}

func TestNewPrometheusSinkRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	_, err = NewPrometheusSink(reg)
	assert.Error(t, err)
}

func TestNoopSinkDoesNothing(t *testing.T) {
	var s NoopSink
	assert.NotPanics(t, func() {
		s.NewReadConnection()
		s.NewWriteConnection()
		s.ConnectionFailure()
		s.DirectoryRead()
		s.DirectoryWrite()
	})
}
