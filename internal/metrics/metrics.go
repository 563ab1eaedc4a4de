// Package metrics implements the optional observability sink named in
// spec.md §6: newReadConnections, newWriteConnections, connectionFailures,
// directoryReadCount, and directoryWriteCount. The hive façade calls a Sink
// on every connection acquisition and every directory read/write; when no
// sink is configured the façade uses NoopSink, which keeps no counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sink is the counter contract the hive façade drives. Implementations must
// be safe for concurrent use.
type Sink interface {
	NewReadConnection()
	NewWriteConnection()
	ConnectionFailure()
	DirectoryRead()
	DirectoryWrite()
}

// PrometheusSink implements Sink with real Prometheus counters, registered
// against the given registerer (pass prometheus.DefaultRegisterer to expose
// them on the default /metrics handler).
type PrometheusSink struct {
	readConnections  prometheus.Counter
	writeConnections prometheus.Counter
	connFailures     prometheus.Counter
	directoryReads   prometheus.Counter
	directoryWrites  prometheus.Counter
}

// NewPrometheusSink creates and registers the five counters under the
// "hivedir" namespace.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	s := &PrometheusSink{
		readConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hivedir", Name: "new_read_connections_total",
			Help: "Number of read connections opened through the hive façade.",
		}),
		writeConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hivedir", Name: "new_write_connections_total",
			Help: "Number of read-write connections opened through the hive façade.",
		}),
		connFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hivedir", Name: "connection_failures_total",
			Help: "Number of connection acquisitions that failed (driver, lock, or SQL errors).",
		}),
		directoryReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hivedir", Name: "directory_read_total",
			Help: "Number of directory lookups performed.",
		}),
		directoryWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hivedir", Name: "directory_write_total",
			Help: "Number of directory inserts, updates, and deletes performed.",
		}),
	}
	for _, c := range []prometheus.Collector{
		s.readConnections, s.writeConnections, s.connFailures, s.directoryReads, s.directoryWrites,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PrometheusSink) NewReadConnection()  { s.readConnections.Inc() }
func (s *PrometheusSink) NewWriteConnection() { s.writeConnections.Inc() }
func (s *PrometheusSink) ConnectionFailure()  { s.connFailures.Inc() }
func (s *PrometheusSink) DirectoryRead()      { s.directoryReads.Inc() }
func (s *PrometheusSink) DirectoryWrite()     { s.directoryWrites.Inc() }

// NoopSink discards everything. Useful as a default when the embedding
// application doesn't want Prometheus wired in.
type NoopSink struct{}

func (NoopSink) NewReadConnection()  {}
func (NoopSink) NewWriteConnection() {}
func (NoopSink) ConnectionFailure()  {}
func (NoopSink) DirectoryRead()      {}
func (NoopSink) DirectoryWrite()     {}
