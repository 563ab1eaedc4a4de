// Package hivelog wraps logrus with the field names the rest of the hive
// uses consistently: dimension, node, key, revision, and op. It replaces the
// teacher's bare log.Printf calls with structured, leveled logging.
package hivelog

import "github.com/sirupsen/logrus"

// Logger is the hive's structured logger. It is a thin wrapper so call sites
// read "log.Dimension(name).Infof(...)" instead of repeating
// WithField("dimension", name) everywhere.
type Logger struct {
	entry *logrus.Entry
}

// New builds a Logger around a fresh logrus.Logger at the given level.
func New(level logrus.Level) *Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{entry: logrus.NewEntry(l)}
}

// NewFromLogrus wraps an existing *logrus.Logger, e.g. one the embedding
// application already configured.
func NewFromLogrus(l *logrus.Logger) *Logger {
	return &Logger{entry: logrus.NewEntry(l)}
}

func (l *Logger) with(fields logrus.Fields) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// Dimension returns a logger scoped to a partition dimension.
func (l *Logger) Dimension(name string) *Logger { return l.with(logrus.Fields{"dimension": name}) }

// Node returns a logger scoped to a node name.
func (l *Logger) Node(name string) *Logger { return l.with(logrus.Fields{"node": name}) }

// Key returns a logger scoped to a directory key.
func (l *Logger) Key(key string) *Logger { return l.with(logrus.Fields{"key": key}) }

// Revision returns a logger scoped to a hive revision number.
func (l *Logger) Revision(rev int64) *Logger { return l.with(logrus.Fields{"revision": rev}) }

// Op returns a logger scoped to a façade operation name.
func (l *Logger) Op(op string) *Logger { return l.with(logrus.Fields{"op": op}) }

// WithField is the general escape hatch for one-off fields.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.with(logrus.Fields{key: value})
}

func (l *Logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
