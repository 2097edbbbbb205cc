package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for logging messages.
type Logger interface {
	Error(msg string, err error)
	Warn(msg string)
	Info(msg string)
	Debug(msg string)
	// WithField returns a Logger that attaches key=value to every entry.
	WithField(key string, value interface{}) Logger
	// Printf lets the logger act as a writer for gorm and cron. Both only print slow
	// queries and failures through it, so entries are written at warn level.
	Printf(format string, args ...interface{})
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a logrus backed logger writing to stdout at the given level.
// An unknown level falls back to info.
func New(level string) Logger {
	return NewWithOutput(os.Stdout, level)
}

// NewWithOutput creates a logrus backed logger writing to w.
func NewWithOutput(w io.Writer, level string) Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl
	return &logrusLogger{entry: logrus.NewEntry(log)}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return NewWithOutput(io.Discard, "panic")
}

// Error logs an error message together with the error that caused it.
func (l *logrusLogger) Error(msg string, err error) {
	if err != nil {
		l.entry.WithError(err).Error(msg)
		return
	}
	l.entry.Error(msg)
}

// Warn logs a warning message.
func (l *logrusLogger) Warn(msg string) {
	l.entry.Warn(msg)
}

// Info logs an informational message.
func (l *logrusLogger) Info(msg string) {
	l.entry.Info(msg)
}

// Debug logs a debug message.
func (l *logrusLogger) Debug(msg string) {
	l.entry.Debug(msg)
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) Printf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}
