// Package logging builds the logrus loggers used across the compiler.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Level selects how chatty the compiler is.
type Level int

const (
	LevelWarn Level = iota
	LevelInfo
	LevelDebug
)

// New returns a text logger writing to w. Timestamps are off since the
// compiler is a short-lived command.
func New(w io.Writer, level Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	switch level {
	case LevelDebug:
		l.SetLevel(logrus.DebugLevel)
	case LevelInfo:
		l.SetLevel(logrus.InfoLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

// Discard returns a logger that drops everything. Library packages fall
// back to it when the caller passes nil.
func Discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Discard()
	}
	return log
}
