package appkit

import (
	"log"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

// Logger can be implemented to get informed about errors the mux handles on its own.
type Logger interface {
	LogUnhandledServeError(err error)
	LogImplicitFlushError(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.Logger.Printf("appkit: unhandled serve error: %s", err)
}

func (l stdLogger) LogImplicitFlushError(err error) {
	l.Logger.Printf("appkit: error while flushing implicitly: %s", err)
}

// NewStdLogger adapts a standard library logger. A nil logger falls back to log.Default.
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}

	return stdLogger{l}
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogUnhandledServeError(err error) {
	l.Logger.Error("unhandled serve error", zap.Error(err))
}

func (l zapLogger) LogImplicitFlushError(err error) {
	l.Logger.Error("error while flushing implicitly", zap.Error(err))
}

// NewZapLogger adapts a zap logger to the mux [Logger] interface.
func NewZapLogger(l *zap.Logger) Logger {
	return zapLogger{l.Named("appkit")}
}

// TestLogger counts mux-level errors so tests can assert on them.
type TestLogger struct {
	tb testing.TB

	NumLogUnhandledServeError int64
	NumLogImplicitFlushError  int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledServeError, 1)
	l.tb.Logf("appkit: unhandled serve error: %s", err)
}

func (l *TestLogger) LogImplicitFlushError(err error) {
	atomic.AddInt64(&l.NumLogImplicitFlushError, 1)
	l.tb.Logf("appkit: error while flushing implicitly: %s", err)
}

var _ Logger = &TestLogger{}
