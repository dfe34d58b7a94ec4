package kitapp

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the application config: minimum level,
// JSON encoding for log shippers or console encoding for humans.
func NewLogger(conf Config) (*zap.Logger, error) {
	var cfg zap.Config
	if conf.LogJSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(conf.LogLevel)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

var processLogger struct {
	once sync.Once
	logs *zap.Logger
}

// L returns the process-wide logger, built lazily from the environment on first access.
// Later calls return the already-configured instance; re-configuration after first use is
// unsupported. Code running inside a request should prefer the trace-correlated
// appkit.Log(ctx) instead.
func L() *zap.Logger {
	processLogger.once.Do(func() {
		conf, err := ParseConfig()
		if err != nil {
			processLogger.logs = zap.Must(zap.NewProduction())
			processLogger.logs.Error("failed to parse logging environment, using defaults", zap.Error(err))

			return
		}

		logs, err := NewLogger(conf)
		if err != nil {
			logs = zap.Must(zap.NewProduction())
		}

		processLogger.logs = logs
	})

	return processLogger.logs
}
