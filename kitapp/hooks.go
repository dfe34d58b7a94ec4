package kitapp

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Hook is a startup or shutdown callback. Hooks run sequentially in declaration order:
// startup hooks before the server accepts connections, shutdown hooks after the drain
// period.
type Hook func(ctx context.Context) error

// runStartupHooks runs the hooks in order and fails fast: a hook error aborts boot.
func runStartupHooks(ctx context.Context, logs *zap.Logger, hooks []Hook) error {
	for i, hook := range hooks {
		logs.Debug("running startup hook", zap.Int("hook", i))

		if err := hook(ctx); err != nil {
			return errors.Wrapf(err, "startup hook %d failed", i)
		}
	}

	return nil
}

// runShutdownHooks runs the hooks in order, best-effort: a failing hook is logged and the
// remaining hooks still run.
func runShutdownHooks(ctx context.Context, logs *zap.Logger, hooks []Hook) {
	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			logs.Error("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
		}
	}
}
