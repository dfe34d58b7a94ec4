// Package kitapptest provides test helpers for kitapp applications.
//
// It constructs the identical DI graph as [kitapp.NewApp] but uses [fxtest.App] which
// fails the test immediately on DI errors.
//
// Example:
//
//	kitapptest.SetBaseEnv(t, 18081)
//	app := kitapptest.New(t, routing, kitapp.WithErrorRegistry(reg))
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package kitapptest

import (
	"testing"

	"github.com/appkit-go/appkit/kitapp"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing kitapp applications.
type App struct {
	*fxtest.App
}

// New creates a test app with the same DI graph as [kitapp.NewApp].
func New(t testing.TB, routing any, opts ...kitapp.Option) *App {
	return &App{App: fxtest.New(t, kitapp.FxOptions(routing, opts...)...)}
}
