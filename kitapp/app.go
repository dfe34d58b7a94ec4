package kitapp

import (
	"context"
	"net/http"
	"time"

	"github.com/appkit-go/appkit"
	"go.uber.org/fx"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds the assembly-time configuration built up by [Option] values.
type AppConfig struct {
	ServerConfig
	Registry  *appkit.Registry
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection, typically fx.Provide of handler
// constructors the routing function depends on.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom health check handler. If not set, a default handler
// returning 200 with an "ok" body is used.
func WithHealthHandler(h func(http.ResponseWriter, *http.Request)) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// WithMiddleware installs additional route middleware, applied inside the built-in trace,
// error-responder and access-log middleware so errors it returns are still mapped to
// responses.
func WithMiddleware(mw ...appkit.Middleware) Option {
	return func(c *AppConfig) {
		c.Middlewares = append(c.Middlewares, mw...)
	}
}

// WithStartupHook appends a hook that runs before the server starts accepting
// connections. A hook error aborts application startup.
func WithStartupHook(h Hook) Option {
	return func(c *AppConfig) {
		c.StartupHooks = append(c.StartupHooks, h)
	}
}

// WithShutdownHook appends a hook that runs after the graceful drain period. Hook errors
// are logged and do not stop the remaining hooks.
func WithShutdownHook(h Hook) Option {
	return func(c *AppConfig) {
		c.ShutdownHooks = append(c.ShutdownHooks, h)
	}
}

// WithErrorRegistry uses the given registry instead of the process-wide appkit.Default.
func WithErrorRegistry(reg *appkit.Registry) Option {
	return func(c *AppConfig) {
		c.Registry = reg
	}
}

// NewApp creates a batteries-included application with dependency injection.
//
// The routing function can request any types that are provided via fx options. At minimum
// it should accept *Mux for routing:
//
//	kitapp.NewApp(func(m *kitapp.Mux, h *Handlers) {
//	    m.HandleFunc("GET /items", h.ListItems, "list-items")
//	},
//	    kitapp.WithFx(fx.Provide(NewHandlers)),
//	    kitapp.WithShutdownHook(closeDatabase),
//	).Run()
func NewApp(routing any, opts ...Option) *App {
	return &App{app: fx.New(FxOptions(routing, opts...)...)}
}

// FxOptions builds the full fx option set for an application. Exposed so test helpers can
// construct the identical dependency graph.
func FxOptions(routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	conf, err := ParseConfig()
	if err != nil {
		return []fx.Option{fx.Error(err)}
	}

	reg := cfg.Registry
	if reg == nil {
		reg = appkit.Default()
	}

	baseOpts := make([]fx.Option, 0, 12+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Supply(conf),
		fx.Supply(cfg.ServerConfig),
		fx.Supply(reg),
		fx.Provide(NewLogger),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(NewMetrics),
		fx.Provide(NewMux),
		fx.Provide(NewServer),
		fx.Provide(NewHTTPTransport),
		fx.Provide(NewHTTPClient),
		// one extra second so the drain period itself cannot time the stop out
		fx.StopTimeout(conf.GracefulTimeout + time.Second),
		fx.Invoke(routing),
		fx.Invoke(startServerHook),
	}...)

	baseOpts = append(baseOpts, cfg.FxOptions...)

	return baseOpts
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start brings the application up: startup hooks first, then the listener. It returns an
// error when any startup hook or provider fails, in which case the application never
// reaches a serving state.
func (a *App) Start(ctx context.Context) error {
	return a.app.Start(ctx)
}

// Stop drains in-flight requests for up to the configured graceful timeout, then runs the
// shutdown hooks in order.
func (a *App) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}
