package kitapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/appkit-go/appkit"
	"github.com/cockroachdb/errors"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Mux is an alias for appkit.ServeMux.
type Mux = appkit.ServeMux

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler func(http.ResponseWriter, *http.Request)
	Middlewares   []appkit.Middleware
	StartupHooks  []Hook
	ShutdownHooks []Hook
}

// NewMux creates the routing mux with the standard middleware stack installed: trace
// binding outermost, then the error responder, then access logging, then any caller
// middleware. The order matters: the access logger sits inside the responder so a failed
// request produces a request line and an error line but never a response line.
func NewMux(conf Config, srvConf ServerConfig, logs *zap.Logger, reg *appkit.Registry) *Mux {
	mux := appkit.NewServeMuxWith(-1, appkit.NewZapLogger(logs), http.NewServeMux())

	mws := []appkit.Middleware{
		appkit.WithTrace(logs),
		appkit.ErrorResponder(reg, conf.Stage.ExposeErrorDetail()),
		appkit.AccessLog(conf.LogMaxLength),
	}

	mux.Use(append(mws, srvConf.Middlewares...)...)

	return mux
}

// ServerParams holds the dependencies for creating the HTTP server.
type ServerParams struct {
	fx.In

	Conf       Config
	SrvConf    ServerConfig
	Mux        *Mux
	Logs       *zap.Logger
	Metrics    *Metrics
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewServer assembles the ready-to-serve HTTP server: application routes mounted under
// the configured prefix, the health check and metrics endpoints beside them, and request
// metrics, tracing and CORS wrapped around the whole thing.
func NewServer(params ServerParams) *http.Server {
	conf := params.Conf

	root := http.NewServeMux()

	healthHandler := params.SrvConf.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}

	root.HandleFunc("GET "+conf.HealthCheckPath, healthHandler)
	root.Handle("GET "+conf.MetricsPath, params.Metrics.Handler())

	if conf.DocsEnable {
		root.HandleFunc("GET /{$}", serviceInfoHandler(conf))
	}

	prefix := strings.TrimSuffix(conf.PrefixURL, "/")
	if prefix == "" {
		root.Handle("/", params.Mux)
	} else {
		root.Handle(prefix+"/", http.StripPrefix(prefix, params.Mux))
	}

	// Health and metrics probes are high-frequency noise; keep them out of the
	// request metrics and traces.
	handler := params.Metrics.Middleware(root, conf.HealthCheckPath, conf.MetricsPath)
	handler = withTracing(params.TracerProv, params.Propagator, conf.ServiceName,
		conf.HealthCheckPath, conf.MetricsPath)(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(handler)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// startServerHook registers lifecycle hooks for the HTTP server. Startup hooks run before
// the listener opens and abort boot on failure. On stop, the server drains in-flight
// requests for up to the graceful timeout before the shutdown hooks run best-effort.
func startServerHook(
	lc fx.Lifecycle,
	server *http.Server,
	logs *zap.Logger,
	conf Config,
	srvConf ServerConfig,
	reg *appkit.Registry,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			reg.Freeze()

			if err := runStartupHooks(ctx, logs, srvConf.StartupHooks); err != nil {
				return err
			}

			listener, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return errors.Wrapf(err, "failed to listen on %s", server.Addr)
			}

			logs.Info("starting server",
				zap.String("addr", listener.Addr().String()),
				zap.String("stage", string(conf.Stage)))

			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logs.Error("server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logs.Info("stopping server", zap.Duration("graceful_timeout", conf.GracefulTimeout))

			drainCtx, cancel := context.WithTimeout(ctx, conf.GracefulTimeout)
			defer cancel()

			if err := server.Shutdown(drainCtx); err != nil {
				logs.Error("graceful shutdown incomplete", zap.Error(err))
			}

			runShutdownHooks(ctx, logs, srvConf.ShutdownHooks)

			return nil
		},
	})
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// serviceInfoHandler serves a small JSON document at the root path describing the service,
// taking the place of a docs landing page.
func serviceInfoHandler(conf Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"title":   conf.Title,
			"version": conf.Version,
			"stage":   string(conf.Stage),
		})
	}
}
