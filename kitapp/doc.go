// Package kitapp composes the appkit building blocks into a runnable HTTP application.
//
// [NewApp] wires, through fx, an environment-driven [Config], a zap logger, the routing
// mux with the standard middleware stack (trace binding, error responding, access
// logging), CORS, a health check endpoint, a prometheus metrics endpoint, optional
// OpenTelemetry tracing, and graceful shutdown with ordered startup and shutdown hooks.
//
// A complete service:
//
//	func main() {
//	    kitapp.NewApp(func(m *kitapp.Mux) {
//	        m.HandleFunc("GET /hello", func(ctx context.Context, w appkit.ResponseWriter, r *http.Request) error {
//	            return json.NewEncoder(w).Encode(map[string]string{"message": "hello"})
//	        })
//	    }).Run()
//	}
//
// Configuration comes from APP_* environment variables layered over an optional YAML file
// named by APP_CONFIG_FILE; see [Config]. The kitapptest subpackage builds the identical
// dependency graph on top of fxtest for integration tests.
package kitapp
