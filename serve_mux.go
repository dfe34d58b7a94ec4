package appkit

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/samber/lo"
)

// ServeMux is an HTTP multiplexer with buffered responses, error handling, and named routes.
type ServeMux struct {
	logs        Logger
	bufLimit    int
	mux         *http.ServeMux
	names       map[string]string
	middlewares struct {
		captured bool
		buffered []Middleware
	}
}

// NewServeMux creates a new ServeMux with default settings.
func NewServeMux() *ServeMux {
	return NewServeMuxWith(-1, NewStdLogger(log.Default()), http.NewServeMux())
}

// NewServeMuxWith creates a ServeMux with custom settings.
func NewServeMuxWith(bufLimit int, logger Logger, baseMux *http.ServeMux) *ServeMux {
	return &ServeMux{
		bufLimit: bufLimit,
		logs:     logger,
		mux:      baseMux,
		names:    make(map[string]string),
	}
}

// Pattern returns the pattern that was registered under the given name.
func (m *ServeMux) Pattern(name string) (string, error) {
	pattern, ok := m.names[name]
	if !ok {
		return "", fmt.Errorf("no pattern named: %q, got: %v", name, lo.Keys(m.names))
	}

	return pattern, nil
}

// Use allows providing of middleware. It must be called before any route is registered.
func (m *ServeMux) Use(mw ...Middleware) {
	m.ensureNoUseAfterHandle()
	m.middlewares.buffered = append(m.middlewares.buffered, mw...)
}

// HandleFunc handles the request given the pattern using a function.
func (m *ServeMux) HandleFunc(pattern string, handler HandlerFunc, name ...string) {
	m.Handle(pattern, handler, name...)
}

// HandleStd registers a standard library [http.Handler] for the given pattern. Middleware
// registered via [ServeMux.Use] is applied. Since a standard handler cannot return an
// error, error ownership stays with the handler itself.
func (m *ServeMux) HandleStd(pattern string, handler http.Handler, name ...string) {
	m.Handle(pattern, HandlerFunc(func(_ context.Context, w ResponseWriter, r *http.Request) error {
		handler.ServeHTTP(w, r)
		return nil
	}), name...)
}

// Handle handles the request given a handler.
func (m *ServeMux) Handle(pattern string, handler Handler, name ...string) {
	m.handle(pattern, ToStd(
		Chain(handler, m.middlewares.buffered...),
		m.bufLimit,
		m.logs,
	), name...)
}

// ServeHTTP makes the serve mux implement the http.Handler interface.
func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mux.ServeHTTP(w, r)
}

func (m *ServeMux) handle(pattern string, handler http.Handler, name ...string) {
	m.middlewares.captured = true

	if len(name) > 0 {
		if _, exists := m.names[name[0]]; exists {
			panic("appkit: pattern with name " + name[0] + " already exists")
		}

		m.names[name[0]] = pattern
	}

	m.mux.Handle(pattern, handler)
}

func (m *ServeMux) ensureNoUseAfterHandle() {
	if m.middlewares.captured {
		panic("appkit: cannot call Use() after calling Handle")
	}
}
