package appkit

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Mount mounts a Handler on a sub-path pattern. The mounted handler receives requests with
// the mount prefix stripped from the path. Middleware registered via Use() sees the original
// path; the strip happens after middleware.
func (m *ServeMux) Mount(pattern string, handler Handler) {
	method, path := splitMethodPattern(pattern)

	stripped := stripPrefix(path, handler)
	wrapped := Chain(stripped, m.middlewares.buffered...)
	stdHandler := ToStd(wrapped, m.bufLimit, m.logs)

	exact := method + path
	subtree := method + path + "/"

	m.handle(exact, stdHandler)
	m.handle(subtree, stdHandler)
}

// MountFunc mounts a HandlerFunc on a sub-path pattern. The mounted handler receives
// requests with the mount prefix stripped from the path.
func (m *ServeMux) MountFunc(pattern string, handler HandlerFunc) {
	m.Mount(pattern, handler)
}

// MountStd mounts a standard library [http.Handler] on a sub-path pattern. The mounted
// handler receives requests with the mount prefix stripped from the path.
func (m *ServeMux) MountStd(pattern string, handler http.Handler) {
	m.Mount(pattern, HandlerFunc(func(_ context.Context, w ResponseWriter, r *http.Request) error {
		handler.ServeHTTP(w, r)
		return nil
	}))
}

func splitMethodPattern(pattern string) (method, path string) {
	if idx := strings.LastIndex(pattern, "/"); idx > 0 {
		prefix := pattern[:idx]
		if spaceIdx := strings.Index(prefix, " "); spaceIdx >= 0 {
			return pattern[:spaceIdx+1], pattern[spaceIdx+1:]
		}
	}

	return "", pattern
}

func stripPrefix(prefix string, handler Handler) Handler {
	return HandlerFunc(func(ctx context.Context, w ResponseWriter, r *http.Request) error {
		p := strings.TrimPrefix(r.URL.Path, prefix)
		if p == "" {
			p = "/"
		}

		rp := ""
		if r.URL.RawPath != "" {
			rp = strings.TrimPrefix(r.URL.RawPath, prefix)
			if rp == "" {
				rp = "/"
			}
		}

		r2 := new(http.Request)
		*r2 = *r
		r2.URL = new(url.URL)
		*r2.URL = *r.URL
		r2.URL.Path = p
		r2.URL.RawPath = rp

		return handler.ServeAppHTTP(ctx, w, r2)
	})
}
