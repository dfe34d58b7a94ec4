// Package example implements example middleware in an outside package.
package example

import (
	"context"
	"net/http"

	"github.com/appkit-go/appkit"
	"go.uber.org/zap"
)

// Middleware provides an example for middleware that enriches the request-scoped logger
// with an extra field, re-binding it through the public context accessors.
func Middleware(field zap.Field) appkit.Middleware {
	return func(n appkit.Handler) appkit.Handler {
		return appkit.HandlerFunc(func(ctx context.Context, w appkit.ResponseWriter, r *http.Request) error {
			ctx = appkit.WithLogger(ctx, appkit.Log(ctx).With(field))

			return n.ServeAppHTTP(ctx, w, r.WithContext(ctx))
		})
	}
}
