package appkit_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/appkit-go/appkit"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func apiHandler() appkit.HandlerFunc {
	return func(_ context.Context, w appkit.ResponseWriter, r *http.Request) error {
		fmt.Fprintf(w, "path:%s", r.URL.Path)
		return nil
	}
}

func TestMountSubPath(t *testing.T) {
	mux := appkit.NewServeMux()
	mux.MountFunc("/api", apiHandler())

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "path:/users", rec.Body.String())
}

func TestMountExactPrefix(t *testing.T) {
	mux := appkit.NewServeMux()
	mux.MountFunc("/api", apiHandler())

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "path:/", rec.Body.String())
}

func TestMountDeeplyNested(t *testing.T) {
	mux := appkit.NewServeMux()
	mux.MountFunc("/api", apiHandler())

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/users/123", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "path:/v1/users/123", rec.Body.String())
}

type ctxKey string

func TestMountMiddlewareSeesOriginalPath(t *testing.T) {
	mux := appkit.NewServeMux()

	mux.Use(func(next appkit.Handler) appkit.Handler {
		return appkit.HandlerFunc(func(ctx context.Context, w appkit.ResponseWriter, r *http.Request) error {
			ctx = context.WithValue(ctx, ctxKey("mw_path"), r.URL.Path)
			return next.ServeAppHTTP(ctx, w, r.WithContext(ctx))
		})
	})

	mux.MountFunc("/api", func(ctx context.Context, w appkit.ResponseWriter, r *http.Request) error {
		mwPath, _ := ctx.Value(ctxKey("mw_path")).(string)
		fmt.Fprintf(w, "mw:%s,handler:%s", mwPath, r.URL.Path)

		return nil
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "mw:/api/users,handler:/users", rec.Body.String())
}

func TestMountMethodPattern(t *testing.T) {
	mux := appkit.NewServeMux()
	mux.MountFunc("POST /api", apiHandler())

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/users", nil)
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "path:/users", rec.Body.String())

	rec, req = httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/users", nil)
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMountErrorHandling(t *testing.T) {
	mux := appkit.NewServeMux()
	mux.MountFunc("/api", func(context.Context, appkit.ResponseWriter, *http.Request) error {
		return errors.New("something broke")
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fail", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Internal Server Error\n", rec.Body.String())
}
