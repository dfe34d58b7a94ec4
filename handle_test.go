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

func handleGreet(_ context.Context, w appkit.ResponseWriter, r *http.Request) error {
	w.Header().Set("Is-Bar", "rab")
	w.WriteHeader(http.StatusCreated)

	fmt.Fprintf(w, `hello at %s`, r.URL.Path)

	if r.URL.Path == "/trigger-error" {
		return errors.New("triggered error")
	}

	return nil
}

func TestHandleBasic(t *testing.T) {
	logs := appkit.NewTestLogger(t)
	shdlr := appkit.ToStd(appkit.HandlerFunc(handleGreet), -1, logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bar", nil)
	shdlr.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, `rab`, rec.Header().Get("Is-Bar"))
	require.Equal(t, `hello at /bar`, rec.Body.String())
}

func TestHandleDefaultError(t *testing.T) {
	logs := appkit.NewTestLogger(t)
	shdlr := appkit.ToStd(appkit.HandlerFunc(handleGreet), -1, logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/trigger-error", nil)
	shdlr.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, ``, rec.Header().Get("Is-Bar"))
	require.Equal(t, `Internal Server Error`+"\n", rec.Body.String())
	require.Equal(t, int64(1), logs.NumLogUnhandledServeError)
}

func TestChainOrder(t *testing.T) {
	var res string

	hdlr := appkit.HandlerFunc(func(context.Context, appkit.ResponseWriter, *http.Request) error {
		res += "inner"
		return nil
	})

	tag := func(s string) appkit.Middleware {
		return func(next appkit.Handler) appkit.Handler {
			return appkit.HandlerFunc(func(ctx context.Context, w appkit.ResponseWriter, r *http.Request) error {
				res += s + "("
				err := next.ServeAppHTTP(ctx, w, r)
				res += ")" + s

				return err
			})
		}
	}

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	w := appkit.NewResponseWriter(rec, -1)
	defer w.Free()

	require.NoError(t, appkit.Chain(hdlr, tag("1"), tag("2")).ServeAppHTTP(req.Context(), w, req))
	require.Equal(t, "1(2(inner)2)1", res)
}
