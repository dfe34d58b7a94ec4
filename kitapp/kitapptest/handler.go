package kitapptest

import (
	"net/http"
	"net/http/httptest"

	"github.com/appkit-go/appkit"
)

// CallHandler invokes an [appkit.HandlerFunc] with a buffered response writer and returns
// the recorded response. It handles the boilerplate of wrapping
// [httptest.ResponseRecorder] in an [appkit.ResponseWriter] and flushing the buffer
// afterward.
func CallHandler(handler appkit.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	w := appkit.NewResponseWriter(rec, -1)
	defer w.Free()

	if err := handler(req.Context(), w, req); err != nil {
		panic("kitapptest: handler returned error: " + err.Error())
	}

	if err := w.FlushBuffer(); err != nil {
		panic("kitapptest: FlushBuffer failed: " + err.Error())
	}

	return rec
}
