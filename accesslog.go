package appkit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultLogMaxLength caps logged string fields (bodies, query strings) in bytes.
const DefaultLogMaxLength = 1000

// AccessLog returns middleware that writes one structured log line per inbound request and,
// when the handler succeeds, one per response. Errors produce no response line; they
// propagate to the [ErrorResponder] which writes the single error line instead. Both lines
// carry the trace id bound by [WithTrace], so it must be installed outside this middleware.
//
// Logged bodies and query strings are truncated to maxLen bytes to bound log volume. The
// truncation applies to the logged copy only, the actual payloads are never mutated.
func AccessLog(maxLen int) Middleware {
	if maxLen <= 0 {
		maxLen = DefaultLogMaxLength
	}

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, w ResponseWriter, r *http.Request) error {
			logs := Log(ctx)
			start := time.Now()

			var reqBody []byte
			if r.Body != nil && r.Body != http.NoBody {
				reqBody, _ = io.ReadAll(r.Body)
				_ = r.Body.Close()
				r.Body = io.NopCloser(bytes.NewReader(reqBody))
			}

			logs.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", truncate(r.URL.RawQuery, maxLen)),
				bodyField(reqBody, maxLen))

			if err := next.ServeAppHTTP(ctx, w, r); err != nil {
				return err
			}

			status := w.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logs.Info("response",
				zap.Int("status", status),
				zap.Duration("elapsed", time.Since(start)),
				bodyField(w.Buffered(), maxLen))

			return nil
		})
	}
}

// bodyField renders a body for logging. Valid JSON is embedded as-is so log processors can
// index it; anything else (including JSON that truncation cut mid-token) is a plain string.
func bodyField(body []byte, maxLen int) zap.Field {
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	if len(body) > 0 && gjson.ValidBytes(body) {
		return zap.Any("body", json.RawMessage(bytes.Clone(body)))
	}

	return zap.ByteString("body", bytes.Clone(body))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	return s[:maxLen]
}
