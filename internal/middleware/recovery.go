package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"

	"github.com/shibaleo/repomcp/internal/logging"
	"github.com/shibaleo/repomcp/internal/observability"
)

// Recovery is HTTP middleware that recovers from panics.
// It captures the panic to Sentry, logs the stack trace, and returns a
// 500 Internal Server Error.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				logging.From(r.Context()).Error("panic recovered",
					slog.Any("error", err),
					slog.String("stack", string(stack)),
				)

				hub := sentry.CurrentHub().Clone()
				hub.Recover(err)

				requestID, _ := logging.CtxRequestID(r.Context())
				observability.LogPanic(requestID, map[string]any{
					"error": fmt.Sprintf("%v", err),
				})

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintf(w, `{"error":"internal_server_error","message":"An unexpected error occurred"}`)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
