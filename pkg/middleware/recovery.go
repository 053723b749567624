package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// Recovery turns a handler panic into a 500 response in the standard error
// envelope. http.ErrAbortHandler is re-panicked so net/http can abort the
// connection as intended.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				appErr := apperrors.Internal(fmt.Errorf("panic: %v", rec))
				logger.WithContext(r.Context(), l).ErrorContext(r.Context(), "panic recovered",
					slog.String("error", appErr.Error()),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)

				httputil.WriteJSON(w, appErr.Status, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:      appErr.Code,
						Message:   appErr.Message,
						RequestID: logger.CorrelationIDFromContext(r.Context()),
					},
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
