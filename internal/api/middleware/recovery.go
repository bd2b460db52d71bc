package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

// Recovery перехватывает панику и отвечает 500
func Recovery(logger Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered: %s %s request_id=%s: %v\n%s",
						r.Method, r.URL.Path, RequestIDFromContext(r.Context()), err, debug.Stack())
					handlers.RespondInternalError(w)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
