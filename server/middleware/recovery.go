package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/kbukum/flowview/errors"
	"github.com/kbukum/flowview/logger"
)

// Recovery turns a panic into a 500 with the standard error envelope and
// logs the stack.
func Recovery(log *logger.Logger) Middleware {
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
				log.Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
					"method", r.Method,
				))
				writeJSON(w, http.StatusInternalServerError, apperrors.Internal(fmt.Errorf("%v", rec)).ToResponse())
			}()
			next.ServeHTTP(w, r)
		})
	}
}
