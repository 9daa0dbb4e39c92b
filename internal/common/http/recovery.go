package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
	"github.com/AlibekovAA/user-service/internal/common/logger"
)

func RecoveryMiddleware(log *logger.Logger, errHandler *ErrorHandler) func(next http.Handler) http.Handler {
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
				log.WithFields(r.Context(), logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				}).Criticalf("panic recovered: %v\n%s", rec, debug.Stack())
				errHandler.HandleError(w, r, commonerrors.ErrInternalError.WithCause(fmt.Errorf("panic: %v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
