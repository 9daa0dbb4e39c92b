package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/AlibekovAA/user-service/internal/common/logger"
)

// AppHandler is a handler that reports failure by returning an error
// instead of writing it.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts h to http.HandlerFunc, forwarding any returned error to the
// error handler. An error returned after the response has started is only
// logged.
func (h *ErrorHandler) Wrap(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		err := handler(ww, r)
		if err == nil {
			return
		}

		if ww.Status() != 0 {
			h.log.WithFields(r.Context(), logger.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": ww.Status(),
			}).Warnf("handler returned error after writing response: %v", err)
			return
		}

		h.HandleError(ww, r, err)
	}
}
