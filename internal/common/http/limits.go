package http

import (
	"net/http"

	"github.com/AlibekovAA/user-service/internal/common/constants"
	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
)

const (
	DefaultMaxRequestSize = constants.DefaultMaxRequestSize
)

// MaxRequestSizeMiddleware rejects JSON and URL-encoded bodies declared
// larger than maxBytes up front and caps every body while it is read;
// DecodeBody reports the overflow as 413.
func MaxRequestSizeMiddleware(maxBytes int64, errHandler *ErrorHandler) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes && isParsedBody(r) {
				errHandler.HandleError(w, r, commonerrors.ErrRequestTooLarge)
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
