package http

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/AlibekovAA/user-service/internal/common/constants"
)

func CompressionMiddleware() (func(http.Handler) http.Handler, error) {
	wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(constants.CompressionMinSize))
	if err != nil {
		return nil, err
	}
	return func(next http.Handler) http.Handler {
		return wrapper(next)
	}, nil
}
