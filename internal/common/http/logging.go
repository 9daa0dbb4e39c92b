package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/AlibekovAA/user-service/internal/common/constants"
	"github.com/AlibekovAA/user-service/internal/common/logger"
)

type LogFormat int

const (
	// LogFormatDev is short and colourless: method, path, status, latency, size.
	LogFormatDev LogFormat = iota
	// LogFormatCombined is the Apache combined log format.
	LogFormatCombined
)

// RequestLogMiddleware logs one line per completed request. Health checks
// are not logged.
func RequestLogMiddleware(log *logger.Logger, format LogFormat) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == constants.HealthPath {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var line string
			switch format {
			case LogFormatCombined:
				line = combinedLine(r, status, ww.BytesWritten(), start)
			default:
				line = devLine(r, status, ww.BytesWritten(), time.Since(start))
			}

			log.WithFields(r.Context(), nil).Info(line)
		})
	}
}

func devLine(r *http.Request, status, size int, elapsed time.Duration) string {
	sz := "-"
	if size > 0 {
		sz = fmt.Sprintf("%d", size)
	}
	return fmt.Sprintf("%s %s %d %.3f ms - %s",
		r.Method, r.URL.RequestURI(), status, float64(elapsed.Microseconds())/1000, sz)
}

func combinedLine(r *http.Request, status, size int, start time.Time) string {
	sz := "-"
	if size > 0 {
		sz = fmt.Sprintf("%d", size)
	}
	return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %s "%s" "%s"`,
		ClientIP(r),
		start.UTC().Format("02/Jan/2006:15:04:05 -0700"),
		r.Method, r.URL.RequestURI(), r.Proto,
		status, sz,
		orDash(r.Referer()), orDash(r.UserAgent()),
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
