package http

import (
	"fmt"
	"net/http"
	"strings"
)

type SecurityOptions struct {
	// ConnectSources are origins the browser may fetch from besides 'self'.
	ConnectSources []string
	HSTS           bool
}

func SecurityHeadersMiddleware(opts SecurityOptions) func(http.Handler) http.Handler {
	csp := buildCSP(opts.ConnectSources)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			h.Set("Origin-Agent-Cluster", "?1")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("X-Download-Options", "noopen")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
			h.Set("X-XSS-Protection", "0")
			if opts.HSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			h.Del("X-Powered-By")

			next.ServeHTTP(w, r)
		})
	}
}

func buildCSP(connectSources []string) string {
	connect := append([]string{"'self'"}, connectSources...)
	directives := []string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"script-src 'self'",
		"img-src 'self' data: https:",
		fmt.Sprintf("connect-src %s", strings.Join(connect, " ")),
		"object-src 'none'",
		"frame-ancestors 'self'",
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}
