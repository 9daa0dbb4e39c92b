package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/user-service/internal/common/config"
	"github.com/AlibekovAA/user-service/internal/common/constants"
	"github.com/AlibekovAA/user-service/internal/common/httpmetrics"
	"github.com/AlibekovAA/user-service/internal/common/jwtverify"
	"github.com/AlibekovAA/user-service/internal/common/logger"
)

type PipelineDeps struct {
	Service      string
	Config       config.AppConfig
	Log          *logger.Logger
	ErrorHandler *ErrorHandler
	RateLimiter  *RateLimiter
}

// NewRouter returns a router with the operational endpoints mounted and
// unmatched paths and methods answered by the 404 envelope.
func NewRouter(errHandler *ErrorHandler) chi.Router {
	r := chi.NewRouter()
	r.NotFound(errHandler.NotFound)
	r.MethodNotAllowed(errHandler.NotFound)

	r.Get(constants.HealthPath, HealthHandler)
	r.Method(http.MethodGet, constants.MetricsPath, promhttp.Handler())

	return r
}

// BuildPipeline wraps router in the request pipeline. The order is fixed,
// outermost first: security headers, trace id, panic recovery, CORS, request
// logging, metrics, body size limit, compression, bearer claims, rate limit.
func BuildPipeline(deps PipelineDeps, router http.Handler) (http.Handler, error) {
	cfg := deps.Config

	compress, err := CompressionMiddleware()
	if err != nil {
		return nil, err
	}

	logFormat := LogFormatDev
	if cfg.IsProduction() {
		logFormat = LogFormatCombined
	}

	chain := []func(http.Handler) http.Handler{
		SecurityHeadersMiddleware(SecurityOptions{
			ConnectSources: []string{cfg.ClientURL},
			HSTS:           cfg.IsProduction(),
		}),
		TraceIDMiddleware,
		RecoveryMiddleware(deps.Log, deps.ErrorHandler),
		CORSMiddleware(cfg.AllowedOrigins()),
		RequestLogMiddleware(deps.Log, logFormat),
		httpmetrics.New(deps.Service).Wrap,
		MaxRequestSizeMiddleware(cfg.MaxRequestSize, deps.ErrorHandler),
		compress,
		jwtverify.OptionalClaims(cfg.JWTSecret, deps.Log),
		deps.RateLimiter.Middleware(deps.ErrorHandler),
	}

	handler := router
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler, nil
}
