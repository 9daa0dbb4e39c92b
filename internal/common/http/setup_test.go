package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/user-service/internal/common/config"
)

func newTestPipeline(t *testing.T, env string, mount func(r chi.Router, eh *ErrorHandler)) (http.Handler, *bytes.Buffer) {
	t.Helper()
	log, buf := newTestLogger(t)
	cfg := config.AppConfig{
		Env:            env,
		ClientURL:      "http://localhost:3000",
		JWTSecret:      "test-secret",
		MaxRequestSize: DefaultMaxRequestSize,
	}
	eh := NewErrorHandler(log, cfg.IsProduction())
	rl, _ := newTestRateLimiter(t, 15*time.Minute, 100)

	router := NewRouter(eh)
	if mount != nil {
		mount(router, eh)
	}

	handler, err := BuildPipeline(PipelineDeps{
		Service:      "pipeline-test",
		Config:       cfg,
		Log:          log,
		ErrorHandler: eh,
		RateLimiter:  rl,
	}, router)
	require.NoError(t, err)
	return handler, buf
}

func TestPipeline_Health(t *testing.T) {
	handler, logs := newTestPipeline(t, config.EnvDevelopment, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Server is running"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self' http://localhost:3000")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
	assert.NotContains(t, logs.String(), "/health")
}

func TestPipeline_ProductionHSTS(t *testing.T) {
	handler, _ := newTestPipeline(t, config.EnvProduction, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
}

func TestPipeline_NotFound(t *testing.T) {
	handler, logs := newTestPipeline(t, config.EnvDevelopment, nil)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/unknown", "Cannot GET /unknown"},
		{http.MethodPost, "/health", "Cannot POST /health"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, tt.want, env.Message)
	}
	assert.Contains(t, logs.String(), "GET /unknown 404")
}

func TestPipeline_CORSPreflight(t *testing.T) {
	handler, _ := newTestPipeline(t, config.EnvDevelopment, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestPipeline_CORSRejectsUnknownOrigin(t *testing.T) {
	handler, _ := newTestPipeline(t, config.EnvDevelopment, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPipeline_CompressesLargeResponses(t *testing.T) {
	payload := strings.Repeat("user-service ", 400)
	handler, _ := newTestPipeline(t, config.EnvDevelopment, func(r chi.Router, eh *ErrorHandler) {
		r.Get("/api/big", eh.Wrap(func(w http.ResponseWriter, r *http.Request) error {
			WriteJSON(w, http.StatusOK, map[string]string{"data": payload})
			return nil
		}))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/big", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Less(t, rec.Body.Len(), len(payload))
}

func TestPipeline_BodyTooLarge(t *testing.T) {
	handler, _ := newTestPipeline(t, config.EnvDevelopment, func(r chi.Router, eh *ErrorHandler) {
		r.Post("/api/echo", eh.Wrap(func(w http.ResponseWriter, r *http.Request) error {
			var dst signupRequest
			return DecodeBody(r, &dst)
		}))
	})

	body := `{"name":"` + strings.Repeat("a", 11*1024) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request entity too large", decodeEnvelope(t, rec).Message)
}
