package httpmetrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/AlibekovAA/user-service/internal/observability/metrics"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/api/users", "/api/users"},
		{"/api/users/42", "/api/users/{id}"},
		{"/api/users/0a1b2c3d-0000-4000-8000-123456789abc", "/api/users/{id}"},
		{"/api/users/abc", "/api/users/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.path))
		})
	}
}

func TestCollector_CountsRequests(t *testing.T) {
	c := New("metrics-test")
	h := c.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("metrics-test", http.MethodPost, "/api/users/{id}"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/users/9", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/users/10", nil))

	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("metrics-test", http.MethodPost, "/api/users/{id}"))
	assert.Equal(t, before+2, after)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.HTTPRequestsInFlight.WithLabelValues("metrics-test")))
}
