package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
)

type signupRequest struct {
	Name  string `json:"name" validate:"required,max=10"`
	Email string `json:"email" validate:"required,email"`
}

func (s *signupRequest) FromForm(values url.Values) {
	s.Name = values.Get("name")
	s.Email = values.Get("email")
}

func TestDecodeBody_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ann","email":"ann@x.io","extra":1}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	var dst signupRequest
	require.NoError(t, DecodeBody(req, &dst))
	assert.Equal(t, signupRequest{Name: "Ann", Email: "ann@x.io"}, dst)
}

func TestDecodeBody_Form(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Ann&email=ann%40x.io"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var dst signupRequest
	require.NoError(t, DecodeBody(req, &dst))
	assert.Equal(t, "ann@x.io", dst.Email)
}

func TestDecodeBody_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantErr     error
		wantMsg     string
	}{
		{"malformed json", `{"name":`, "application/json", commonerrors.ErrInvalidBody, ""},
		{"missing field", `{"email":"ann@x.io"}`, "application/json", commonerrors.ErrValidation, `"name" is required`},
		{"bad email", `{"name":"Ann","email":"nope"}`, "application/json", commonerrors.ErrValidation, `"email" must be a valid email`},
		{"too long", `{"name":"Annabelle Lee","email":"ann@x.io"}`, "application/json", commonerrors.ErrValidation, `"name" length must be less than or equal to 10 characters long`},
		{"empty body", ``, "application/json", commonerrors.ErrValidation, `"name" is required`},
		{"other content type", `name=Ann`, "text/plain", commonerrors.ErrValidation, `"name" is required`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			var dst signupRequest
			err := DecodeBody(req, &dst)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				de, ok := commonerrors.AsDomainError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantMsg, de.Message())
			}
		})
	}
}

func TestMaxRequestSizeMiddleware(t *testing.T) {
	log, _ := newTestLogger(t)
	errHandler := NewErrorHandler(log, false)

	handler := MaxRequestSizeMiddleware(16, errHandler)(errHandler.Wrap(func(w http.ResponseWriter, r *http.Request) error {
		var dst signupRequest
		if err := DecodeBody(r, &dst); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	}))

	body := `{"name":"Ann","email":"ann@example.com"}`

	t.Run("declared length", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "request entity too large", decodeEnvelope(t, rec).Message)
	})

	t.Run("unknown length", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = -1
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("unparsed media type passes", func(t *testing.T) {
		passthrough := MaxRequestSizeMiddleware(16, errHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
		req.Header.Set("Content-Type", "application/octet-stream")
		rec := httptest.NewRecorder()

		passthrough.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("form body declared too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Ann&email=ann%40example.com"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}
