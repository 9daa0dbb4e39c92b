package jwtverify

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/user-service/internal/common/logger"
)

type Claims struct {
	Subject string
	Role    string
}

type contextKey string

const claimsKey contextKey = "jwt_claims"

type tokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// OptionalClaims attaches the claims of a valid bearer token to the request
// context. Requests without a token, or with an invalid one, pass through
// unchanged; nothing is rejected here.
func OptionalClaims(secret string, log *logger.Logger) func(next http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(raw, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ParseToken(strings.TrimPrefix(raw, "Bearer "), secretBytes)
			if err != nil {
				if log.ShouldLog(logger.DEBUG) {
					log.WithFields(r.Context(), logger.Fields{"path": r.URL.Path}).Debugf("ignoring bearer token: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

func ParseToken(tokenString string, secret []byte) (Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &tc, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, err
	}
	if !parsed.Valid {
		return Claims{}, errors.New("token is not valid")
	}
	if tc.Subject == "" {
		return Claims{}, errors.New("missing sub claim")
	}

	return Claims{Subject: tc.Subject, Role: tc.Role}, nil
}
