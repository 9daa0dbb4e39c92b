package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorEnvelope is the only error body the API produces.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteErrorEnvelope(w http.ResponseWriter, status int, message, stack string) {
	WriteJSON(w, status, ErrorEnvelope{
		Success: false,
		Status:  status,
		Message: message,
		Stack:   stack,
	})
}

// ClientIP trusts one proxy hop: the first X-Forwarded-For entry, then
// X-Real-IP, then the connection address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip := fwd
		if idx := strings.Index(ip, ","); idx != -1 {
			ip = ip[:idx]
		}
		if ip = strings.TrimSpace(ip); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return strings.Trim(ip, "[]")
}
