package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(Config{Enabled: true, Token: "s3cret"})(ok)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"exempt health", "/healthz", "", http.StatusOK},
		{"exempt metrics", "/metrics", "", http.StatusOK},
		{"exempt system list", "/api/v1/systems", "", http.StatusOK},
		{"missing token", "/api/v1/rsky", "", http.StatusUnauthorized},
		{"wrong scheme", "/api/v1/rsky", "Basic s3cret", http.StatusUnauthorized},
		{"bare token", "/api/v1/rsky", "s3cret", http.StatusUnauthorized},
		{"wrong token", "/api/v1/rsky", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "/api/v1/rsky", "Bearer s3cret", http.StatusOK},
		{"system eval protected", "/api/v1/systems/x/rsky", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestMiddlewareDisabled(t *testing.T) {
	h := Middleware(Config{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/rsky", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
