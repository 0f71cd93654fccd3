package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rangershop/pkg/auth"
	"github.com/shashiranjanraj/rangershop/pkg/middleware"
)

func TestAuth(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)
	token, err := m.Issue("cust-7")
	require.NoError(t, err)

	var seen *auth.Claims
	handler := middleware.Auth(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.ClaimsFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signer", func(t *testing.T) {
		other, err := auth.NewManager("other-secret", time.Hour).Issue("cust-7")
		require.NoError(t, err)
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+other)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "cust-7", seen.ClientID)
	})
}

func TestRateLimit(t *testing.T) {
	handler := middleware.RateLimit(3, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(ip string) int {
		r := httptest.NewRequest("POST", "/login", nil)
		r.RemoteAddr = ip
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("198.51.100.1:1234"))
	}
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.1:1234"))

	// A different client gets its own window.
	assert.Equal(t, http.StatusOK, do("198.51.100.2:1234"))
}
