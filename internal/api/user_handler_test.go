package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Me(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register("alice@example.com")

	w := env.do(http.MethodGet, "/users/me", "", env.token(alice))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[UserResponse](t, w)
	assert.Equal(t, alice.ID, resp.ID)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.False(t, resp.IsSuperuser)
}

func TestUserHandler_Authentication(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register("alice@example.com")

	ghost, err := env.jwt.GenerateToken(context.Background(), 987654)
	require.NoError(t, err)
	refresh, err := env.jwt.GenerateRefreshToken(context.Background(), alice.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic " + env.token(alice)},
		{"malformed token", "Bearer nonsense"},
		{"truncated token", "Bearer " + env.token(alice)[:20]},
		{"refresh token used as access token", "Bearer " + refresh},
		{"token for missing user", "Bearer " + ghost},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "bearer "+env.token(alice))
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestUserHandler_GetUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register("alice@example.com")
	root := env.superuser("root@example.com")
	path := fmt.Sprintf("/users/%d", alice.ID)

	t.Run("regular user is forbidden", func(t *testing.T) {
		w := env.do(http.MethodGet, path, "", env.token(alice))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("superuser reads any user", func(t *testing.T) {
		w := env.do(http.MethodGet, path, "", env.token(root))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, alice.ID, decodeBody[UserResponse](t, w).ID)
	})

	t.Run("missing user", func(t *testing.T) {
		w := env.do(http.MethodGet, "/users/424242", "", env.token(root))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = env.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tasktracker_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
