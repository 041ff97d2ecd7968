package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apiMiddleware "github.com/phrazzld/tasktracker/internal/api/middleware"
	"github.com/phrazzld/tasktracker/internal/config"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/service"
	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/phrazzld/tasktracker/internal/store"
	"github.com/phrazzld/tasktracker/internal/testutils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "a-perfectly-fine-password"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
		PasswordMinLength:           8,
		BcryptCost:                  bcrypt.MinCost,
	}
}

// testEnv is a fully wired router over an in-memory SQLite database.
type testEnv struct {
	t       *testing.T
	router  http.Handler
	stores  store.Stores
	users   *service.UserServiceImpl
	jwt     auth.JWTService
	metrics *apiMiddleware.Metrics
	logs    *testutils.TestSlogHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stores, tx, _ := testutils.NewSQLiteStores(t)
	logger, logs := testutils.NewTestLogger()
	cfg := testAuthConfig()

	jwtService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	users := service.NewUserService(stores.Users, tx, auth.NewBcryptVerifier(cfg.BcryptCost),
		auth.PasswordPolicy{MinLength: cfg.PasswordMinLength}, logger)
	tasks := service.NewTaskService(tx, stores.Tasks, nil, logger)
	metrics := apiMiddleware.NewMetrics()

	return &testEnv{
		t: t,
		router: NewRouter(RouterDeps{
			Tasks:      tasks,
			Users:      users,
			JWTService: jwtService,
			AuthConfig: cfg,
			Metrics:    metrics,
			Logger:     logger,
		}),
		stores:  stores,
		users:   users,
		jwt:     jwtService,
		metrics: metrics,
		logs:    logs,
	}
}

// register creates a user through the service and returns it.
func (e *testEnv) register(email string) *domain.User {
	e.t.Helper()
	user, err := e.users.Register(context.Background(), email, testPassword)
	require.NoError(e.t, err)
	return user
}

// superuser creates a superuser account.
func (e *testEnv) superuser(email string) *domain.User {
	e.t.Helper()
	user, err := e.users.EnsureSuperuser(context.Background(), email, testPassword)
	require.NoError(e.t, err)
	return user
}

func (e *testEnv) token(user *domain.User) string {
	e.t.Helper()
	token, err := e.jwt.GenerateToken(context.Background(), user.ID)
	require.NoError(e.t, err)
	return token
}

// do sends a request with an optional JSON body and bearer token.
func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func responseIDs(refs []UserRefResponse) []int64 {
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}
