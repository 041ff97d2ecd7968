package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/tasktracker/internal/api/middleware"
	"github.com/phrazzld/tasktracker/internal/config"
	"github.com/phrazzld/tasktracker/internal/service"
	"github.com/phrazzld/tasktracker/internal/service/auth"
)

// RouterDeps holds everything the HTTP surface needs.
type RouterDeps struct {
	Tasks      service.TaskService
	Users      service.UserService
	JWTService auth.JWTService
	AuthConfig config.AuthConfig
	Metrics    *apiMiddleware.Metrics
	Logger     *slog.Logger
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(log))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(chimw.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	authHandler := NewAuthHandler(deps.Users, deps.JWTService, deps.AuthConfig, log)
	userHandler := NewUserHandler(deps.Users, log)
	taskHandler := NewTaskHandler(deps.Tasks, log)
	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.JWTService, deps.Users)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/jwt/login", authHandler.Login)
		r.Post("/jwt/refresh", authHandler.RefreshToken)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/users/me", userHandler.Me)
		r.With(apiMiddleware.RequireSuperuser).Get("/users/{id}", userHandler.GetUser)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.CreateTask)
			r.Get("/", taskHandler.ListTasks)
			r.Get("/{id}", taskHandler.GetTask)
			r.Patch("/{id}", taskHandler.UpdateTask)
			r.Delete("/{id}", taskHandler.DeleteTask)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", "error", err)
		}
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}
