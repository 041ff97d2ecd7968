package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/phrazzld/tasktracker/internal/api"
	apiMiddleware "github.com/phrazzld/tasktracker/internal/api/middleware"
	"github.com/phrazzld/tasktracker/internal/config"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/events"
	"github.com/phrazzld/tasktracker/internal/platform/natsbus"
	"github.com/phrazzld/tasktracker/internal/service"
	"github.com/phrazzld/tasktracker/internal/service/auth"
)

const dispatcherDrainTimeout = 10 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	storage *storage

	// Event system
	eventEmitter *events.InMemoryEventEmitter
	dispatcher   *events.AsyncDispatcher
	natsConn     *nats.Conn

	jwtService  auth.JWTService
	userService *service.UserServiceImpl
	taskService service.TaskService
	metrics     *apiMiddleware.Metrics
}

// newApplication wires services, event handlers and the HTTP router on top of
// an opened storage backend.
func newApplication(cfg *config.Config, log *slog.Logger, st *storage) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  log,
		storage: st,
		metrics: apiMiddleware.NewMetrics(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	log.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.eventEmitter = events.NewInMemoryEventEmitter(log)
	app.eventEmitter.RegisterHandler(events.NewLogHandler(log))
	if cfg.Events.NATSURL != "" {
		app.natsConn, err = natsbus.Connect(cfg.Events.NATSURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher := natsbus.NewPublisher(app.natsConn, cfg.Events.SubjectPrefix, log)
		app.dispatcher = events.NewAsyncDispatcher(publisher, events.DispatcherConfig{
			WorkerCount: cfg.Events.WorkerCount,
			QueueSize:   cfg.Events.QueueSize,
		}, log)
		app.dispatcher.Start()
		app.eventEmitter.RegisterHandler(app.dispatcher)
	}

	app.userService = service.NewUserService(
		st.stores.Users,
		st.tx,
		auth.NewBcryptVerifier(cfg.Auth.BcryptCost),
		auth.PasswordPolicy{MinLength: cfg.Auth.PasswordMinLength},
		log,
	)
	app.taskService = service.NewTaskService(
		st.tx,
		st.stores.Tasks,
		app.eventEmitter,
		log,
		service.WithTitleLimits(domain.TitleLimits{
			Min: cfg.Task.TitleMinLength,
			Max: cfg.Task.TitleMaxLength,
		}),
	)

	return app, nil
}

// ensureBootstrapSuperuser creates the configured superuser, if any.
func (app *application) ensureBootstrapSuperuser(ctx context.Context) error {
	b := app.config.Bootstrap
	if b.SuperuserEmail == "" {
		return nil
	}
	if _, err := app.userService.EnsureSuperuser(ctx, b.SuperuserEmail, b.SuperuserPassword); err != nil {
		return fmt.Errorf("failed to bootstrap superuser: %w", err)
	}
	return nil
}

// router builds the HTTP handler for the application.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Tasks:      app.taskService,
		Users:      app.userService,
		JWTService: app.jwtService,
		AuthConfig: app.config.Auth,
		Metrics:    app.metrics,
		Logger:     app.logger,
	})
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), dispatcherDrainTimeout)
		if err := app.dispatcher.Stop(ctx); err != nil {
			app.logger.Error("error stopping event dispatcher", slog.String("error", err.Error()))
		}
		cancel()
	}

	if app.natsConn != nil {
		if err := app.natsConn.Drain(); err != nil {
			app.logger.Error("error draining NATS connection", slog.String("error", err.Error()))
		}
	}

	if app.storage != nil && app.storage.close != nil {
		if err := app.storage.close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}

// createSuperuser opens storage, ensures the superuser and releases storage.
func createSuperuser(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	email, password string,
) (*domain.User, error) {
	st, err := openStorage(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	users := service.NewUserService(
		st.stores.Users,
		st.tx,
		auth.NewBcryptVerifier(cfg.Auth.BcryptCost),
		auth.PasswordPolicy{MinLength: cfg.Auth.PasswordMinLength},
		log,
	)
	return users.EnsureSuperuser(ctx, email, password)
}
