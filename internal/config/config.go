package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Task      TaskConfig      `mapstructure:"task"      validate:"required"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Events    EventsConfig    `mapstructure:"events"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the storage backend: "postgres" for deployments,
	// "sqlite" for local development.
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lte=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lte=129600"`
	PasswordMinLength           int    `mapstructure:"password_min_length"            validate:"required,gte=1,lte=72"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
}

// TaskConfig holds the limits applied to task input.
type TaskConfig struct {
	TitleMinLength int `mapstructure:"title_min_length" validate:"gte=1"`
	TitleMaxLength int `mapstructure:"title_max_length" validate:"gtefield=TitleMinLength,lte=255"`
}

// BootstrapConfig describes the superuser created on startup when no
// account with that email exists. Both fields empty disables bootstrapping.
type BootstrapConfig struct {
	SuperuserEmail    string `mapstructure:"superuser_email"    validate:"omitempty,email"`
	SuperuserPassword string `mapstructure:"superuser_password" validate:"required_with=SuperuserEmail"`
}

// EventsConfig configures where task audit events are published.
// An empty NATSURL keeps events in-process (logged only).
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url"       validate:"omitempty,url"`
	SubjectPrefix string `mapstructure:"subject_prefix" validate:"required_with=NATSURL"`
	// QueueSize and WorkerCount size the asynchronous publisher queue.
	QueueSize   int `mapstructure:"queue_size"   validate:"gte=0"`
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1,lte=64"`
}
