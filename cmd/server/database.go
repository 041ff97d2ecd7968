package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/tasktracker/internal/config"
	"github.com/phrazzld/tasktracker/internal/platform/gormstore"
	"github.com/phrazzld/tasktracker/internal/platform/postgres"
	"github.com/phrazzld/tasktracker/internal/store"
)

const pingTimeout = 5 * time.Second

// storage is an opened backend: the stores, a transactor over the same
// connection pool and the function releasing it.
type storage struct {
	stores store.Stores
	tx     store.Transactor
	close  func() error
}

// openStorage connects to the configured backend. Postgres expects its schema
// to be migrated with `migrate up`; SQLite is migrated in place.
func openStorage(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*storage, error) {
	switch cfg.Driver {
	case "sqlite":
		return openSQLite(cfg, log)
	default:
		return openPostgres(ctx, cfg, log)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*storage, error) {
	db, err := openPostgresDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Info("database connection established",
		slog.String("driver", "postgres"),
		slog.String("host", extractHostFromURL(cfg.URL)))

	return &storage{
		stores: postgres.NewStores(db, log),
		tx:     postgres.NewPostgresTransactor(db, log),
		close:  db.Close,
	}, nil
}

// openPostgresDB opens and pings a pgx-backed pool.
func openPostgresDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func openSQLite(cfg config.DatabaseConfig, log *slog.Logger) (*storage, error) {
	db, err := gormstore.Open(cfg.URL, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	if err := gormstore.Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database connection established",
		slog.String("driver", "sqlite"),
		slog.String("path", cfg.URL))

	return &storage{
		stores: gormstore.NewStores(db, log),
		tx:     gormstore.NewTransactor(db, log),
		close:  sqlDB.Close,
	}, nil
}
