package gormstore

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/store"
	"gorm.io/gorm"
)

// Transactor implements store.Transactor with gorm.DB.Transaction.
type Transactor struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTransactor creates a Transactor for db.
func NewTransactor(db *gorm.DB, logger *slog.Logger) *Transactor {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transactor{db: db, logger: logger}
}

var _ store.Transactor = (*Transactor)(nil)

// WithinTx implements store.Transactor. GORM rolls back when fn returns an
// error or panics, and re-panics after the rollback.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStores(tx, t.logger))
	})
	if err != nil {
		log.Debug("rolled back transaction due to error", slog.String("error", err.Error()))
		return err
	}

	log.Debug("transaction committed successfully")
	return nil
}

// NewStores returns GORM stores bound to db.
func NewStores(db *gorm.DB, logger *slog.Logger) store.Stores {
	return store.Stores{
		Users: NewUserStore(db, logger),
		Tasks: NewTaskStore(db, logger),
	}
}
