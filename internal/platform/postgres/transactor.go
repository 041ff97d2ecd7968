package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/store"
)

// PostgresTransactor implements store.Transactor on a *sql.DB using
// store.RunInTransaction.
type PostgresTransactor struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTransactor creates a transactor for db.
func NewPostgresTransactor(db *sql.DB, logger *slog.Logger) *PostgresTransactor {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTransactor{db: db, logger: logger}
}

var _ store.Transactor = (*PostgresTransactor)(nil)

// WithinTx implements store.Transactor.
func (t *PostgresTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	ctx = logger.WithLogger(ctx, logger.FromContextOrDefault(ctx, t.logger))
	return store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, NewStores(tx, t.logger))
	})
}

// NewStores returns Postgres stores bound to db, which may be a *sql.DB or a *sql.Tx.
func NewStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Users: NewPostgresUserStore(db, logger),
		Tasks: NewPostgresTaskStore(db, logger),
	}
}
