package testutils

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/gormstore"
	"github.com/phrazzld/tasktracker/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestPasswordHash is a syntactically valid bcrypt hash used for seeded users.
const TestPasswordHash = "$2a$04$C6UzMDM.H6dfI/f/IKcEe.5aUOsPJrlb2xtj1jvVXz6x9zG.pRJ3e"

// NewSQLiteDB opens a migrated in-memory SQLite database that is closed when
// the test ends.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gormstore.Open(":memory:", slog.New(slog.DiscardHandler))
	require.NoError(t, err, "failed to open sqlite test database")
	require.NoError(t, gormstore.Migrate(db), "failed to migrate sqlite test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewSQLiteStores returns stores and a transactor over a fresh test database.
func NewSQLiteStores(t *testing.T) (store.Stores, store.Transactor, *gorm.DB) {
	t.Helper()
	db := NewSQLiteDB(t)
	logger := slog.New(slog.DiscardHandler)
	return gormstore.NewStores(db, logger), gormstore.NewTransactor(db, logger), db
}

// CreateTestUser inserts an active user with the given email.
func CreateTestUser(t *testing.T, users store.UserStore, email string, superuser bool) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:          email,
		HashedPassword: TestPasswordHash,
		IsActive:       true,
		IsSuperuser:    superuser,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

// CreateTestTask inserts a task with the given associations and returns it
// fully loaded.
func CreateTestTask(
	t *testing.T,
	tasks store.TaskStore,
	creator *domain.User,
	title string,
	createdAt time.Time,
	expiration *time.Time,
	responsibles, auditors []int64,
) *domain.Task {
	t.Helper()
	ctx := context.Background()

	task := domain.NewTask(creator.ID, title, nil, expiration, createdAt)
	require.NoError(t, tasks.Create(ctx, task))
	require.NoError(t, tasks.ReplaceResponsibles(ctx, task.ID, responsibles))
	require.NoError(t, tasks.ReplaceAuditors(ctx, task.ID, auditors))

	loaded, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	return loaded
}
