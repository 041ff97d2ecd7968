package gormstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/tasktracker/internal/store"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"record not found", gorm.ErrRecordNotFound, store.ErrNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, store.ErrDuplicate},
		{"foreign key", gorm.ErrForeignKeyViolated, store.ErrInvalidEntity},
		{"check constraint", errors.New("CHECK constraint failed: tasks_close_date_matches_state"), store.ErrInvalidEntity},
		{"not null", errors.New("NOT NULL constraint failed: tasks.title"), store.ErrInvalidEntity},
		{"unique text", errors.New("UNIQUE constraint failed: users.email"), store.ErrDuplicate},
		{"wrapped", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), store.ErrDuplicate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tc.err), tc.expected)
		})
	}

	assert.NoError(t, MapError(nil))
	other := errors.New("disk I/O error")
	assert.Equal(t, other, MapError(other))
}
