package gormstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/tasktracker/internal/store"
	"gorm.io/gorm"
)

// MapError maps GORM and SQLite errors to the store error taxonomy.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: foreign key violation: %v", store.ErrInvalidEntity, err)
	}

	// The sqlite translator does not cover CHECK and NOT NULL failures.
	msg := err.Error()
	if strings.Contains(msg, "CHECK constraint failed") || strings.Contains(msg, "NOT NULL constraint failed") {
		return fmt.Errorf("%w: constraint violation: %v", store.ErrInvalidEntity, err)
	}
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: foreign key violation: %v", store.ErrInvalidEntity, err)
	}

	return err
}
