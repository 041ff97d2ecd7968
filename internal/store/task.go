package store

import (
	"context"

	"github.com/phrazzld/tasktracker/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// Association sets (responsibles, auditors) are written separately from the
// task row so that a service can resolve user ids inside the same
// transaction before replacing them.
type TaskStore interface {
	// Create inserts the task row and assigns ID. Associations on the task
	// are ignored; use ReplaceResponsibles and ReplaceAuditors.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its creator, responsibles and auditors.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update writes the scalar columns of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// ReplaceResponsibles makes userIDs the exact responsible set of the task.
	ReplaceResponsibles(ctx context.Context, taskID int64, userIDs []int64) error

	// ReplaceAuditors makes userIDs the exact auditor set of the task.
	ReplaceAuditors(ctx context.Context, taskID int64, userIDs []int64) error

	// Delete removes the task and its association rows.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// Filter returns every task matching all supplied criteria, fully loaded,
	// ordered by id.
	Filter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
}
