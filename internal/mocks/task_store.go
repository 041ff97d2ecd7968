package mocks

import (
	"context"

	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/store"
	"github.com/stretchr/testify/mock"
)

// TaskStore is a mock of store.TaskStore.
type TaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create is a mock implementation of store.TaskStore.Create
func (m *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

// GetByID is a mock implementation of store.TaskStore.GetByID
func (m *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update is a mock implementation of store.TaskStore.Update
func (m *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

// ReplaceResponsibles is a mock implementation of store.TaskStore.ReplaceResponsibles
func (m *TaskStore) ReplaceResponsibles(ctx context.Context, taskID int64, userIDs []int64) error {
	return m.Called(ctx, taskID, userIDs).Error(0)
}

// ReplaceAuditors is a mock implementation of store.TaskStore.ReplaceAuditors
func (m *TaskStore) ReplaceAuditors(ctx context.Context, taskID int64, userIDs []int64) error {
	return m.Called(ctx, taskID, userIDs).Error(0)
}

// Delete is a mock implementation of store.TaskStore.Delete
func (m *TaskStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// Filter is a mock implementation of store.TaskStore.Filter
func (m *TaskStore) Filter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	args := m.Called(ctx, filter)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}
