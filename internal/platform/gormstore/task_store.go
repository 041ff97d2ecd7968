package gormstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Association names on taskModel.
const (
	responsiblesAssoc = "Responsibles"
	auditorsAssoc     = "Auditors"
)

// TaskStore implements store.TaskStore on GORM.
type TaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTaskStore creates a TaskStore bound to db, which may be a transaction.
func NewTaskStore(db *gorm.DB, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

func orderUsersByID(db *gorm.DB) *gorm.DB {
	return db.Order("users.id")
}

// loaded returns a query that eagerly loads every task association.
func (s *TaskStore) loaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Creator").
		Preload(responsiblesAssoc, orderUsersByID).
		Preload(auditorsAssoc, orderUsersByID)
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	m := taskFromDomain(task)
	m.ID = 0
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("creator_id", task.CreatorID))
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	task.ID = m.ID
	log.Debug("task row inserted",
		slog.Int64("task_id", task.ID),
		slog.Int64("creator_id", task.CreatorID))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var m taskModel
	if err := s.loaded(ctx).First(&m, "tasks.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "failed to query task", MapError(err))
	}
	return m.toDomain(), nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// A map is used so that nil and false values are written too.
	result := s.db.WithContext(ctx).Model(&taskModel{}).Where("id = ?", task.ID).Updates(map[string]any{
		"title":           task.Title,
		"description":     task.Description,
		"is_active":       task.IsActive,
		"creator_id":      task.CreatorID,
		"expiration_date": utc(task.ExpirationDate),
		"update_date":     task.UpdateDate.UTC(),
		"close_date":      utc(task.CloseDate),
	})
	if err := result.Error; err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// ReplaceResponsibles implements store.TaskStore.ReplaceResponsibles
func (s *TaskStore) ReplaceResponsibles(ctx context.Context, taskID int64, userIDs []int64) error {
	return s.replaceSet(ctx, responsiblesAssoc, taskID, userIDs)
}

// ReplaceAuditors implements store.TaskStore.ReplaceAuditors
func (s *TaskStore) ReplaceAuditors(ctx context.Context, taskID int64, userIDs []int64) error {
	return s.replaceSet(ctx, auditorsAssoc, taskID, userIDs)
}

func (s *TaskStore) replaceSet(ctx context.Context, assoc string, taskID int64, userIDs []int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	db := s.db.WithContext(ctx)
	association := db.Model(&taskModel{ID: taskID}).Association(assoc)

	var err error
	if len(userIDs) == 0 {
		err = association.Clear()
	} else {
		var users []userModel
		if err = db.Where("id IN ?", userIDs).Order("id").Find(&users).Error; err == nil {
			err = association.Replace(users)
		}
	}
	if err != nil {
		log.Error("failed to replace association set",
			slog.String("error", err.Error()),
			slog.String("association", assoc),
			slog.Int64("task_id", taskID))
		return store.NewStoreError("task", "update", "failed to replace "+assoc, MapError(err))
	}
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	db := s.db.WithContext(ctx)

	for _, assoc := range []string{responsiblesAssoc, auditorsAssoc} {
		if err := db.Model(&taskModel{ID: id}).Association(assoc).Clear(); err != nil {
			log.Error("failed to clear association set",
				slog.String("error", err.Error()),
				slog.String("association", assoc),
				slog.Int64("task_id", id))
			return store.NewStoreError("task", "delete", "failed to clear "+assoc, MapError(err))
		}
	}

	result := db.Delete(&taskModel{}, "id = ?", id)
	if err := result.Error; err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Filter implements store.TaskStore.Filter
func (s *TaskStore) Filter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	q := s.loaded(ctx).Model(&taskModel{})

	if pattern, ok := filter.TitlePattern(); ok {
		q = q.Where(`ulower(tasks.title) LIKE ulower(?) ESCAPE '\'`, pattern)
	}
	if filter.StartDate != nil {
		q = q.Where("tasks.create_date >= ?", filter.StartDate.UTC())
	}
	if end, ok := filter.EndBound(); ok {
		q = q.Where("tasks.create_date < ?", end)
	}
	if filter.CreatorID != nil {
		q = q.Where("tasks.creator_id = ?", *filter.CreatorID)
	}
	if filter.Expired != nil {
		now := filter.ReferenceTime()
		if *filter.Expired {
			q = q.Where("tasks.expiration_date IS NOT NULL AND tasks.expiration_date < ?", now)
		} else {
			q = q.Where("(tasks.expiration_date IS NULL OR tasks.expiration_date >= ?)", now)
		}
	}

	var models []taskModel
	if err := q.Order("tasks.id").Find(&models).Error; err != nil {
		return nil, store.NewStoreError("task", "filter", "failed to query tasks", MapError(err))
	}

	tasks := make([]*domain.Task, 0, len(models))
	for _, m := range models {
		tasks = append(tasks, m.toDomain())
	}
	return tasks, nil
}
