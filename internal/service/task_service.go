package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/events"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/store"
)

// TaskInput carries the fields of a new task. The creator is always the
// acting user.
type TaskInput struct {
	Title          string
	Description    *string
	ExpirationDate *time.Time
	Responsibles   []int64
	Auditors       []int64
}

// Validate checks the input against the title limits and id rules.
func (in TaskInput) Validate(limits domain.TitleLimits) error {
	if err := limits.CheckTitle(in.Title); err != nil {
		return err
	}
	if len(in.Responsibles) == 0 {
		return domain.NewValidationError("responsibles", "must contain at least one user id", domain.ErrNoResponsibles)
	}
	for _, id := range in.Responsibles {
		if id <= 0 {
			return domain.NewValidationError("responsibles", "user ids must be positive", domain.ErrInvalidID)
		}
	}
	for _, id := range in.Auditors {
		if id <= 0 {
			return domain.NewValidationError("auditors", "user ids must be positive", domain.ErrInvalidID)
		}
	}
	return nil
}

// TaskService is the single mediator of task persistence.
type TaskService interface {
	// Create stores a new open task owned by actor and returns it fully loaded.
	Create(ctx context.Context, actor *domain.User, input TaskInput) (*domain.Task, error)

	// Get returns a task with its creator and association sets.
	// Returns store.ErrTaskNotFound if the task does not exist.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// Update applies the present fields of patch. Only the creator or a
	// superuser may update; only a superuser may change the creator.
	Update(ctx context.Context, actor *domain.User, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// Filter returns every task matching filter.
	Filter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)

	// Delete removes a task and its association rows, returning the snapshot
	// taken before removal. Only the creator or a superuser may delete.
	Delete(ctx context.Context, actor *domain.User, id int64) (*domain.Task, error)
}

// taskServiceImpl implements TaskService.
type taskServiceImpl struct {
	tx       store.Transactor
	tasks    store.TaskStore
	emitter  events.EventEmitter
	limits   domain.TitleLimits
	logger   *slog.Logger
	timeFunc func() time.Time
}

var _ TaskService = (*taskServiceImpl)(nil)

// TaskServiceOption customizes a TaskService.
type TaskServiceOption func(*taskServiceImpl)

// WithClock replaces the time source.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskServiceImpl) { s.timeFunc = now }
}

// WithTitleLimits replaces the default title length bounds.
func WithTitleLimits(limits domain.TitleLimits) TaskServiceOption {
	return func(s *taskServiceImpl) { s.limits = limits }
}

// NewTaskService creates a TaskService. tasks is used for reads outside a
// transaction. A nil emitter discards events.
func NewTaskService(
	tx store.Transactor,
	tasks store.TaskStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) TaskService {
	if tx == nil || tasks == nil {
		panic("transactor and task store cannot be nil")
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		tx:       tx,
		tasks:    tasks,
		emitter:  emitter,
		limits:   domain.DefaultTitleLimits(),
		logger:   logger.With(slog.String("component", "task_service")),
		timeFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// now returns the current time at the precision the stores keep.
func (s *taskServiceImpl) now() time.Time {
	return s.timeFunc().UTC().Truncate(time.Microsecond)
}

// Create implements TaskService.
func (s *taskServiceImpl) Create(ctx context.Context, actor *domain.User, input TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(s.limits); err != nil {
		log.Debug("invalid task input", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.now()
	var created *domain.Task

	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		task := domain.NewTask(actor.ID, input.Title, input.Description, truncate(input.ExpirationDate), now)
		if err := task.Validate(s.limits); err != nil {
			return err
		}
		if err := st.Tasks.Create(ctx, task); err != nil {
			return err
		}

		if err := s.replaceResponsibles(ctx, st, task.ID, input.Responsibles); err != nil {
			return err
		}
		if len(input.Auditors) > 0 {
			if err := s.replaceAuditors(ctx, st, task.ID, input.Auditors); err != nil {
				return err
			}
		}

		loaded, err := st.Tasks.GetByID(ctx, task.ID)
		if err != nil {
			return err
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, s.fail(log, "create", "failed to create task", err)
	}

	log.Info("task created",
		slog.Int64("task_id", created.ID),
		slog.Int64("user_id", actor.ID))

	s.emit(ctx, log, events.NewTaskEvent(events.TaskCreated, created.ID, actor.ID, now))
	return created, nil
}

// Get implements TaskService.
func (s *taskServiceImpl) Get(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, err
		}
		return nil, s.fail(log, "get", "failed to retrieve task", err)
	}
	return task, nil
}

// Update implements TaskService.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	actor *domain.User,
	id int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := patch.Validate(s.limits); err != nil {
		log.Debug("invalid task patch", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.now()
	var (
		updated *domain.Task
		closed  bool
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		task, err := st.Tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.authorize(log, "update", actor, task, patch.ChangesCreator()); err != nil {
			return err
		}

		if newCreator, ok := patch.CreatorID.Get(); ok {
			if _, err := st.Users.GetByID(ctx, newCreator); err != nil {
				if errors.Is(err, store.ErrUserNotFound) {
					return domain.NewValidationError("creator_id", "must reference an existing user", domain.ErrInvalidID)
				}
				return err
			}
		}

		closed = task.ApplyPatch(patch, now)
		task.ExpirationDate = truncate(task.ExpirationDate)
		if err := task.Validate(s.limits); err != nil {
			return err
		}
		if err := st.Tasks.Update(ctx, task); err != nil {
			return err
		}

		if ids, ok := patch.Responsibles.Get(); ok {
			if err := s.replaceResponsibles(ctx, st, task.ID, ids); err != nil {
				return err
			}
		}
		if ids, ok := patch.AuditorIDs(); ok {
			if err := s.replaceAuditors(ctx, st, task.ID, ids); err != nil {
				return err
			}
		}

		loaded, err := st.Tasks.GetByID(ctx, task.ID)
		if err != nil {
			return err
		}
		updated = loaded
		return nil
	})
	if err != nil {
		return nil, s.fail(log, "update", "failed to update task", err)
	}

	log.Info("task updated",
		slog.Int64("task_id", updated.ID),
		slog.Int64("user_id", actor.ID),
		slog.Bool("closed", closed))

	s.emit(ctx, log, events.NewTaskEvent(events.TaskUpdated, updated.ID, actor.ID, now))
	if closed {
		s.emit(ctx, log, events.NewTaskEvent(events.TaskClosed, updated.ID, actor.ID, now))
	}
	return updated, nil
}

// Filter implements TaskService.
func (s *taskServiceImpl) Filter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if filter.Now.IsZero() {
		filter.Now = s.now()
	}
	tasks, err := s.tasks.Filter(ctx, filter)
	if err != nil {
		return nil, s.fail(log, "filter", "failed to filter tasks", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// Delete implements TaskService.
func (s *taskServiceImpl) Delete(ctx context.Context, actor *domain.User, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	var deleted *domain.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		task, err := st.Tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(log, "delete", actor, task, false); err != nil {
			return err
		}
		if err := st.Tasks.Delete(ctx, id); err != nil {
			return err
		}
		deleted = task
		return nil
	})
	if err != nil {
		return nil, s.fail(log, "delete", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.Int64("task_id", id),
		slog.Int64("user_id", actor.ID))

	s.emit(ctx, log, events.NewTaskEvent(events.TaskDeleted, id, actor.ID, s.now()))
	return deleted, nil
}

// authorize checks the access policy and logs a single warning on denial.
func (s *taskServiceImpl) authorize(
	log *slog.Logger,
	operation string,
	actor *domain.User,
	task *domain.Task,
	changesCreator bool,
) error {
	err := domain.AuthorizeModify(actor, task)
	if err == nil && changesCreator {
		err = domain.AuthorizeCreatorChange(actor)
	}
	if err != nil {
		log.Warn("task access denied",
			slog.String("operation", operation),
			slog.Int64("task_id", task.ID),
			slog.Int64("user_id", actor.ID),
			slog.Bool("changes_creator", changesCreator))
	}
	return err
}

func (s *taskServiceImpl) replaceResponsibles(ctx context.Context, st store.Stores, taskID int64, ids []int64) error {
	resolved, err := resolveUsers(ctx, st.Users, ids)
	if err != nil {
		return err
	}
	if len(resolved) == 0 {
		return domain.NewValidationError("responsibles", "none of the given users exist", domain.ErrNoResponsibles)
	}
	return st.Tasks.ReplaceResponsibles(ctx, taskID, resolved)
}

func (s *taskServiceImpl) replaceAuditors(ctx context.Context, st store.Stores, taskID int64, ids []int64) error {
	resolved, err := resolveUsers(ctx, st.Users, ids)
	if err != nil {
		return err
	}
	return st.Tasks.ReplaceAuditors(ctx, taskID, resolved)
}

// resolveUsers returns the ids among ids that belong to existing users.
func resolveUsers(ctx context.Context, users store.UserStore, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	refs, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	resolved := make([]int64, 0, len(refs))
	for _, r := range refs {
		resolved = append(resolved, r.ID)
	}
	return resolved, nil
}

// fail passes expected outcomes through unchanged and wraps everything else.
func (s *taskServiceImpl) fail(log *slog.Logger, operation, message string, err error) error {
	switch {
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrTaskNotFound):
		return err
	}
	log.Error(message,
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	return NewTaskServiceError(operation, message, err)
}

// emit publishes event; failures are never returned. The emitter logs the
// failing handler at error level, so only a warning is added here.
func (s *taskServiceImpl) emit(ctx context.Context, log *slog.Logger, event *events.TaskEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit task event",
			slog.String("event_type", string(event.Type)),
			slog.Int64("task_id", event.TaskID),
			slog.String("error", err.Error()))
	}
}

func truncate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Microsecond)
	return &v
}
