package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/store"
)

const taskColumns = `t.id, t.title, t.description, t.is_active, t.creator_id, u.email,
	t.expiration_date, t.create_date, t.update_date, t.close_date`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (title, description, is_active, creator_id, expiration_date,
		                   create_date, update_date, close_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		task.IsActive,
		task.CreatorID,
		task.ExpirationDate,
		task.CreateDate,
		task.UpdateDate,
		task.CloseDate,
	).Scan(&task.ID)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("creator_id", task.CreatorID))
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	log.Debug("task row inserted",
		slog.Int64("task_id", task.ID),
		slog.Int64("creator_id", task.CreatorID))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + `
		FROM tasks t JOIN users u ON u.id = t.creator_id
		WHERE t.id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "get", "failed to query task", MapError(err))
	}

	if err := s.loadAssociations(ctx, []*domain.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET title = $1, description = $2, is_active = $3, creator_id = $4,
		    expiration_date = $5, update_date = $6, close_date = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.IsActive,
		task.CreatorID,
		task.ExpirationDate,
		task.UpdateDate,
		task.CloseDate,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// ReplaceResponsibles implements store.TaskStore.ReplaceResponsibles
func (s *PostgresTaskStore) ReplaceResponsibles(ctx context.Context, taskID int64, userIDs []int64) error {
	return s.replaceSet(ctx, "task_responsibles", taskID, userIDs)
}

// ReplaceAuditors implements store.TaskStore.ReplaceAuditors
func (s *PostgresTaskStore) ReplaceAuditors(ctx context.Context, taskID int64, userIDs []int64) error {
	return s.replaceSet(ctx, "task_auditors", taskID, userIDs)
}

// replaceSet deletes every row of table for taskID and inserts userIDs.
// table is always one of the two join table names above.
func (s *PostgresTaskStore) replaceSet(ctx context.Context, table string, taskID int64, userIDs []int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE task_id = $1`, taskID); err != nil {
		log.Error("failed to clear association set",
			slog.String("error", err.Error()),
			slog.String("table", table),
			slog.Int64("task_id", taskID))
		return store.NewStoreError("task", "update", "failed to clear "+table, MapError(err))
	}

	if len(userIDs) == 0 {
		return nil
	}

	query := `INSERT INTO ` + table + ` (task_id, user_id)
		SELECT $1, u FROM UNNEST($2::bigint[]) AS u
		ON CONFLICT DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, taskID, userIDs); err != nil {
		log.Error("failed to insert association set",
			slog.String("error", err.Error()),
			slog.String("table", table),
			slog.Int64("task_id", taskID))
		return store.NewStoreError("task", "update", "failed to insert "+table, MapError(err))
	}
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, table := range []string{"task_responsibles", "task_auditors"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE task_id = $1`, id); err != nil {
			log.Error("failed to delete association rows",
				slog.String("error", err.Error()),
				slog.String("table", table),
				slog.Int64("task_id", id))
			return store.NewStoreError("task", "delete", "failed to delete "+table, MapError(err))
		}
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Filter implements store.TaskStore.Filter
func (s *PostgresTaskStore) Filter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskFilter(filter)
	query := `SELECT ` + taskColumns + `
		FROM tasks t JOIN users u ON u.id = t.creator_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY t.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to filter tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "filter", "failed to query tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "filter", "failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "filter", "failed to iterate tasks", err)
	}

	if err := s.loadAssociations(ctx, tasks); err != nil {
		return nil, err
	}

	log.Debug("tasks filtered", slog.Int("count", len(tasks)))
	return tasks, nil
}

// buildTaskFilter returns the WHERE predicates and positional args for f.
func buildTaskFilter(f domain.TaskFilter) ([]string, []any) {
	var where []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if pattern, ok := f.TitlePattern(); ok {
		where = append(where, `t.title ILIKE `+next(pattern)+` ESCAPE '\'`)
	}
	if f.StartDate != nil {
		where = append(where, `t.create_date >= `+next(f.StartDate.UTC()))
	}
	if end, ok := f.EndBound(); ok {
		where = append(where, `t.create_date < `+next(end))
	}
	if f.CreatorID != nil {
		where = append(where, `t.creator_id = `+next(*f.CreatorID))
	}
	if f.Expired != nil {
		now := next(f.ReferenceTime())
		if *f.Expired {
			where = append(where, `(t.expiration_date IS NOT NULL AND t.expiration_date < `+now+`)`)
		} else {
			where = append(where, `(t.expiration_date IS NULL OR t.expiration_date >= `+now+`)`)
		}
	}
	return where, args
}

// loadAssociations fills Responsibles and Auditors for tasks with one query
// per association table.
func (s *PostgresTaskStore) loadAssociations(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(tasks))
	byID := make(map[int64]*domain.Task, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
		byID[t.ID] = t
		t.Responsibles = []domain.UserRef{}
		t.Auditors = []domain.UserRef{}
	}

	load := func(table string, assign func(t *domain.Task, ref domain.UserRef)) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT a.task_id, u.id, u.email
			FROM `+table+` a JOIN users u ON u.id = a.user_id
			WHERE a.task_id = ANY($1)
			ORDER BY a.task_id, u.id`, ids)
		if err != nil {
			return store.NewStoreError("task", "get", "failed to load "+table, MapError(err))
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var taskID int64
			var ref domain.UserRef
			if err := rows.Scan(&taskID, &ref.ID, &ref.Email); err != nil {
				return store.NewStoreError("task", "get", "failed to scan "+table, err)
			}
			if t, ok := byID[taskID]; ok {
				assign(t, ref)
			}
		}
		return rows.Err()
	}

	if err := load("task_responsibles", func(t *domain.Task, ref domain.UserRef) {
		t.Responsibles = append(t.Responsibles, ref)
	}); err != nil {
		return err
	}
	return load("task_auditors", func(t *domain.Task, ref domain.UserRef) {
		t.Auditors = append(t.Auditors, ref)
	})
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t           domain.Task
		description sql.NullString
		expiration  sql.NullTime
		closed      sql.NullTime
	)
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&description,
		&t.IsActive,
		&t.CreatorID,
		&t.Creator.Email,
		&expiration,
		&t.CreateDate,
		&t.UpdateDate,
		&closed,
	); err != nil {
		return nil, err
	}

	t.Creator.ID = t.CreatorID
	t.CreateDate = t.CreateDate.UTC()
	t.UpdateDate = t.UpdateDate.UTC()
	if description.Valid {
		t.Description = &description.String
	}
	if expiration.Valid {
		e := expiration.Time.UTC()
		t.ExpirationDate = &e
	}
	if closed.Valid {
		c := closed.Time.UTC()
		t.CloseDate = &c
	}
	return &t, nil
}
