package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/store"
	"gorm.io/gorm"
)

// UserStore implements store.UserStore on GORM.
type UserStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStore creates a UserStore bound to db, which may be a transaction.
func NewUserStore(db *gorm.DB, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return err
	}
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: hashed password is required", store.ErrInvalidEntity)
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt

	m := userFromDomain(user)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDuplicate) {
			log.Warn("attempt to create user with existing email")
			return store.ErrEmailExists
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return store.NewStoreError("user", "create", "failed to insert user", mapped)
	}

	user.ID = m.ID
	user.Password = ""

	log.Info("user created successfully", slog.Int64("user_id", user.ID))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.NewStoreError("user", "get", "failed to query user", MapError(err))
	}
	return m.toDomain(), nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	err := s.db.WithContext(ctx).First(&m, "LOWER(email) = LOWER(?)", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.NewStoreError("user", "get", "failed to query user", MapError(err))
	}
	return m.toDomain(), nil
}

// FindByIDs implements store.UserStore.FindByIDs
func (s *UserStore) FindByIDs(ctx context.Context, ids []int64) ([]domain.UserRef, error) {
	if len(ids) == 0 {
		return []domain.UserRef{}, nil
	}

	var models []userModel
	err := s.db.WithContext(ctx).
		Select("id", "email").
		Where("id IN ?", ids).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, store.NewStoreError("user", "find", "failed to query users", MapError(err))
	}

	refs := make([]domain.UserRef, 0, len(models))
	for _, m := range models {
		refs = append(refs, m.ref())
	}
	return refs, nil
}

// Update implements store.UserStore.Update
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}

	user.UpdatedAt = time.Now().UTC()
	// A map is used so that false booleans are written too.
	result := s.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", user.ID).Updates(map[string]any{
		"email":           user.Email,
		"hashed_password": user.HashedPassword,
		"is_active":       user.IsActive,
		"is_superuser":    user.IsSuperuser,
		"is_verified":     user.IsVerified,
		"updated_at":      user.UpdatedAt,
	})
	if err := result.Error; err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDuplicate) {
			return store.ErrEmailExists
		}
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		return store.NewStoreError("user", "update", "failed to update user", mapped)
	}
	if result.RowsAffected == 0 {
		return store.ErrUserNotFound
	}

	log.Info("user updated successfully", slog.Int64("user_id", user.ID))
	return nil
}

// Delete implements store.UserStore.Delete. Tasks created by the user and
// every association row that references the user are removed as well.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"task_responsibles", "task_auditors"} {
			err := tx.Exec(`DELETE FROM `+table+
				` WHERE user_id = ? OR task_id IN (SELECT id FROM tasks WHERE creator_id = ?)`, id, id).Error
			if err != nil {
				return err
			}
		}
		if err := tx.Where("creator_id = ?", id).Delete(&taskModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&userModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return store.NewStoreError("user", "delete", "failed to delete user", MapError(err))
	}

	log.Info("user deleted successfully", slog.Int64("user_id", id))
	return nil
}

// CountSuperusers implements store.UserStore.CountSuperusers
func (s *UserStore) CountSuperusers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userModel{}).Where("is_superuser = ?", true).Count(&n).Error; err != nil {
		return 0, store.NewStoreError("user", "count", "failed to count superusers", MapError(err))
	}
	return n, nil
}
