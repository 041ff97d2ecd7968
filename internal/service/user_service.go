package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/phrazzld/tasktracker/internal/store"
)

// UserService is the user directory: registration, credential checks and
// the first-superuser bootstrap.
type UserService interface {
	// Register creates an active, non-superuser account.
	// Returns store.ErrEmailExists if the email is taken.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate returns the active user matching the credentials, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// EnsureSuperuser makes sure a superuser with email exists, creating or
	// promoting the account. It is safe to call on every startup.
	EnsureSuperuser(ctx context.Context, email, password string) (*domain.User, error)

	// Get retrieves a user by ID.
	Get(ctx context.Context, id int64) (*domain.User, error)
}

// PasswordManager hashes and verifies passwords.
type PasswordManager interface {
	auth.PasswordHasher
	auth.PasswordVerifier
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users     store.UserStore
	tx        store.Transactor
	passwords PasswordManager
	policy    auth.PasswordPolicy
	logger    *slog.Logger

	// dummyHash is compared against when no user matches so that unknown
	// emails take as long as wrong passwords. It is hashed at the configured
	// cost.
	dummyHash string
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	users store.UserStore,
	tx store.Transactor,
	passwords PasswordManager,
	policy auth.PasswordPolicy,
	logger *slog.Logger,
) *UserServiceImpl {
	if users == nil || tx == nil || passwords == nil {
		panic("user store, transactor and password manager cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dummyHash, err := passwords.Hash(uuid.NewString())
	if err != nil {
		panic(fmt.Sprintf("failed to hash dummy password: %v", err))
	}
	return &UserServiceImpl{
		users:     users,
		tx:        tx,
		passwords: passwords,
		policy:    policy,
		logger:    logger.With(slog.String("component", "user_service")),
		dummyHash: dummyHash,
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register implements UserService.
func (s *UserServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.newUser(email, password)
	if err != nil {
		log.Debug("registration rejected", slog.String("error", err.Error()))
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		return st.Users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register existing email")
		} else {
			log.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// Authenticate implements UserService.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = s.passwords.Compare(s.dummyHash, password)
			log.Debug("login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login failed: password mismatch", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		log.Debug("login failed: inactive user", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// EnsureSuperuser implements UserService.
func (s *UserServiceImpl) EnsureSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	candidate, err := s.newUser(email, password)
	if err != nil {
		return nil, err
	}
	candidate.IsSuperuser = true
	candidate.IsVerified = true

	var (
		result  *domain.User
		created bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		existing, err := st.Users.GetByEmail(ctx, candidate.Email)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			if err := st.Users.Create(ctx, candidate); err != nil {
				return err
			}
			result, created = candidate, true
			return nil
		case err != nil:
			return err
		}

		if existing.IsSuperuser && existing.IsActive {
			result = existing
			return nil
		}
		existing.IsSuperuser = true
		existing.IsActive = true
		existing.UpdatedAt = time.Now().UTC()
		if err := st.Users.Update(ctx, existing); err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		log.Error("failed to ensure superuser", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to ensure superuser: %w", err)
	}

	log.Info("superuser ensured",
		slog.Int64("user_id", result.ID),
		slog.Bool("created", created))
	return result, nil
}

// Get implements UserService.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to retrieve user",
				slog.String("error", err.Error()),
				slog.Int64("user_id", id))
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// newUser validates and hashes credentials into an unsaved user.
func (s *UserServiceImpl) newUser(email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)

	user, err := domain.NewUser(email, password)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPassword) {
			return nil, domain.NewValidationError("password", err.Error(), domain.ErrInvalidPassword)
		}
		return nil, domain.NewValidationError("email", err.Error(), domain.ErrInvalidEmail)
	}

	if err := s.policy.Validate(password, email); err != nil {
		return nil, domain.NewValidationError("password", err.Error(),
			fmt.Errorf("%w: %w", domain.ErrInvalidPassword, err))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = hash
	user.Password = ""
	return user, nil
}
