package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vtzdude/Music-library/internal/hash"
	"github.com/vtzdude/Music-library/internal/logging"
	"github.com/vtzdude/Music-library/internal/models"
	"github.com/vtzdude/Music-library/internal/mykafka"
	"github.com/vtzdude/Music-library/internal/repo"
	"github.com/vtzdude/Music-library/internal/session"
	"github.com/vtzdude/Music-library/internal/tokens"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExist   = errors.New("user already exist")
	ErrActionNotAllowed   = errors.New("action not allowed")
	ErrPasswordReuse      = errors.New("new password matches the old one")
	ErrInternal           = errors.New("internal server error")
)

type UserService struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.TokenService
	Sessions *session.Service
	Producer *mykafka.Producer
}

type LoginResult struct {
	UserID    uuid.UUID
	Role      string
	Token     string
	ExpiresAt time.Time
}

// Signup bootstraps the single ADMIN account. Once any ADMIN exists the
// endpoint is closed.
func (s *UserService) Signup(ctx context.Context, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "user.signup")

	if email == "" || password == "" {
		return ErrValidation
	}

	err := s.Repo.Transaction(func(tx *repo.GormRepo) error {
		exists, err := tx.AdminExists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return ErrActionNotAllowed
		}

		pwHash, err := hash.HashPassword(password)
		if err != nil {
			return err
		}
		return tx.CreateUser(ctx, &models.User{
			Email:        email,
			PasswordHash: pwHash,
			Role:         models.RoleAdmin,
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrActionNotAllowed):
			l.Warn("signup_rejected", "status", 400, "reason", "admin already exists")
			return ErrActionNotAllowed
		case errors.Is(err, repo.ErrUserAlreadyExist):
			l.Warn("signup_rejected", "status", 409, "reason", "email taken")
			return ErrUserAlreadyExist
		default:
			l.Error("signup_failed", "status", 500, "error", err)
			return ErrInternal
		}
	}

	return nil
}

// AddUser creates a non-admin account; callers are expected to be behind the
// ADMIN gate.
func (s *UserService) AddUser(ctx context.Context, email, password, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.add")

	if email == "" || password == "" || !models.ValidRole(role) || role == models.RoleAdmin {
		return nil, ErrValidation
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("add_user_failed", "status", 500, "error", err)
		return nil, ErrInternal
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("add_user_rejected", "status", 409, "reason", "email taken")
			return nil, ErrUserAlreadyExist
		}
		l.Error("add_user_failed", "status", 500, "error", err)
		return nil, ErrInternal
	}

	return &user, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "user.login", "email", models.NormalizeEmail(email))

	if email == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, ErrInternal
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.CreateToken(user.ID.String(), user.Role)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, ErrInternal
	}

	evicted, err := s.Sessions.CreateSession(ctx, user.ID, token)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, ErrInternal
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":    "user_login",
		"user_id": user.ID.String(),
		"role":    user.Role,
	})
	if evicted {
		s.publish(ctx, user.ID, map[string]any{
			"type":    "session_evicted",
			"user_id": user.ID.String(),
		})
	}

	return &LoginResult{
		UserID:    user.ID,
		Role:      user.Role,
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

// Logout removes exactly the presenting session. False follows the session
// manager's "unconfirmed or absent" contract.
func (s *UserService) Logout(ctx context.Context, userID uuid.UUID, token string) bool {
	ok := s.Sessions.DeleteSession(ctx, userID, token)
	if ok {
		s.publish(ctx, userID, map[string]any{
			"type":    "user_logout",
			"user_id": userID.String(),
		})
	}
	return ok
}

// LogoutAll revokes every session of the user and returns how many were
// removed.
func (s *UserService) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, bool) {
	count, ok := s.Sessions.DeleteAllSessions(ctx, userID)
	if ok {
		s.publish(ctx, userID, map[string]any{
			"type":     "user_logout_all",
			"user_id":  userID.String(),
			"sessions": count,
		})
	}
	return count, ok
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int, role string) ([]models.User, int64, error) {
	l := logging.FromContext(ctx).With("svc", "user.list")

	if role != "" && !models.ValidRole(role) {
		return nil, 0, ErrValidation
	}

	users, total, err := s.Repo.ListUsers(ctx, limit, offset, role)
	if err != nil {
		l.Error("list_users_failed", "status", 500, "error", err)
		return nil, 0, ErrInternal
	}
	return users, total, nil
}

// UpdatePassword verifies the old password, rejects reuse, rehashes, then
// revokes every live session of the user.
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "user.update_password", "user_id", userID.String())

	if oldPassword == "" || newPassword == "" {
		return ErrValidation
	}
	if oldPassword == newPassword {
		return ErrPasswordReuse
	}

	err := s.Repo.Transaction(func(tx *repo.GormRepo) error {
		user, err := tx.FindUserByID(ctx, userID)
		if err != nil {
			return err
		}
		if !hash.CheckPassword(user.PasswordHash, oldPassword) {
			return ErrInvalidCredentials
		}

		pwHash, err := hash.HashPassword(newPassword)
		if err != nil {
			return err
		}
		return tx.UpdatePasswordHash(ctx, userID, pwHash)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			l.Warn("update_password_rejected", "status", 400, "reason", "old password incorrect")
			return ErrInvalidCredentials
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		default:
			l.Error("update_password_failed", "status", 500, "error", err)
			return ErrInternal
		}
	}

	if _, ok := s.Sessions.DeleteAllSessions(ctx, userID); !ok {
		l.Error("update_password_revocation_failed", "status", 500)
		return ErrInternal
	}
	return nil
}

// DeleteUser removes a non-admin user together with every session they own.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "user.delete", "user_id", id.String())

	err := s.Repo.Transaction(func(tx *repo.GormRepo) error {
		user, err := tx.FindUserByID(ctx, id)
		if err != nil {
			return err
		}
		if user.Role == models.RoleAdmin {
			return ErrActionNotAllowed
		}

		if _, err := tx.DeleteSessionsByUser(ctx, id); err != nil {
			return err
		}
		rows, err := tx.DeleteUser(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		case errors.Is(err, ErrActionNotAllowed):
			l.Warn("delete_user_rejected", "status", 400, "reason", "cannot delete admin")
			return ErrActionNotAllowed
		default:
			l.Error("delete_user_failed", "status", 500, "error", err)
			return ErrInternal
		}
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, userID uuid.UUID, event map[string]any) {
	if err := s.Producer.PublishEvent(ctx, userID.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "error", err)
	}
}
