package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtzdude/Music-library/internal/models"
	"github.com/vtzdude/Music-library/internal/tokens"
)

func newTestUserService() *UserService {
	return &UserService{
		Tokens: &tokens.TokenService{
			Secret: []byte("test-jwt-secret"),
			Expiry: 15 * time.Minute,
		},
	}
}

func TestUserService_Signup_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret"},
		{name: "empty password", email: "user@example.com", password: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := svc.Signup(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_Login_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret"},
		{name: "empty password", email: "user@example.com", password: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := svc.Login(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_AddUser_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{name: "empty email", email: "", password: "secret", role: models.RoleViewer},
		{name: "empty password", email: "user@example.com", password: "", role: models.RoleViewer},
		{name: "unknown role", email: "user@example.com", password: "secret", role: "SUPERUSER"},
		{name: "admin role not allowed", email: "user@example.com", password: "secret", role: models.RoleAdmin},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := svc.AddUser(ctx, tt.email, tt.password, tt.role)
			require.Error(t, err)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_UpdatePassword_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestUserService()
	ctx := context.Background()
	userID := uuid.New()

	err := svc.UpdatePassword(ctx, userID, "", "new")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.UpdatePassword(ctx, userID, "old", "")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.UpdatePassword(ctx, userID, "same", "same")
	assert.ErrorIs(t, err, ErrPasswordReuse)
}
