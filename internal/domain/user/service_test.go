package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlynFabian/WearShop-sub000/internal/auth"
	"github.com/ErlynFabian/WearShop-sub000/internal/infrastructure/tablestore"
)

func newTestUserService() *Service {
	return NewService(tablestore.NewMemory())
}

func TestService_Register(t *testing.T) {
	service := newTestUserService()
	ctx := context.Background()

	u, err := service.Register(ctx, "ana@example.com", "supersecret", "Ana")

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "customer", u.Role)
	assert.NotEqual(t, "supersecret", u.PasswordHash)
}

func TestService_RegisterWithRole_Admin(t *testing.T) {
	service := newTestUserService()

	u, err := service.RegisterWithRole(context.Background(), "boss@wearshop.ph", "supersecret", "Boss", "admin")

	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
}

func TestService_Register_Validation(t *testing.T) {
	service := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		username string
		wantErr  error
	}{
		{"missing email", "", "supersecret", "Ana", ErrInvalidEmail},
		{"missing name", "ana@example.com", "supersecret", "", ErrInvalidName},
		{"short password", "ana@example.com", "short", "Ana", auth.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.email, tt.password, tt.username)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	service := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, "ana@example.com", "supersecret", "Ana")
	require.NoError(t, err)

	_, err = service.Register(ctx, "ana@example.com", "othersecret", "Ana Clone")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_Authenticate(t *testing.T) {
	service := newTestUserService()
	ctx := context.Background()

	registered, err := service.Register(ctx, "ana@example.com", "supersecret", "Ana")
	require.NoError(t, err)

	u, err := service.Authenticate(ctx, "ana@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
}

func TestService_Authenticate_SameErrorForBothFailures(t *testing.T) {
	service := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, "ana@example.com", "supersecret", "Ana")
	require.NoError(t, err)

	_, wrongPassword := service.Authenticate(ctx, "ana@example.com", "wrong")
	_, unknownUser := service.Authenticate(ctx, "ghost@example.com", "supersecret")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
}

func TestService_GetByEmail(t *testing.T) {
	service := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, "ana@example.com", "supersecret", "Ana")
	require.NoError(t, err)

	u, err := service.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)

	_, err = service.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
