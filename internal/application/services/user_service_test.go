package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/ports"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	svc := NewUserService(users, logger.Nop())

	user, err := svc.CreateUser(ctx, ports.CreateUserRequest{
		Email:    "Admin@Example.com",
		Name:     "Admin",
		Password: "s3cret-pass",
		Role:     entities.UserRoleAdmin,
		Timezone: "America/New_York",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.True(t, user.IsActive)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))

	_, err = svc.CreateUser(ctx, ports.CreateUserRequest{Email: "x@example.com", Name: "X", Password: "password1", Role: entities.UserRoleMember, Timezone: "Mars/Olympus"})
	assert.Error(t, err)

	profile, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.PasswordHash)
	assert.Equal(t, "America/New_York", profile.Timezone)

	_, err = svc.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, entities.ErrUserNotFound)
}
