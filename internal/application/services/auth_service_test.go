package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/infrastructure/config"
	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/ports"
)

func newTestAuth(t *testing.T) (*AuthService, *fakeUsers, *fakeAuth, *time.Time) {
	t.Helper()
	users, tokens := newFakeUsers(), newFakeAuth()
	svc := NewAuthService(users, tokens, config.JWTConfig{
		Secret:           "test-secret",
		ExpiresIn:        15 * time.Minute,
		RefreshExpiresIn: 24 * time.Hour,
		Issuer:           "todo-api",
	}, logger.Nop())

	clock := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return clock }
	return svc, users, tokens, &clock
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newTestAuth(t)

	resp, err := svc.Register(ctx, ports.RegisterRequest{
		Email:    " Ada@Example.com ",
		Name:     "Ada",
		Password: "correct horse",
		Timezone: "Europe/Vilnius",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.EqualValues(t, 900, resp.ExpiresIn)
	assert.Empty(t, resp.User.PasswordHash)
	assert.Equal(t, entities.UserRoleMember, resp.User.Role)

	stored, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)

	_, err = svc.Register(ctx, ports.RegisterRequest{Email: "ada@example.com", Name: "Ada", Password: "another one"})
	assert.ErrorIs(t, err, entities.ErrDuplicateName)

	_, err = svc.Login(ctx, ports.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
	_, err = svc.Login(ctx, ports.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)

	login, err := svc.Login(ctx, ports.LoginRequest{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, stored.ID.String(), claims.UserID)
	assert.Equal(t, entities.UserRoleMember, claims.Role)

	stored, err = users.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newTestAuth(t)

	resp, err := svc.Register(ctx, ports.RegisterRequest{Email: "a@example.com", Name: "A", Password: "password1"})
	require.NoError(t, err)
	users.users[resp.User.ID].IsActive = false

	_, err = svc.Login(ctx, ports.LoginRequest{Email: "a@example.com", Password: "password1"})
	assert.ErrorIs(t, err, entities.ErrAccountInactive)
}

func TestValidateTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	svc, _, _, clock := newTestAuth(t)

	resp, err := svc.Register(ctx, ports.RegisterRequest{Email: "a@example.com", Name: "A", Password: "password1"})
	require.NoError(t, err)

	*clock = clock.Add(16 * time.Minute)
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	_, err = svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	other, _, _, _ := newTestAuth(t)
	other.jwtConfig.Secret = "different"
	foreign, err := other.generateAccessToken(resp.User)
	require.NoError(t, err)
	*clock = other.now()
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestRefreshTokenRotates(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens, clock := newTestAuth(t)

	resp, err := svc.Register(ctx, ports.RegisterRequest{Email: "a@example.com", Name: "A", Password: "password1"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, entities.ErrUnauthorized, "old token is revoked")

	*clock = clock.Add(25 * time.Hour)
	_, err = svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, entities.ErrUnauthorized, "new token expired")

	n, err := tokens.CleanupExpiredTokens(ctx, *clock)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

// staleTokenReads serves refresh tokens as they were before any revoke,
// the view a request racing another refresh of the same token has.
type staleTokenReads struct {
	*fakeAuth
}

func (s staleTokenReads) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
	t, err := s.fakeAuth.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	t.RevokedAt = nil
	return t, nil
}

func TestRefreshTokenIsSingleUseUnderRace(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens, _ := newTestAuth(t)

	resp, err := svc.Register(ctx, ports.RegisterRequest{Email: "a@example.com", Name: "A", Password: "password1"})
	require.NoError(t, err)
	svc.authRepo = staleTokenReads{tokens}

	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, entities.ErrUnauthorized, "second claim of the same token loses")
	assert.Equal(t, 2, len(tokens.tokens), "only one rotation issued a new token")
}

func TestLogoutRevokesEveryRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestAuth(t)

	first, err := svc.Register(ctx, ports.RegisterRequest{Email: "a@example.com", Name: "A", Password: "password1"})
	require.NoError(t, err)
	second, err := svc.Login(ctx, ports.LoginRequest{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, first.User.ID))

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := svc.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, entities.ErrUnauthorized)
	}
}
