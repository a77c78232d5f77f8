package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/helpdesk/internal/domain"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

func TestRegisterCreatesUserWithHashedPassword(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	user, err := env.auth.Register(context.Background(), "Alice", " Alice@Example.com ", "secret")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret", user.PasswordHash)
	assert.NotEmpty(t, user.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "Alice", "alice@example.com", "secret")
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, "Other", "alice@example.com", "different")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyRegistered))
	assert.Equal(t, "/login", apperrors.ToDomainError(err).Redirect)

	users, err := env.store.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegisterRequiresAllFields(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), "", "a@example.com", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, "/register", apperrors.ToDomainError(err).Redirect)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "Alice", "alice@example.com", strings.Repeat("x", 80))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, "/register", apperrors.ToDomainError(err).Redirect)

	users, err := env.store.Users().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = env.auth.Register(ctx, "Alice", "alice@example.com", strings.Repeat("x", 72))
	require.NoError(t, err)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.auth.Register(ctx, "Alice", "alice@example.com", "secret")
	require.NoError(t, err)

	_, _, _, unknownErr := env.auth.Login(ctx, "nobody@example.com", "secret")
	_, _, _, wrongErr := env.auth.Login(ctx, "alice@example.com", "wrong")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.True(t, apperrors.HasCode(unknownErr, apperrors.CodeInvalidCredentials))
	assert.True(t, apperrors.HasCode(wrongErr, apperrors.CodeInvalidCredentials))
}

func TestLoginIssuesTokenCarryingIdentity(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	user, err := env.auth.Register(ctx, "Alice", "alice@example.com", "secret")
	require.NoError(t, err)

	_, token, identity, err := env.auth.Login(ctx, "ALICE@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, domain.RoleUser, identity.Role)

	parsed, err := env.auth.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity.TokenID, parsed.TokenID)
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	identity := env.seedUser(t, "alice", domain.RoleUser)

	require.NoError(t, env.auth.Logout(context.Background(), identity))

	revoked, err := env.revoker.IsRevoked(context.Background(), identity.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
