package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/testutil"
)

func newService(t *testing.T) *Service {
	t.Helper()
	tokens, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(testutil.NewDB(t), tokens, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{Username: "lina", Email: "  Lina@Example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "lina@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.Password)

	_, _, err = svc.Register(ctx, RegisterInput{Username: "lina", Email: "new@example.com", Password: "password123"})
	assert.True(t, apperr.IsConflict(err))
	_, _, err = svc.Register(ctx, RegisterInput{Username: "other", Email: "LINA@example.com", Password: "password123"})
	assert.True(t, apperr.IsConflict(err))

	loggedIn, token, err := svc.Login(ctx, "LINA@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, "lina@example.com", "wrong")
	assert.True(t, apperr.IsUnauthorized(err))
	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, apperr.IsUnauthorized(err))
}

func TestAuthenticate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{Username: "omar", Email: "omar@example.com", Password: "password123"})
	require.NoError(t, err)

	principal, loaded, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
	assert.Equal(t, models.RoleUser, principal.Role)
	assert.Equal(t, "omar", loaded.Username)

	_, _, err = svc.Authenticate(ctx, "")
	assert.True(t, apperr.IsUnauthorized(err))
	_, _, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.True(t, apperr.IsUnauthorized(err))

	t.Run("banned user is forbidden", func(t *testing.T) {
		require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_banned", true).Error)
		_, _, err := svc.Authenticate(ctx, token)
		assert.True(t, apperr.IsForbidden(err))

		_, _, err = svc.Login(ctx, "omar@example.com", "password123")
		assert.True(t, apperr.IsForbidden(err))
	})

	t.Run("deleted user is unauthorized", func(t *testing.T) {
		require.NoError(t, svc.db.Delete(&models.User{}, "id = ?", user.ID).Error)
		_, _, err := svc.Authenticate(ctx, token)
		assert.True(t, apperr.IsUnauthorized(err))
	})
}

func TestRoleChangeAppliesWithoutNewToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, token, err := svc.Register(ctx, RegisterInput{Username: "rana", Email: "rana@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Promote(ctx, "RANA@example.com")
	require.NoError(t, err)

	principal, _, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())

	_, err = svc.Promote(ctx, "ghost@example.com")
	assert.True(t, apperr.IsNotFound(err))
}

func TestTokenManager(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingKey)

	tokens, err := NewTokenManager("secret", time.Minute)
	require.NoError(t, err)
	user := &models.User{Base: models.Base{ID: "u-1"}, Role: models.RoleAdmin}

	signed, err := tokens.Issue(user)
	require.NoError(t, err)
	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	other, err := NewTokenManager("another-secret", time.Minute)
	require.NoError(t, err)
	_, err = other.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCapabilities(t *testing.T) {
	owner := Principal{ID: "a", Role: models.RoleUser}
	stranger := Principal{ID: "b", Role: models.RoleUser}
	admin := Principal{ID: "c", Role: models.RoleAdmin}

	assert.NoError(t, RequireOwnerOrAdmin(owner, "a"))
	assert.NoError(t, RequireOwnerOrAdmin(admin, "a"))
	assert.True(t, apperr.IsForbidden(RequireOwnerOrAdmin(stranger, "a")))
	assert.True(t, apperr.IsForbidden(RequireOwnerOrAdmin(Principal{}, "")))

	assert.NoError(t, RequireAdmin(admin))
	assert.True(t, apperr.IsForbidden(RequireAdmin(owner)))
}

func TestBannedPrincipalLosesCapabilities(t *testing.T) {
	owner := Principal{ID: "a", Role: models.RoleUser, Banned: true}
	admin := Principal{ID: "c", Role: models.RoleAdmin, Banned: true}

	err := RequireOwnerOrAdmin(owner, "a")
	assert.True(t, apperr.IsForbidden(err))
	assert.Equal(t, "Account is banned", apperr.MessageOf(err, ""))
	assert.True(t, apperr.IsForbidden(RequireOwnerOrAdmin(admin, "a")))
	assert.True(t, apperr.IsForbidden(RequireAdmin(admin)))
}
