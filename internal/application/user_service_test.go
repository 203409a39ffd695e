package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	hash, err := helpers.HashPassword("s3cret-pass")
	require.NoError(t, err)
	users := newFakeUsers(&entity.User{ID: "u-1", Email: "editor@example.com", Name: "Editor", Password: hash})
	jwt := helpers.NewJWTManager("landing-pages", "access", "refresh", time.Minute, time.Hour)
	return NewUserService(users, jwt, nil, quietLogger())
}

func TestLogin(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	resp, pair, err := s.Login(ctx, "editor@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.UserID)
	assert.Equal(t, "Editor", resp.Name)

	claims, err := s.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.NotEmpty(t, claims.SessionID)

	refresh, err := s.JWT.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, refresh.SessionID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	_, _, err := s.Login(ctx, "editor@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	weak, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	users := newFakeUsers(&entity.User{ID: "u-2", Email: "old@example.com", Password: string(weak)})
	s := NewUserService(users, helpers.NewJWTManager("", "a", "r", time.Minute, time.Hour), nil, quietLogger())

	_, _, err = s.Login(context.Background(), "old@example.com", "s3cret-pass")
	require.NoError(t, err)
	stored := users.byID["u-2"].Password
	assert.NotEqual(t, string(weak), stored)
	assert.False(t, helpers.NeedsRehash(stored))
	assert.True(t, helpers.CompareHashAndPassword(stored, "s3cret-pass"))
}

func TestRefresh(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()
	_, pair, err := s.Login(ctx, "editor@example.com", "s3cret-pass")
	require.NoError(t, err)

	next, err := s.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = s.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "access tokens are signed with another secret")
}

func TestGetProfile(t *testing.T) {
	s := newTestUserService(t)

	u, err := s.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "editor@example.com", u.Email)

	_, err = s.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "user:session:u-1", SessionKey("u-1"))
}
