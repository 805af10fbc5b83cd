package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/query"
)

func newUser(email, username string) *models.User {
	return &models.User{Email: email, Username: username, PasswordHash: "x", IsActive: true}
}

func TestCreateUser_UniqueFields(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	u := newUser(" Alice@Example.com ", "alice")
	require.NoError(t, r.CreateUser(ctx, u))
	assert.Equal(t, "alice@example.com", u.Email)

	err := r.CreateUser(ctx, newUser("ALICE@example.com", "ALICE"))
	require.ErrorIs(t, err, domain.ErrValidation)
	fields := domain.FieldErrors(err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "username")

	taken, err := r.EmailTaken(ctx, "alice@EXAMPLE.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.EmailTaken(ctx, "alice@example.com", u.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserLookupAndDelete(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	u := newUser("bob@example.com", "bob")
	require.NoError(t, r.CreateUser(ctx, u))

	got, err := r.GetUserByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.TouchLastLogin(ctx, u.ID, now))
	got, err = r.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.WithinDuration(t, now, *got.LastLogin, time.Second)

	users, total, err := r.ListUsers(ctx, query.NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, users, 1)

	require.NoError(t, r.AddRefreshToken(ctx, u.ID, "tok", uuid.NewString(), now.Add(time.Hour)))
	require.NoError(t, r.DeleteUser(ctx, u.ID))
	_, err = r.GetUser(ctx, u.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, r.DeleteUser(ctx, u.ID), domain.ErrNotFound)
}

func TestRotateRefreshToken_SingleUse(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := newUser("carol@example.com", "carol")
	require.NoError(t, r.CreateUser(ctx, u))

	exp := time.Now().Add(time.Hour)
	oldJTI := uuid.NewString()
	require.NoError(t, r.AddRefreshToken(ctx, u.ID, "old-token", oldJTI, exp))

	_, err := r.FindRefreshToken(ctx, oldJTI, "old-token")
	require.NoError(t, err)
	_, err = r.FindRefreshToken(ctx, oldJTI, "forged")
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	newJTI := uuid.NewString()
	require.NoError(t, r.RotateRefreshToken(ctx, oldJTI, "old-token", u.ID, "new-token", newJTI, exp))

	err = r.RotateRefreshToken(ctx, oldJTI, "old-token", u.ID, "other", uuid.NewString(), exp)
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	n, err := r.RevokeAllRefreshTokens(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	row, err := r.FindRefreshToken(ctx, newJTI, "new-token")
	require.NoError(t, err)
	assert.True(t, row.Revoked)
}
