package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idalmas/chatterbox-be/internal/apperrors"
)

func TestCreateUser_StartsUnverified(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	user := createTestUser(t, users, "alice", "alice@ex.com", "secret1")
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret1", user.PasswordHash, "password must never be stored plaintext")

	stored, err := users.GetUserByEmail(context.Background(), "alice@ex.com")
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)
	assert.Nil(t, stored.OTP)
	assert.Nil(t, stored.OTPExpires)
	assert.Nil(t, stored.LastLoginAt)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	createTestUser(t, users, "alice", "alice@ex.com", "secret1")

	_, err := users.CreateUser(context.Background(), "alice2", "alice@ex.com", "secret1")
	assert.True(t, apperrors.Is(err, apperrors.CodeEmailTaken), "got %v", err)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	createTestUser(t, users, "alice", "alice@ex.com", "secret1")

	_, err := users.CreateUser(context.Background(), "alice", "other@ex.com", "secret1")
	assert.True(t, apperrors.Is(err, apperrors.CodeUsernameTaken), "got %v", err)
}

func TestAuthenticateUser_UniformFailure(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	createTestUser(t, users, "alice", "alice@ex.com", "secret1")

	_, wrongPassword := users.AuthenticateUser(context.Background(), "alice@ex.com", "wrong!!")
	_, unknownEmail := users.AuthenticateUser(context.Background(), "nobody@ex.com", "secret1")

	// Same error either way, so responses cannot leak account existence.
	assert.True(t, apperrors.Is(wrongPassword, apperrors.CodeInvalidCredentials))
	assert.True(t, apperrors.Is(unknownEmail, apperrors.CodeInvalidCredentials))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthenticateUser_Success(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	createTestUser(t, users, "alice", "alice@ex.com", "secret1")

	user, err := users.AuthenticateUser(context.Background(), "alice@ex.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestMarkVerifiedAndStampLastLogin(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	user := createTestUser(t, users, "alice", "alice@ex.com", "secret1")

	require.NoError(t, users.MarkVerified(context.Background(), user.ID))
	require.NoError(t, users.StampLastLogin(context.Background(), user.ID))

	stored, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	require.NotNil(t, stored.LastLoginAt)
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	_, err := users.GetUserByID(context.Background(), "missing")
	ae, ok := apperrors.From(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.NotFound, ae.Kind)
}
