package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/idalmas/chatterbox-be/internal/database"
	"github.com/idalmas/chatterbox-be/internal/mail"
	"github.com/idalmas/chatterbox-be/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, users *UserService, username, email, password string) models.User {
	t.Helper()
	user, err := users.CreateUser(context.Background(), username, email, password)
	require.NoError(t, err)
	return user
}

// pendingOTP reads the user's currently persisted code straight from storage.
func pendingOTP(t *testing.T, db *sql.DB, email string) string {
	t.Helper()
	var otp sql.NullString
	err := db.QueryRow("SELECT otp FROM users WHERE email = ?", email).Scan(&otp)
	require.NoError(t, err)
	require.True(t, otp.Valid, "no OTP pending for %s", email)
	return otp.String
}

// backdateDevice rewinds a device's verification timestamp.
func backdateDevice(t *testing.T, db *sql.DB, userID, fp string, verifiedAt time.Time) {
	t.Helper()
	res, err := db.Exec("UPDATE trusted_devices SET verified_at = ? WHERE user_id = ? AND fingerprint = ?",
		verifiedAt, userID, fp)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

// expireOTP rewinds the user's OTP expiry so the code is stale.
func expireOTP(t *testing.T, db *sql.DB, email string) {
	t.Helper()
	_, err := db.Exec("UPDATE users SET otp_expires = ? WHERE email = ?",
		time.Now().Add(-time.Minute), email)
	require.NoError(t, err)
}

// newTestStack wires the full service graph over a fresh database with the
// dev outbox as the mail capability.
func newTestStack(t *testing.T) (*sql.DB, *AuthService, *UserService, *DeviceService, *OTPService, *mail.Outbox) {
	t.Helper()
	db := newTestDB(t)
	outbox := mail.NewOutbox("http://localhost:8080")
	users := NewUserService(db)
	devices := NewDeviceService(db)
	otp := NewOTPService(db, outbox)
	events := NewEventService(db)
	authSvc := NewAuthService(users, devices, otp, events)
	return db, authSvc, users, devices, otp, outbox
}
