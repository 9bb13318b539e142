package monitoring

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idalmas/chatterbox-be/internal/database"
	"github.com/idalmas/chatterbox-be/internal/mail"
	"github.com/idalmas/chatterbox-be/internal/services"
)

func newMaintenanceFixture(t *testing.T) (*sql.DB, *Maintenance, *services.UserService, *services.DeviceService, *services.OTPService) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	users := services.NewUserService(db)
	devices := services.NewDeviceService(db)
	otp := services.NewOTPService(db, mail.NewOutbox("http://x"))
	events := services.NewEventService(db)

	m, err := NewMaintenance(otp, devices, events, "@hourly")
	require.NoError(t, err)
	return db, m, users, devices, otp
}

func TestNewMaintenance_RejectsBadCron(t *testing.T) {
	_, err := NewMaintenance(nil, nil, nil, "not a cron expr")
	assert.Error(t, err)
}

func TestRunOnce_PrunesExpiredState(t *testing.T) {
	db, m, users, devices, otp := newMaintenanceFixture(t)
	ctx := context.Background()

	user, err := users.CreateUser(ctx, "alice", "alice@ex.com", "secret1")
	require.NoError(t, err)

	_, _, err = otp.Issue(ctx, user)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE users SET otp_expires = ? WHERE id = ?", time.Now().Add(-time.Minute), user.ID)
	require.NoError(t, err)

	require.NoError(t, devices.AddTrustedDevice(ctx, user.ID, "stale", "ua"))
	_, err = db.Exec("UPDATE trusted_devices SET verified_at = ? WHERE fingerprint = ?",
		time.Now().Add(-8*24*time.Hour), "stale")
	require.NoError(t, err)
	require.NoError(t, devices.AddTrustedDevice(ctx, user.ID, "fresh", "ua"))

	m.RunOnce(ctx)

	stored, err := users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.OTP)
	assert.Nil(t, stored.OTPExpires)

	list, err := devices.ListDevices(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fresh", list[0].Fingerprint)
}
