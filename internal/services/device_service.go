package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/idalmas/chatterbox-be/internal/apperrors"
	"github.com/idalmas/chatterbox-be/internal/models"
)

const (
	// TrustWindow is how long a device stays trusted after OTP verification.
	// Trust is measured from verified_at, so routine use never extends it;
	// after the window the device must re-verify.
	TrustWindow = 7 * 24 * time.Hour

	// maxTrustedDevices caps the per-user device list; the least recently
	// used entries are evicted past this.
	maxTrustedDevices = 10
)

// DeviceServiceProvider defines the interface for the device trust store.
type DeviceServiceProvider interface {
	IsTrusted(ctx context.Context, userID, fingerprint string) (bool, error)
	AddTrustedDevice(ctx context.Context, userID, fingerprint, userAgent string) error
	TouchDevice(ctx context.Context, userID, fingerprint string) error
	ListDevices(ctx context.Context, userID string) ([]models.TrustedDevice, error)
	PruneExpired(ctx context.Context) (int64, error)
}

// DeviceService tracks which device fingerprints are trusted for a user.
type DeviceService struct {
	db *sql.DB
}

// NewDeviceService creates a new DeviceService.
func NewDeviceService(db *sql.DB) *DeviceService {
	return &DeviceService{db: db}
}

// IsTrusted reports whether the fingerprint was verified for this user
// within the trust window. No side effects.
func (s *DeviceService) IsTrusted(ctx context.Context, userID, fingerprint string) (bool, error) {
	cutoff := time.Now().Add(-TrustWindow)
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM trusted_devices WHERE user_id = ? AND fingerprint = ? AND verified_at > ?",
		userID, fingerprint, cutoff).Scan(&count)
	if err != nil {
		return false, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	return count > 0, nil
}

// AddTrustedDevice registers the fingerprint as trusted from now. An existing
// entry for the same fingerprint is replaced rather than duplicated, and the
// list is truncated to the most recently used entries. The whole mutation
// runs in one transaction.
func (s *DeviceService) AddTrustedDevice(ctx context.Context, userID, fingerprint, userAgent string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	defer tx.Rollback()

	now := time.Now()

	if _, err = tx.ExecContext(ctx,
		"DELETE FROM trusted_devices WHERE user_id = ? AND fingerprint = ?",
		userID, fingerprint); err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO trusted_devices(id, user_id, fingerprint, user_agent, last_used, verified_at) VALUES(?, ?, ?, ?, ?, ?)",
		uuid.New().String(), userID, fingerprint, userAgent, now, now); err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}

	// Evict everything past the N most recently used entries.
	if _, err = tx.ExecContext(ctx, `
		DELETE FROM trusted_devices WHERE user_id = ? AND id NOT IN (
			SELECT id FROM trusted_devices WHERE user_id = ?
			ORDER BY last_used DESC LIMIT ?
		)`, userID, userID, maxTrustedDevices); err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	return nil
}

// TouchDevice refreshes last_used for the fingerprint. It deliberately does
// not touch verified_at, and it is a silent no-op when the device is unknown.
func (s *DeviceService) TouchDevice(ctx context.Context, userID, fingerprint string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE trusted_devices SET last_used = ? WHERE user_id = ? AND fingerprint = ?",
		time.Now(), userID, fingerprint)
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	return nil
}

// ListDevices returns the user's trusted devices, most recently used first.
func (s *DeviceService) ListDevices(ctx context.Context, userID string) ([]models.TrustedDevice, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, fingerprint, user_agent, last_used, verified_at FROM trusted_devices WHERE user_id = ? ORDER BY last_used DESC",
		userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	defer rows.Close()

	var devices []models.TrustedDevice
	for rows.Next() {
		var d models.TrustedDevice
		if err := rows.Scan(&d.ID, &d.UserID, &d.Fingerprint, &d.UserAgent, &d.LastUsed, &d.VerifiedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// PruneExpired deletes device rows whose verification fell out of the trust
// window. Hygiene only; IsTrusted already ignores them.
func (s *DeviceService) PruneExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-TrustWindow)
	res, err := s.db.ExecContext(ctx, "DELETE FROM trusted_devices WHERE verified_at <= ?", cutoff)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	return res.RowsAffected()
}
