package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/idalmas/chatterbox-be/internal/apperrors"
	"github.com/idalmas/chatterbox-be/internal/mail"
	"github.com/idalmas/chatterbox-be/internal/models"
)

const (
	// OTPValidity is how long an issued code stays usable.
	OTPValidity = 10 * time.Minute

	// mailTimeout bounds the mail dispatch so a slow provider fails the
	// request closed instead of hanging it.
	mailTimeout = 5 * time.Second
)

// OTPServiceProvider defines the interface for the one-time-passcode issuer.
type OTPServiceProvider interface {
	Issue(ctx context.Context, user models.User) (code string, preview string, err error)
	Verify(ctx context.Context, user models.User, submitted string) error
	PruneExpired(ctx context.Context) (int64, error)
}

// OTPService generates, persists and dispatches one-time codes. A fresh code
// always replaces any prior one for the user.
type OTPService struct {
	db     *sql.DB
	mailer mail.Mailer
}

// NewOTPService creates a new OTPService dispatching through the given Mailer.
func NewOTPService(db *sql.DB, mailer mail.Mailer) *OTPService {
	return &OTPService{db: db, mailer: mailer}
}

// Issue generates a 6-digit code, stamps it on the user with a fresh expiry,
// and emails it. The code is persisted before dispatch, so a delivery failure
// still leaves a valid code behind for resend-otp to supersede.
func (s *OTPService) Issue(ctx context.Context, user models.User) (string, string, error) {
	code, err := generateCode()
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}

	expires := time.Now().Add(OTPValidity)
	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET otp = ?, otp_expires = ? WHERE id = ?",
		code, expires, user.ID); err != nil {
		return "", "", apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}

	mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()

	subject := "Your verification code"
	text := fmt.Sprintf("Your verification code is: %s", code)
	html := fmt.Sprintf("<p>Your verification code is: <strong>%s</strong></p>", code)

	result, err := s.mailer.Send(mailCtx, user.Email, subject, text, html)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.Dependency, apperrors.CodeMailDelivery, err)
	}

	return code, result.Preview, nil
}

// Verify checks the submitted code against the user's pending OTP. On success
// the code is consumed in a single conditional update, re-checking code and
// expiry in the statement itself so two racing verifications cannot both
// succeed. Callers handle the follow-up state transitions.
func (s *OTPService) Verify(ctx context.Context, user models.User, submitted string) error {
	if user.OTP == nil || user.OTPExpires == nil {
		return apperrors.New(apperrors.Auth, apperrors.CodeNoOtpPending)
	}
	now := time.Now()
	if now.After(*user.OTPExpires) {
		return apperrors.New(apperrors.Auth, apperrors.CodeOtpExpired)
	}
	if subtle.ConstantTimeCompare([]byte(*user.OTP), []byte(submitted)) != 1 {
		return apperrors.New(apperrors.Auth, apperrors.CodeOtpMismatch)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET otp = NULL, otp_expires = NULL WHERE id = ? AND otp = ? AND otp_expires > ?",
		user.ID, submitted, now)
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	if affected == 0 {
		// A concurrent issue or verify changed the pending code underneath us.
		return apperrors.New(apperrors.Auth, apperrors.CodeOtpMismatch)
	}
	return nil
}

// PruneExpired clears OTP fields whose expiry has passed.
func (s *OTPService) PruneExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET otp = NULL, otp_expires = NULL WHERE otp_expires IS NOT NULL AND otp_expires <= ?",
		time.Now())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	return res.RowsAffected()
}

// generateCode returns a uniformly random 6-digit code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
