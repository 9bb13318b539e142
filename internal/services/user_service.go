package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/idalmas/chatterbox-be/internal/apperrors"
	"github.com/idalmas/chatterbox-be/internal/models"
)

// dummyHash is compared against when the email is unknown, so failed logins
// cost a bcrypt comparison whether or not the account exists.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("credential-padding"), bcrypt.DefaultCost)
	return h
}()

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, username, email, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	MarkVerified(ctx context.Context, id string) error
	StampLastLogin(ctx context.Context, id string) error
}

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, username, email, password_hash, is_verified, otp, otp_expires, last_login_at, created_at"

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var otp sql.NullString
	var otpExpires, lastLoginAt sql.NullTime
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.IsVerified, &otp, &otpExpires, &lastLoginAt, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	if otp.Valid {
		user.OTP = &otp.String
	}
	if otpExpires.Valid {
		user.OTPExpires = &otpExpires.Time
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperrors.New(apperrors.NotFound, apperrors.CodeUserNotFound)
		}
		return models.User{}, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by their email, including the
// password hash and pending OTP state.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperrors.New(apperrors.NotFound, apperrors.CodeUserNotFound)
		}
		return models.User{}, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	return user, nil
}

// CreateUser creates a new unverified user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users(id, username, email, password_hash, created_at) VALUES(?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "username") {
			return models.User{}, apperrors.Wrap(apperrors.Conflict, apperrors.CodeUsernameTaken, err)
		}
		if isUniqueViolation(err, "email") {
			return models.User{}, apperrors.Wrap(apperrors.Conflict, apperrors.CodeEmailTaken, err)
		}
		return models.User{}, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}

	return user, nil
}

// AuthenticateUser verifies a credential pair. The failure is uniform whether
// the email is unknown or the password is wrong, so responses never leak
// account existence.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return models.User{}, apperrors.New(apperrors.Auth, apperrors.CodeInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperrors.New(apperrors.Auth, apperrors.CodeInvalidCredentials)
	}
	return user, nil
}

// MarkVerified flips the account to verified after a successful OTP check.
func (s *UserService) MarkVerified(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET is_verified = 1 WHERE id = ?", id)
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	return nil
}

// StampLastLogin records a fully-trusted, verified login.
func (s *UserService) StampLastLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET last_login_at = ? WHERE id = ?", time.Now(), id)
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	return nil
}

func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "users."+column)
}
