package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/idalmas/chatterbox-be/internal/apperrors"
	"github.com/idalmas/chatterbox-be/internal/emailpolicy"
	"github.com/idalmas/chatterbox-be/internal/models"
)

// AuthState is where a signup/login attempt currently stands.
type AuthState int

const (
	// StatePendingOtp means the password (or signup) checked out but a
	// correct one-time code is still required before a session exists.
	StatePendingOtp AuthState = iota + 1
	// StateAuthenticated means the caller may mint a session token.
	StateAuthenticated
)

// Reason tags attached to PendingOtp login responses.
const (
	ReasonAccountNotVerified = "account_not_verified"
	ReasonNewDevice          = "new_device"
)

const minPasswordLen = 6

// SignupResult reports a successful signup: the account exists, unverified,
// with an OTP on its way to the given email.
type SignupResult struct {
	Email   string
	Preview string
}

// LoginResult reports a login outcome. User is only meaningful when State is
// StateAuthenticated; Reason and Preview only when StatePendingOtp.
type LoginResult struct {
	State   AuthState
	User    models.User
	Reason  string
	Preview string
}

// VerifyResult reports a successful OTP verification. AlreadyVerified marks
// the idempotent short-circuit where no code was consumed.
type VerifyResult struct {
	User            models.User
	AlreadyVerified bool
}

// ResendResult reports a resend-otp outcome.
type ResendResult struct {
	AlreadyVerified bool
	Preview         string
}

// AuthService is the orchestrator for the signup -> OTP-verify -> login ->
// device-trust flow. It owns the state transitions; credential checking,
// code issuance and trust bookkeeping live in the injected services.
type AuthService struct {
	users   UserServiceProvider
	devices DeviceServiceProvider
	otp     OTPServiceProvider
	events  EventServiceProvider
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserServiceProvider, devices DeviceServiceProvider, otp OTPServiceProvider, events EventServiceProvider) *AuthService {
	return &AuthService{users: users, devices: devices, otp: otp, events: events}
}

// Signup validates the registration input, creates an unverified account and
// issues the first OTP. No session token is ever minted here; that is
// deferred to OTP verification.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (SignupResult, error) {
	if username == "" || email == "" || password == "" {
		return SignupResult{}, apperrors.New(apperrors.Validation, apperrors.CodeMissingFields)
	}
	if !emailpolicy.ValidFormat(email) {
		return SignupResult{}, apperrors.New(apperrors.Validation, apperrors.CodeInvalidEmail)
	}
	if emailpolicy.IsDisposable(email) {
		return SignupResult{}, apperrors.New(apperrors.Validation, apperrors.CodeDisposableEmail)
	}
	if len(password) < minPasswordLen {
		return SignupResult{}, apperrors.New(apperrors.Validation, apperrors.CodeWeakPassword)
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return SignupResult{}, apperrors.New(apperrors.Conflict, apperrors.CodeEmailTaken)
	}

	user, err := s.users.CreateUser(ctx, username, email, password)
	if err != nil {
		return SignupResult{}, err
	}

	_, preview, err := s.otp.Issue(ctx, user)
	if err != nil {
		return SignupResult{}, err
	}

	s.record(ctx, "auth.signup", "info", "account created, verification code sent", &user.ID)
	return SignupResult{Email: user.Email, Preview: preview}, nil
}

// Login runs the login transition. A correct password alone is not enough:
// unverified accounts and unrecognized fingerprints are routed back through
// the OTP waypoint.
func (s *AuthService) Login(ctx context.Context, email, password, fp, userAgent string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, apperrors.New(apperrors.Validation, apperrors.CodeMissingFields)
	}

	user, err := s.users.AuthenticateUser(ctx, email, password)
	if err != nil {
		s.record(ctx, "auth.login.failed", "warn", "invalid credentials for "+email, nil)
		return LoginResult{}, err
	}

	trusted := false
	if user.IsVerified {
		trusted, err = s.devices.IsTrusted(ctx, user.ID, fp)
		if err != nil {
			return LoginResult{}, err
		}
	}

	if !user.IsVerified || !trusted {
		reason := ReasonNewDevice
		if !user.IsVerified {
			reason = ReasonAccountNotVerified
		}
		_, preview, err := s.otp.Issue(ctx, user)
		if err != nil {
			return LoginResult{}, err
		}
		s.record(ctx, "auth.login.pending", "info", "second factor required: "+reason, &user.ID)
		return LoginResult{State: StatePendingOtp, Reason: reason, Preview: preview}, nil
	}

	if err := s.devices.TouchDevice(ctx, user.ID, fp); err != nil {
		return LoginResult{}, err
	}
	if err := s.users.StampLastLogin(ctx, user.ID); err != nil {
		return LoginResult{}, err
	}
	user, err = s.users.GetUserByID(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	s.record(ctx, "auth.login.success", "info", "trusted-device login", &user.ID)
	return LoginResult{State: StateAuthenticated, User: user}, nil
}

// VerifyOTP runs the OTP verification transition. A verified user on an
// already-trusted device short-circuits without consuming a code; otherwise
// a successful check marks the account verified, trusts the device and hands
// the caller an authenticated user.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code, fp, userAgent string) (VerifyResult, error) {
	if email == "" {
		return VerifyResult{}, apperrors.New(apperrors.Validation, apperrors.CodeMissingFields)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if ae, ok := apperrors.From(err); ok && ae.Kind == apperrors.NotFound {
			return VerifyResult{}, apperrors.New(apperrors.Validation, apperrors.CodeInvalidEmail)
		}
		return VerifyResult{}, err
	}

	if user.IsVerified {
		trusted, err := s.devices.IsTrusted(ctx, user.ID, fp)
		if err != nil {
			return VerifyResult{}, err
		}
		if trusted {
			if err := s.devices.TouchDevice(ctx, user.ID, fp); err != nil {
				return VerifyResult{}, err
			}
			return VerifyResult{User: user, AlreadyVerified: true}, nil
		}
	}

	if err := s.otp.Verify(ctx, user, code); err != nil {
		s.record(ctx, "auth.otp.rejected", "warn", err.Error(), &user.ID)
		return VerifyResult{}, err
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return VerifyResult{}, err
	}
	if err := s.devices.AddTrustedDevice(ctx, user.ID, fp, userAgent); err != nil {
		return VerifyResult{}, err
	}
	if err := s.users.StampLastLogin(ctx, user.ID); err != nil {
		return VerifyResult{}, err
	}
	user, err = s.users.GetUserByID(ctx, user.ID)
	if err != nil {
		return VerifyResult{}, err
	}

	s.record(ctx, "auth.otp.verified", "info", "account verified, device trusted", &user.ID)
	return VerifyResult{User: user}, nil
}

// ResendOTP issues a fresh code, superseding any pending one. Verified
// accounts short-circuit instead of receiving mail.
func (s *AuthService) ResendOTP(ctx context.Context, email string) (ResendResult, error) {
	if email == "" || !emailpolicy.ValidFormat(email) {
		return ResendResult{}, apperrors.New(apperrors.Validation, apperrors.CodeInvalidEmail)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if ae, ok := apperrors.From(err); ok && ae.Kind == apperrors.NotFound {
			return ResendResult{}, apperrors.New(apperrors.Validation, apperrors.CodeInvalidEmail)
		}
		return ResendResult{}, err
	}

	if user.IsVerified {
		return ResendResult{AlreadyVerified: true}, nil
	}

	_, preview, err := s.otp.Issue(ctx, user)
	if err != nil {
		return ResendResult{}, err
	}

	s.record(ctx, "auth.otp.sent", "info", "verification code re-issued", &user.ID)
	return ResendResult{Preview: preview}, nil
}

// record writes an audit event; failures are logged, never propagated into
// the auth flow.
func (s *AuthService) record(ctx context.Context, eventType, level, message string, userID *string) {
	if err := s.events.CreateEvent(ctx, eventType, level, message, userID); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record auth event")
	}
}
