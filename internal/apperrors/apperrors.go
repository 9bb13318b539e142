// Package apperrors defines the tagged error kinds used across the auth
// flows. Services return *Error values carrying a stable boundary code; the
// HTTP layer maps the kind to a status and serializes the code as the
// response message, so callers never branch on free-form error strings.
package apperrors

import "errors"

// Kind classifies an error for status mapping at the HTTP boundary.
type Kind int

const (
	Validation Kind = iota // malformed or missing input -> 400
	Conflict               // duplicate email/username -> 400
	Auth                   // bad credentials or OTP -> 400
	NotFound               // unknown user -> 404
	Dependency             // mail or storage failure -> 500
)

// Stable boundary codes. These are part of the HTTP contract.
const (
	CodeMissingFields      = "MISSING_FIELDS"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeDisposableEmail    = "DISPOSABLE_EMAIL"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNoOtpPending       = "NO_OTP_PENDING"
	CodeOtpExpired         = "OTP_EXPIRED"
	CodeOtpMismatch        = "OTP_MISMATCH"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeMailDelivery       = "MAIL_DELIVERY_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is a classified error with a stable boundary code.
type Error struct {
	Kind Kind
	Code string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Code + ": " + e.err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.err }

// New returns a classified error with no underlying cause.
func New(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// Wrap classifies an underlying error, preserving it for logging and
// errors.Is/As inspection.
func Wrap(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, err: err}
}

// From extracts the classified error from an error chain, if present.
func From(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries the given boundary code.
func Is(err error, code string) bool {
	if ae, ok := From(err); ok {
		return ae.Code == code
	}
	return false
}
