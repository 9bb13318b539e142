package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose this to the client
	IsVerified   bool       `json:"isVerified"`
	OTP          *string    `json:"-"` // Pending one-time code, nil when none
	OTPExpires   *time.Time `json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// TrustedDevice is a device fingerprint the user has verified via OTP.
// Trust decays from VerifiedAt, not LastUsed, so ongoing use never extends
// the window past the last verification.
type TrustedDevice struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Fingerprint string    `json:"fingerprint"`
	UserAgent   string    `json:"userAgent"`
	LastUsed    time.Time `json:"lastUsed"`
	VerifiedAt  time.Time `json:"verifiedAt"`
}
