// Copyright (c) 2026 Maildeck. All rights reserved.

/*
Package auth implements the user identity and account-security layer.

It defines the core domain entities (User, Session) and logic for
authentication, lockout, and the multi-factor challenge lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/maildeck/maildeck/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account of the Maildeck platform.
type User struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"` // Explicitly omitted from JSON for security.
	IsAdmin             bool       `json:"is_admin"`
	IsBanned            bool       `json:"is_banned"`
	IsFlagged           bool       `json:"is_flagged"`
	FailedLoginAttempts int        `json:"failed_login_attempts"`
	LockTime            *time.Time `json:"lock_time,omitempty"`
	MFASecret           string     `json:"-"` // Shared TOTP secret. Omitted for security.
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// MFAEnabled reports whether the account has a second factor enrolled.
// A non-empty stored secret IS the enrollment flag; there is no separate bit.
func (user *User) MFAEnabled() bool {
	return user.MFASecret != ""
}

// Role maps the stored admin flag onto the platform role model.
func (user *User) Role() sec.Role {
	return sec.RoleFromAdminFlag(user.IsAdmin)
}

// Session represents an active refresh-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// # Lockout Predicate

// LockoutState classifies an account's lockout status at a point in time.
type LockoutState int

const (
	// LockoutNone means the account may attempt authentication.
	LockoutNone LockoutState = iota

	// LockoutActive means the lock window has not yet elapsed.
	LockoutActive

	// LockoutExpired means the window has elapsed; the caller must reset
	// the counter and lock time before continuing.
	LockoutExpired
)

// Lockout evaluates the account's lockout state at the given instant.
//
// A counter at or above the threshold with no recorded lock time counts as
// not locked. The counter and lock time are always written together in one
// atomic update, so that combination is unreachable through this code, but
// the predicate tolerates it rather than guessing at a lock start.
func (user *User) Lockout(now time.Time) LockoutState {
	if user.FailedLoginAttempts < MaxFailedLoginAttempts || user.LockTime == nil {
		return LockoutNone
	}

	if now.Before(user.LockTime.Add(LockoutDuration)) {
		return LockoutActive
	}

	return LockoutExpired
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldMFACode         = "mfa_code"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldMessage         = "message"
	FieldMFARequired     = "mfa_required"
	FieldSecret          = "secret"
	FieldOTPAuthURL      = "otpauth_url"
)
