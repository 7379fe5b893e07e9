// Copyright (c) 2026 Maildeck. All rights reserved.

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from user registration and secure password hashing to
account lockout, the TOTP second-factor challenge, and session lifecycle
management via JWT and Refresh tokens.

Architecture:

  - Service: Orchestrates business logic (Register, Login, MFA).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and
    Redis (pending-MFA markers).
  - Security: Leverages Bcrypt, RSA-signed JWTs, and RFC 6238 TOTP.

The package ensures that identity data remains consistent and secure throughout
the platform’s lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/internal/platform/sec"
	"github.com/maildeck/maildeck/internal/platform/validate"
	"github.com/maildeck/maildeck/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// MXChecker defines the optional registration-time deliverability check.
type MXChecker interface {
	// HasMX reports whether the address's domain publishes MX records.
	// Lookup failures count as false (fail closed).
	HasMX(context context.Context, address string) bool
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// lockout, or login logic must be reviewed by the security team.
type Service struct {
	userRepository       UserRepository
	sessionRepository    SessionRepository
	pendingMFARepository PendingMFARepository
	tokenProvider        TokenProvider
	mxChecker            MXChecker // nil when the MX check is disabled
	mfaIssuer            string
}

// NewService constructs a new auth [Service] with necessary dependencies.
// Pass a nil mxChecker to skip the deliverability check during registration.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	pendingRepo PendingMFARepository,
	tokenProv TokenProvider,
	mxChecker MXChecker,
	mfaIssuer string,
) *Service {
	return &Service{
		userRepository:       userRepo,
		sessionRepository:    sessionRepo,
		pendingMFARepository: pendingRepo,
		tokenProvider:        tokenProv,
		mxChecker:            mxChecker,
		mfaIssuer:            mfaIssuer,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Rules run in a fixed order and the first failure wins, so a
request never partially succeeds: confirmation match, password strength,
email syntax (plus optional MX check), username shape, then uniqueness.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: ValidationError, Conflict (if identity exists), or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Passwords must match before anything else is inspected.
	if input.Password != input.ConfirmPassword {
		return nil, validate.RequiredError(FieldConfirmPassword, "Passwords do not match")
	}

	// Enforce the password policy on the agreed value.
	if !validate.IsStrongPassword(input.Password) {
		return nil, validate.RequiredError(FieldPassword, "Must be at least 8 characters with lowercase, uppercase, digit, and symbol")
	}

	// Syntactic email validity, then (when configured) a DNS MX lookup.
	// An unreachable resolver rejects the address rather than waving it through.
	if !validate.IsEmail(input.Email) {
		return nil, validate.RequiredError(FieldEmail, "Must be a valid email address")
	}
	if service.mxChecker != nil && !service.mxChecker.HasMX(context, input.Email) {
		return nil, validate.RequiredError(FieldEmail, "Email domain cannot receive mail")
	}

	// Username shape.
	if !validate.IsUsername(input.Username) {
		return nil, validate.RequiredError(FieldUsername, "Must be 3-30 characters: letters, digits, underscore, dot, hyphen")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	// The DB unique constraints remain the race-proof backstop for the checks above.
	user := &User{
		ID:                  uuid.New(),
		Username:            input.Username,
		Email:               input.Email,
		PasswordHash:        hashedPassword,
		IsAdmin:             false,
		FailedLoginAttempts: 0,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

// LoginResult is the outcome of a credential check: either an established
// session, or a pending second-factor challenge with no session attached.
type LoginResult struct {
	MFARequired bool
	Email       string
	Session     *LoginSession
}

/*
Login validates user credentials and either establishes a session or opens
a second-factor challenge.

Description: Runs the account-security state machine. An unknown email and a
wrong password produce the same generic message so the response never reveals
which accounts exist. A locked account short-circuits before any counter
mutation. A wrong password performs the atomic increment-and-maybe-lock. A
correct password on an MFA-enrolled account records a volatile pending marker
instead of a session.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Session or pending-challenge indicator
  - err: Unauthorized, Locked, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {

	// Look up by email. Generic message to prevent enumeration.
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// Evaluate the lockout window BEFORE touching the password, so a locked
	// account never mutates its counter.
	switch user.Lockout(time.Now()) {
	case LockoutActive:
		return nil, apperr.Locked("Account is temporarily locked. Try again later.")
	case LockoutExpired:
		// The window elapsed: this very check resets the state.
		if err := service.userRepository.ClearFailedLogins(context, user.ID); err != nil {
			return nil, fmt.Errorf("auth_service_lockout_reset_failed: %w", err)
		}
		user.FailedLoginAttempts = 0
		user.LockTime = nil
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		// One atomic statement increments the counter and stamps the lock
		// time when the threshold is reached.
		if _, _, err := service.userRepository.RecordFailedAttempt(context, user.ID); err != nil {
			return nil, fmt.Errorf("auth_service_failed_attempt_record_failed: %w", err)
		}
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// Password verified. If a second factor is enrolled, open the pending
	// challenge instead of a session; the counter is reset only once the
	// whole credential set has been proven.
	if user.MFAEnabled() {
		if err := service.pendingMFARepository.Set(context, user.ID, MFAPendingTTL); err != nil {
			return nil, fmt.Errorf("auth_service_mfa_pending_set_failed: %w", err)
		}
		return &LoginResult{MFARequired: true, Email: user.Email}, nil
	}

	// Full success without MFA: reset the counter and establish the session.
	if err := service.userRepository.ClearFailedLogins(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_counter_reset_failed: %w", err)
	}
	user.FailedLoginAttempts = 0
	user.LockTime = nil

	session, err := service.establishSession(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Session: session}, nil
}

// VerifyMFAInput defines the second-factor completion attempt.
type VerifyMFAInput struct {
	Email     string
	Code      string
	UserAgent string
	IPAddress string
}

/*
VerifyMFA completes a pending second-factor challenge.

Description: Requires an unexpired pending marker for the account. The code is
checked against the stored TOTP secret with one time-step of clock drift. A
wrong code leaves the marker in place and never touches the password
failed-attempt counter; only password failures feed the lockout.

Parameters:
  - context: context.Context
  - input: VerifyMFAInput

Returns:
  - *LoginSession: Established session on success
  - err: Unauthorized on missing marker or bad code
*/
func (service *Service) VerifyMFA(context context.Context, input VerifyMFAInput) (*LoginSession, error) {

	// Resolve the account under challenge.
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("No login attempt is awaiting verification")
	}

	// The marker proves a password was verified moments ago.
	pending, err := service.pendingMFARepository.Exists(context, user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_mfa_pending_lookup_failed: %w", err)
	}
	if !pending {
		return nil, apperr.Unauthorized("No login attempt is awaiting verification")
	}

	if !user.MFAEnabled() {
		return nil, apperr.Unauthorized("No login attempt is awaiting verification")
	}

	// Validate the one-time code. On failure the marker stays so the user
	// can retry until it expires.
	if !sec.VerifyTOTP(user.MFASecret, input.Code, time.Now().Unix()) {
		return nil, apperr.Unauthorized("Invalid MFA token")
	}

	// Challenge complete: clear the marker, reset the counter, establish the session.
	if err := service.pendingMFARepository.Delete(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_mfa_pending_clear_failed: %w", err)
	}

	if err := service.userRepository.ClearFailedLogins(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_counter_reset_failed: %w", err)
	}

	return service.establishSession(context, user, input.UserAgent, input.IPAddress)
}

// # MFA Enrollment

// MFAEnrollment carries the provisioning material for an authenticator app.
type MFAEnrollment struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

/*
EnableMFA enrolls (or re-enrolls) the user's second factor.

Description: Generates a fresh shared secret, persists it (overwriting any
prior secret), and returns it once together with the otpauth:// provisioning
URI. The secret is never logged and never appears in any other response.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *MFAEnrollment: Secret and provisioning URI
  - err: Generation or persistence failures
*/
func (service *Service) EnableMFA(context context.Context, userID string) (*MFAEnrollment, error) {

	// Fetch the account for its email label.
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Fresh 20-byte base32 secret.
	secret, err := sec.GenerateTOTPSecret()
	if err != nil {
		return nil, fmt.Errorf("auth_service_totp_secret_failed: %w", err)
	}

	// Persisting the secret IS the enrollment; it is never auto-cleared.
	if err := service.userRepository.UpdateMFASecret(context, userID, secret); err != nil {
		return nil, fmt.Errorf("auth_service_mfa_enable_failed: %w", err)
	}

	return &MFAEnrollment{
		Secret:     secret,
		OTPAuthURL: sec.OTPAuthURL(service.mfaIssuer, user.Email, secret),
	}, nil
}

/*
DisableMFA removes the user's second factor.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Persistence failures
*/
func (service *Service) DisableMFA(context context.Context, userID string) error {
	if err := service.userRepository.UpdateMFASecret(context, userID, ""); err != nil {
		return fmt.Errorf("auth_service_mfa_disable_failed: %w", err)
	}
	return nil
}

// # Session Management

/*
Logout permanently revokes the user's active session.

Description: Ensures that a tracked refresh token can never be used again.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	// Hash the refresh token
	tokenHash := sec.HashToken(refreshToken)

	// Find the session by token hash
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) session is already gone or invalid, we consider logout successful (idempotent operation).
	if err != nil {
		return nil
	}

	// If (err == nil) Revoke the session
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the existing refresh token, revokes it to prevent reuse
(replay attack mitigation), and issues a fresh pair of rotated tokens.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	// Hash the incoming refresh token to look it up
	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) the token is either expired, already revoked, or completely invalid.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: Revoke the old session to prevent replay attacks
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Fetch the user associated with this session
	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	return service.establishSession(context, user, userAgent, ipAddress)
}

/*
PurgeExpiredSessions physically removes refresh sessions past their expiry.

Description: Expired sessions are already unusable (the lookup filters them
out), so this is pure storage hygiene. Runs at startup and on a timer.

Parameters:
  - context: context.Context

Returns:
  - err: Deletion failures
*/
func (service *Service) PurgeExpiredSessions(context context.Context) error {
	if err := service.sessionRepository.DeleteExpired(context); err != nil {
		return fmt.Errorf("auth_service_session_purge_failed: %w", err)
	}
	return nil
}

// establishSession mints the access token, creates the tracked refresh
// session, and returns the transport-ready pair.
func (service *Service) establishSession(context context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, string(user.Role()), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Create and persist the tracking session
	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}
