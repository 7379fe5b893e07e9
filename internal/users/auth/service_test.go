// Copyright (c) 2026 Maildeck. All rights reserved.

package auth_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/internal/platform/sec"
	"github.com/maildeck/maildeck/internal/users/auth"
)

// # In-Memory Fakes

// fakeUserRepo mirrors the PostgreSQL repository semantics in memory,
// including the atomic increment-and-maybe-lock of RecordFailedAttempt.
type fakeUserRepo struct {
	users map[string]*auth.User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*auth.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) RecordFailedAttempt(_ context.Context, userID string) (int, *time.Time, error) {
	user, ok := r.users[userID]
	if !ok {
		return 0, nil, apperr.NotFound("User")
	}
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= auth.MaxFailedLoginAttempts && user.LockTime == nil {
		now := time.Now()
		user.LockTime = &now
	}
	return user.FailedLoginAttempts, user.LockTime, nil
}

func (r *fakeUserRepo) ClearFailedLogins(_ context.Context, userID string) error {
	if user, ok := r.users[userID]; ok {
		user.FailedLoginAttempts = 0
		user.LockTime = nil
	}
	return nil
}

func (r *fakeUserRepo) UpdateMFASecret(_ context.Context, userID, secret string) error {
	if user, ok := r.users[userID]; ok {
		user.MFASecret = secret
	}
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]*auth.Session // keyed by ID
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*auth.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *auth.Session) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, session := range r.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked && session.ExpiresAt.After(time.Now()) {
			return session, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (r *fakeSessionRepo) Revoke(_ context.Context, sessionID string) error {
	if session, ok := r.sessions[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAll(_ context.Context, userID string) error {
	for _, session := range r.sessions {
		if session.UserID == userID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) error {
	for id, session := range r.sessions {
		if !session.ExpiresAt.After(time.Now()) {
			delete(r.sessions, id)
		}
	}
	return nil
}

// active counts sessions that are neither revoked nor expired.
func (r *fakeSessionRepo) active() int {
	count := 0
	for _, session := range r.sessions {
		if !session.IsRevoked && session.ExpiresAt.After(time.Now()) {
			count++
		}
	}
	return count
}

type fakePendingRepo struct {
	markers map[string]bool
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{markers: make(map[string]bool)}
}

func (r *fakePendingRepo) Set(_ context.Context, userID string, _ time.Duration) error {
	r.markers[userID] = true
	return nil
}

func (r *fakePendingRepo) Exists(_ context.Context, userID string) (bool, error) {
	return r.markers[userID], nil
}

func (r *fakePendingRepo) Delete(_ context.Context, userID string) error {
	delete(r.markers, userID)
	return nil
}

type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	return "access-" + userID, nil
}

// fakeMXChecker accepts or rejects every address.
type fakeMXChecker struct {
	result bool
}

func (c fakeMXChecker) HasMX(_ context.Context, _ string) bool { return c.result }

// # Test Harness

type harness struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	pending  *fakePendingRepo
	service  *auth.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	pending := newFakePendingRepo()
	service := auth.NewService(users, sessions, pending, fakeTokenProvider{}, nil, "Maildeck")
	return &harness{users: users, sessions: sessions, pending: pending, service: service}
}

const testPassword = "Sup3rSecret!"

// seedUser registers an account directly in the fake repository with a real
// bcrypt hash so Login exercises the production verification path.
func (h *harness) seedUser(t *testing.T, username, email string) *auth.User {
	t.Helper()
	hash, err := sec.HashPassword(testPassword)
	require.NoError(t, err)

	user := &auth.User{
		ID:           "user-" + username,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	h.users.users[user.ID] = user
	return user
}

// totpCode derives the RFC 6238 code for a secret at a given instant, so
// tests can play the role of the authenticator app.
func totpCode(t *testing.T, secret string, unixTime int64) string {
	t.Helper()
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	require.NoError(t, err)

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(unixTime/30))
	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%06d", value%1_000_000)
}

// # Registration

func TestRegister_Success(t *testing.T) {
	h := newHarness(t)

	user, err := h.service.Register(context.Background(), auth.RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.IsAdmin, "new accounts must never be admins")
	assert.NotEqual(t, testPassword, user.PasswordHash, "password must be stored hashed")
	assert.True(t, sec.CheckPasswordHash(testPassword, user.PasswordHash))
	assert.Zero(t, user.FailedLoginAttempts)
}

func TestRegister_ValidationOrder(t *testing.T) {
	tests := []struct {
		name        string
		input       auth.RegisterInput
		wantField   string
		wantCode    string
		wantMessage string
	}{
		{
			name: "confirmation_mismatch_wins",
			input: auth.RegisterInput{
				Username: "x", Email: "bad", Password: "weak", ConfirmPassword: "other",
			},
			wantField: "confirm_password",
			wantCode:  "VALIDATION_ERROR",
		},
		{
			name: "weak_password_before_email",
			input: auth.RegisterInput{
				Username: "x", Email: "bad", Password: "weak", ConfirmPassword: "weak",
			},
			wantField: "password",
			wantCode:  "VALIDATION_ERROR",
		},
		{
			name: "bad_email_before_username",
			input: auth.RegisterInput{
				Username: "x", Email: "bad", Password: testPassword, ConfirmPassword: testPassword,
			},
			wantField: "email",
			wantCode:  "VALIDATION_ERROR",
		},
		{
			name: "bad_username_last_shape_check",
			input: auth.RegisterInput{
				Username: "x", Email: "ok@example.com", Password: testPassword, ConfirmPassword: testPassword,
			},
			wantField: "username",
			wantCode:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.service.Register(context.Background(), tt.input)

			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantCode, ae.Code)
			require.NotEmpty(t, ae.Details)
			assert.Equal(t, tt.wantField, ae.Details[0].Field)

			assert.Empty(t, h.users.users, "failed registration must not persist anything")
		})
	}
}

func TestRegister_Conflicts(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "alice", "alice@example.com")

	_, err := h.service.Register(context.Background(), auth.RegisterInput{
		Username: "alice", Email: "new@example.com",
		Password: testPassword, ConfirmPassword: testPassword,
	})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
	assert.Equal(t, "Username is already taken", ae.Message)

	_, err = h.service.Register(context.Background(), auth.RegisterInput{
		Username: "bob", Email: "alice@example.com",
		Password: testPassword, ConfirmPassword: testPassword,
	})
	ae = apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
	assert.Equal(t, "Email is already registered", ae.Message)
}

func TestRegister_MXCheckFailClosed(t *testing.T) {
	users := newFakeUserRepo()
	service := auth.NewService(users, newFakeSessionRepo(), newFakePendingRepo(),
		fakeTokenProvider{}, fakeMXChecker{result: false}, "Maildeck")

	_, err := service.Register(context.Background(), auth.RegisterInput{
		Username: "alice", Email: "alice@no-mx.example",
		Password: testPassword, ConfirmPassword: testPassword,
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, "email", ae.Details[0].Field)
	assert.Empty(t, users.users)
}

// # Login & Lockout

func TestLogin_Success(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")
	user.FailedLoginAttempts = 3 // below threshold; must reset on success

	result, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: "alice@example.com", Password: testPassword,
	})

	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.False(t, result.MFARequired)
	assert.Equal(t, "access-"+user.ID, result.Session.AccessToken)
	assert.NotEmpty(t, result.Session.RefreshToken)
	assert.Zero(t, user.FailedLoginAttempts, "success must reset the counter")
	assert.Equal(t, 1, h.sessions.active())
}

func TestLogin_UnknownEmail(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: "ghost@example.com", Password: testPassword,
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
	assert.Equal(t, "Invalid email or password", ae.Message, "message must not reveal account existence")
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")

	_, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: "alice@example.com", Password: "Wr0ngPass!",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Invalid email or password", ae.Message, "same message as unknown email")
	assert.Equal(t, 1, user.FailedLoginAttempts)
	assert.Nil(t, user.LockTime)
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")

	for i := 0; i < auth.MaxFailedLoginAttempts; i++ {
		_, err := h.service.Login(context.Background(), auth.LoginInput{
			Email: "alice@example.com", Password: "Wr0ngPass!",
		})
		require.Error(t, err)
	}

	assert.Equal(t, auth.MaxFailedLoginAttempts, user.FailedLoginAttempts)
	require.NotNil(t, user.LockTime, "fifth failure must stamp the lock time")

	// Even the CORRECT password is refused while the window is active,
	// and the refusal must not mutate the counter.
	_, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: "alice@example.com", Password: testPassword,
	})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "LOCKED", ae.Code)
	assert.Equal(t, auth.MaxFailedLoginAttempts, user.FailedLoginAttempts, "locked attempts must not touch the counter")
}

func TestLogin_LockoutExpiresAndResets(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")

	past := time.Now().Add(-auth.LockoutDuration - time.Minute)
	user.FailedLoginAttempts = auth.MaxFailedLoginAttempts
	user.LockTime = &past

	result, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: "alice@example.com", Password: testPassword,
	})

	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Zero(t, user.FailedLoginAttempts)
	assert.Nil(t, user.LockTime)
}

func TestLogin_ExpiredLockWrongPasswordStartsFresh(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")

	past := time.Now().Add(-auth.LockoutDuration - time.Minute)
	user.FailedLoginAttempts = auth.MaxFailedLoginAttempts
	user.LockTime = &past

	_, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: "alice@example.com", Password: "Wr0ngPass!",
	})

	require.Error(t, err)
	assert.Equal(t, 1, user.FailedLoginAttempts, "expired window resets before counting the new failure")
}

// # MFA Challenge

func TestLogin_MFAEnrolledOpensChallenge(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")
	user.MFASecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	user.FailedLoginAttempts = 2

	result, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: "alice@example.com", Password: testPassword,
	})

	require.NoError(t, err)
	assert.True(t, result.MFARequired)
	assert.Equal(t, "alice@example.com", result.Email)
	assert.Nil(t, result.Session, "no session until the second factor is proven")
	assert.True(t, h.pending.markers[user.ID], "pending marker must be set")
	assert.Equal(t, 2, user.FailedLoginAttempts, "counter resets only on full success")
	assert.Zero(t, h.sessions.active())
}

func TestVerifyMFA_Success(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")
	user.MFASecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	user.FailedLoginAttempts = 2
	h.pending.markers[user.ID] = true

	session, err := h.service.VerifyMFA(context.Background(), auth.VerifyMFAInput{
		Email: "alice@example.com",
		Code:  totpCode(t, user.MFASecret, time.Now().Unix()),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.False(t, h.pending.markers[user.ID], "marker must be cleared")
	assert.Zero(t, user.FailedLoginAttempts, "full credential success resets the counter")
	assert.Equal(t, 1, h.sessions.active())
}

func TestVerifyMFA_WrongCodeKeepsMarker(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")
	user.MFASecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	user.FailedLoginAttempts = 2
	h.pending.markers[user.ID] = true

	_, err := h.service.VerifyMFA(context.Background(), auth.VerifyMFAInput{
		Email: "alice@example.com", Code: "000000",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Invalid MFA token", ae.Message)
	assert.True(t, h.pending.markers[user.ID], "marker survives a wrong code")
	assert.Equal(t, 2, user.FailedLoginAttempts, "MFA failures never feed the password lockout")
	assert.Zero(t, h.sessions.active())
}

func TestVerifyMFA_NoPendingMarker(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")
	user.MFASecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

	_, err := h.service.VerifyMFA(context.Background(), auth.VerifyMFAInput{
		Email: "alice@example.com",
		Code:  totpCode(t, user.MFASecret, time.Now().Unix()),
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "No login attempt is awaiting verification", ae.Message)
}

// # MFA Enrollment

func TestEnableMFA(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")

	enrollment, err := h.service.EnableMFA(context.Background(), user.ID)

	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.Secret)
	assert.Equal(t, user.MFASecret, enrollment.Secret)
	assert.Contains(t, enrollment.OTPAuthURL, "otpauth://totp/")
	assert.Contains(t, enrollment.OTPAuthURL, "alice@example.com")
	assert.True(t, user.MFAEnabled())
}

func TestDisableMFA(t *testing.T) {
	h := newHarness(t)
	user := h.seedUser(t, "alice", "alice@example.com")
	user.MFASecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

	require.NoError(t, h.service.DisableMFA(context.Background(), user.ID))
	assert.False(t, user.MFAEnabled())
}

// # Sessions

func TestLogout_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "alice", "alice@example.com")

	result, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: "alice@example.com", Password: testPassword,
	})
	require.NoError(t, err)

	refreshToken := result.Session.RefreshToken
	require.NoError(t, h.service.Logout(context.Background(), refreshToken))
	assert.Zero(t, h.sessions.active())

	// Logging out again, or with garbage, succeeds quietly.
	assert.NoError(t, h.service.Logout(context.Background(), refreshToken))
	assert.NoError(t, h.service.Logout(context.Background(), "never-issued"))
}

func TestRefreshSession_Rotation(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "alice", "alice@example.com")

	result, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: "alice@example.com", Password: testPassword,
	})
	require.NoError(t, err)

	oldToken := result.Session.RefreshToken
	rotated, err := h.service.RefreshSession(context.Background(), oldToken, "ua", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, rotated.RefreshToken)
	assert.Equal(t, 1, h.sessions.active(), "old session revoked, one new active")

	// Replaying the rotated-out token must fail.
	_, err = h.service.RefreshSession(context.Background(), oldToken, "ua", "127.0.0.1")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
}

func TestPurgeExpiredSessions(t *testing.T) {
	h := newHarness(t)

	h.sessions.sessions["live"] = &auth.Session{
		ID: "live", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour),
	}
	h.sessions.sessions["stale"] = &auth.Session{
		ID: "stale", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour),
	}

	require.NoError(t, h.service.PurgeExpiredSessions(context.Background()))

	assert.Contains(t, h.sessions.sessions, "live")
	assert.NotContains(t, h.sessions.sessions, "stale")
}
