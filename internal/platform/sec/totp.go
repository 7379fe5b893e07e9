// Copyright (c) 2026 Maildeck. All rights reserved.

package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"
)

// # Time-Based One-Time Passwords (RFC 6238)

const (
	// totpSecretBytes is the entropy of a generated shared secret.
	totpSecretBytes = 20

	// totpPeriodSeconds is the length of one time step.
	totpPeriodSeconds = 30

	// totpDigits is the length of a generated code.
	totpDigits = 6

	// totpDriftSteps is how many steps on either side of the current one
	// are accepted, absorbing clock skew between server and authenticator.
	totpDriftSteps = 1
)

// base32NoPad encodes secrets the way authenticator apps expect them:
// upper-case base32 without padding characters.
var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateTOTPSecret returns a new random shared secret in base32 form.
func GenerateTOTPSecret() (string, error) {
	buf := make([]byte, totpSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate totp secret: %w", err)
	}
	return base32NoPad.EncodeToString(buf), nil
}

// OTPAuthURL builds the otpauth:// provisioning URI that authenticator apps
// consume, usually rendered as a QR code.
func OTPAuthURL(issuer, accountName, secret string) string {
	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", totpDigits))
	query.Set("period", fmt.Sprintf("%d", totpPeriodSeconds))

	label := url.PathEscape(issuer + ":" + accountName)
	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode())
}

// VerifyTOTP reports whether code matches the secret at unixTime, allowing
// one step of drift in each direction.
func VerifyTOTP(secret, code string, unixTime int64) bool {
	key, err := base32NoPad.DecodeString(strings.ToUpper(strings.TrimSpace(secret)))
	if err != nil {
		return false
	}

	code = strings.TrimSpace(code)
	if len(code) != totpDigits {
		return false
	}

	counter := unixTime / totpPeriodSeconds
	for offset := int64(-totpDriftSteps); offset <= totpDriftSteps; offset++ {
		expected := hotp(key, uint64(counter+offset))
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

// hotp computes the RFC 4226 HMAC-based one-time password for a counter.
func hotp(key []byte, counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation per RFC 4226 section 5.3.
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%06d", value%1_000_000)
}
