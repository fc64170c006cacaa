// Package digest fingerprints an assembled byte stream and checks it
// against an expected hex digest.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// ErrChecksumMismatch is wrapped by [Error] when Verify fails.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Error describes a failed verification.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sum returns the lowercase hex SHA-256 of data.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Match reports whether two hex digests are equal, ignoring case.
func Match(computed, expected string) bool {
	return strings.EqualFold(computed, strings.TrimSpace(expected))
}

// Verifier accumulates written bytes into h and compares the final digest
// with an expected value.
type Verifier struct {
	hash     hash.Hash
	expected string
}

// NewVerifier returns a Verifier over h. A nil h defaults to SHA-256.
func NewVerifier(h hash.Hash, expected string) *Verifier {
	if h == nil {
		h = sha256.New()
	}
	return &Verifier{hash: h, expected: expected}
}

func (v *Verifier) Write(p []byte) (int, error) {
	return v.hash.Write(p)
}

// Sum returns the lowercase hex digest of everything written so far.
func (v *Verifier) Sum() string {
	return hex.EncodeToString(v.hash.Sum(nil))
}

// Verify returns nil when the digest matches the expected value.
// A nil Verifier always verifies.
func (v *Verifier) Verify() error {
	if v == nil {
		return nil
	}

	actual := v.Sum()
	if !Match(actual, v.expected) {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", v.expected, actual),
		}
	}

	return nil
}
