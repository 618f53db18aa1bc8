package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-errors"
)

// resetTokenBytes is the entropy of a reset token before hex encoding.
const resetTokenBytes = 32

// ResetToken is a single-use, time-boxed password reset secret. Only the
// hashed form is ever persisted; Cleartext exists solely to be delivered to
// the account's registered email.
type ResetToken struct {
	Cleartext string
	Hash      string
	ExpiresAt time.Time
}

// NewResetToken generates a high-entropy reset token with the given window.
func NewResetToken(ttl time.Duration) (*ResetToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate reset token")
	}

	cleartext := hex.EncodeToString(buf)

	return &ResetToken{
		Cleartext: cleartext,
		Hash:      HashResetToken(cleartext),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// HashResetToken derives the one-way storage form of a reset token. The same
// function hashes presented tokens during consumption so the two compare.
func HashResetToken(cleartext string) string {
	sum := sha256.Sum256([]byte(cleartext))
	return hex.EncodeToString(sum[:])
}
