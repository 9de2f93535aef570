package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

// emailChallenge is one outstanding e-mail code. Only the SHA-256 digest of
// the code is kept; the plaintext exists in the outgoing message alone.
type emailChallenge struct {
	digest    [32]byte
	expiresAt time.Time
	attempts  int
}

// generateEmailCode returns a uniformly random six-digit code.
func generateEmailCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

func newEmailChallenge(code string, now time.Time, ttl time.Duration) *emailChallenge {
	return &emailChallenge{
		digest:    sha256.Sum256([]byte(code)),
		expiresAt: now.Add(ttl),
	}
}

// verify checks a submitted code against the challenge. An expired or wrong
// code answers ErrInvalidCode; the maxAttempts-th wrong try answers
// ErrTooManyAttempts and the caller must drop the challenge. The caller also
// drops it after success so a code can never be redeemed twice.
func (c *emailChallenge) verify(code string, now time.Time, maxAttempts int) error {
	if now.After(c.expiresAt) {
		return ErrInvalidCode
	}
	digest := sha256.Sum256([]byte(code))
	if subtle.ConstantTimeCompare(digest[:], c.digest[:]) == 1 {
		return nil
	}
	c.attempts++
	if c.attempts >= maxAttempts {
		return ErrTooManyAttempts
	}
	return ErrInvalidCode
}
