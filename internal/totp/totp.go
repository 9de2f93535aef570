// Package totp implements RFC 6238 time-based one-time passwords on top of
// the RFC 4226 HOTP truncation. It backs the authenticator-app factor:
// secrets are provisioned through otpauth:// URIs and codes are verified
// within a configurable clock-skew window.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// secretSize is the shared-secret length in bytes (160 bits, the RFC 4226
// recommendation).
const secretSize = 20

// b32 is the RFC 4648 alphabet without padding, which is what authenticator
// apps expect in otpauth URIs.
var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Config controls code generation and verification.
type Config struct {
	// Issuer is shown by authenticator apps next to the account label.
	Issuer string
	// Digits is the code length.
	Digits int
	// Period is the time-step size in seconds.
	Period int
	// Skew is how many adjacent time steps are accepted on each side of now.
	Skew int
}

// DefaultConfig returns the interoperable defaults: 6 digits, 30-second
// steps, one step of allowed skew.
func DefaultConfig(issuer string) Config {
	return Config{Issuer: issuer, Digits: 6, Period: 30, Skew: 1}
}

// Engine issues and verifies codes for a fixed configuration.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.Digits <= 0 {
		cfg.Digits = 6
	}
	if cfg.Period <= 0 {
		cfg.Period = 30
	}
	if cfg.Skew < 0 {
		cfg.Skew = 0
	}
	return &Engine{cfg: cfg}
}

// GenerateSecret returns a new 160-bit shared secret, base32-encoded without
// padding, uppercase.
func (e *Engine) GenerateSecret() (string, error) {
	b := make([]byte, secretSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return b32.EncodeToString(b), nil
}

// ProvisionURI builds the otpauth:// URI understood by authenticator apps.
// The label is "issuer:account"; both the label and the query values are
// URL-escaped.
func (e *Engine) ProvisionURI(secret, account string) string {
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", e.cfg.Issuer)
	q.Set("algorithm", "SHA1")
	q.Set("digits", strconv.Itoa(e.cfg.Digits))
	q.Set("period", strconv.Itoa(e.cfg.Period))

	label := url.PathEscape(e.cfg.Issuer + ":" + account)
	return fmt.Sprintf("otpauth://totp/%s?%s", label, q.Encode())
}

// Code returns the code for the time step containing t.
func (e *Engine) Code(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	counter := t.Unix() / int64(e.cfg.Period)
	return hotp(key, uint64(counter), e.cfg.Digits), nil
}

// Verify checks code against the skew window around t. On success it also
// returns the matched time-step counter so callers can refuse a replay of
// the same step. Input is trimmed; anything that is not exactly Digits
// decimal digits is rejected before any HMAC work. Comparisons are
// constant-time.
func (e *Engine) Verify(secret, code string, t time.Time) (bool, int64, error) {
	code = strings.TrimSpace(code)
	if len(code) != e.cfg.Digits || !isDigits(code) {
		return false, 0, nil
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return false, 0, err
	}

	base := t.Unix() / int64(e.cfg.Period)
	for off := -e.cfg.Skew; off <= e.cfg.Skew; off++ {
		counter := base + int64(off)
		if counter < 0 {
			continue
		}
		want := hotp(key, uint64(counter), e.cfg.Digits)
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return true, counter, nil
		}
	}
	return false, 0, nil
}

func decodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimSpace(secret))
	key, err := b32.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("invalid secret: %w", err)
	}
	return key, nil
}

// hotp implements the RFC 4226 dynamic truncation of an HMAC-SHA1 over the
// 8-byte big-endian counter, left-padded with zeros to the requested width.
func hotp(key []byte, counter uint64, digits int) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	v := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", digits, v%pow10(digits))
}

func pow10(n int) uint32 {
	p := uint32(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
