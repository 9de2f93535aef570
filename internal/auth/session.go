package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/keyfold/internal/common"
)

// Claims carries the registered JWT claims plus the vault owner's e-mail.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Session is the result of a completed ceremony.
type Session struct {
	ID          string
	Email       string
	Name        string
	MFAVerified bool
	IssuedAt    time.Time
	Token       string
}

// SessionIssuer signs and validates session tokens. The signing key is drawn
// at random per issuer and never persisted, so tokens die with the process.
type SessionIssuer struct {
	secretKey []byte
	validity  time.Duration
}

func NewSessionIssuer(validity time.Duration) *SessionIssuer {
	return &SessionIssuer{
		secretKey: common.GenerateRandByteArray(32),
		validity:  validity,
	}
}

// Issue creates a session for the given identity. now is injected so tests
// can pin time.
func (i *SessionIssuer) Issue(email string, name string, now time.Time) (*Session, error) {
	id := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(i.secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &Session{
		ID:          id,
		Email:       email,
		Name:        name,
		MFAVerified: true,
		IssuedAt:    now,
		Token:       tokenString,
	}, nil
}

// Validate parses and checks a session token, returning its claims.
// Expired tokens answer common.ErrTokenExpired, everything else invalid
// answers common.ErrInvalidToken.
func (i *SessionIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Rotate discards the signing key and draws a fresh one. Outstanding tokens
// become invalid immediately; sessions issued afterwards keep working.
func (i *SessionIssuer) Rotate() {
	common.WipeByteArray(i.secretKey)
	i.secretKey = common.GenerateRandByteArray(32)
}
