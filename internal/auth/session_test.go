package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/keyfold/internal/common"
)

func TestIssueAndValidate_Success(t *testing.T) {
	t.Parallel()

	issuer := NewSessionIssuer(time.Hour)
	now := time.Now()

	sess, err := issuer.Issue("user@example.com", "User", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if sess.ID == "" {
		t.Fatalf("expected non-empty session id")
	}
	if !sess.MFAVerified {
		t.Fatalf("session must be marked mfa-verified")
	}
	if sess.Token == "" {
		t.Fatalf("expected signed token")
	}

	claims, err := issuer.Validate(sess.Token)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("email mismatch: got %q", claims.Email)
	}
	if claims.ID != sess.ID {
		t.Fatalf("token id mismatch: got %q want %q", claims.ID, sess.ID)
	}
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewSessionIssuer(time.Hour)

	// выпускаем токен "в прошлом", чтобы срок уже истёк
	sess, err := issuer.Issue("u@example.com", "U", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = issuer.Validate(sess.Token)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestValidate_ForeignToken(t *testing.T) {
	t.Parallel()

	a := NewSessionIssuer(time.Hour)
	b := NewSessionIssuer(time.Hour)

	sess, err := a.Issue("u@example.com", "U", time.Now())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// токен подписан другим ключом
	if _, err := b.Validate(sess.Token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestValidate_MalformedToken(t *testing.T) {
	t.Parallel()

	issuer := NewSessionIssuer(time.Hour)
	if _, err := issuer.Validate("not.a.jwt"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestRotate_InvalidatesOldTokensOnly(t *testing.T) {
	t.Parallel()

	issuer := NewSessionIssuer(time.Hour)

	old, err := issuer.Issue("u@example.com", "U", time.Now())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	issuer.Rotate()

	if _, err := issuer.Validate(old.Token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected old token to be rejected after rotate, got %v", err)
	}

	fresh, err := issuer.Issue("u@example.com", "U", time.Now())
	if err != nil {
		t.Fatalf("Issue after rotate error: %v", err)
	}
	if _, err := issuer.Validate(fresh.Token); err != nil {
		t.Fatalf("fresh token must validate after rotate: %v", err)
	}
}
