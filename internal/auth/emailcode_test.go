package auth

import (
	"testing"
	"time"
)

func TestGenerateEmailCode_Format(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := generateEmailCode()
		if err != nil {
			t.Fatalf("generateEmailCode error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected six digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
		if code[0] == '0' {
			t.Fatalf("code %q outside [100000,999999]", code)
		}
		seen[code] = true
	}
	// 200 розыгрышей из 900000 значений практически не должны совпасть все
	if len(seen) < 2 {
		t.Fatalf("codes do not look random: %v", seen)
	}
}

func TestEmailChallenge_CorrectCode(t *testing.T) {
	t.Parallel()

	now := time.Now()
	c := newEmailChallenge("483920", now, 10*time.Minute)

	if err := c.verify("483920", now.Add(time.Minute), 5); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestEmailChallenge_WrongThenCorrect(t *testing.T) {
	t.Parallel()

	now := time.Now()
	c := newEmailChallenge("111111", now, 10*time.Minute)

	if err := c.verify("222222", now, 5); err != ErrInvalidCode {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if err := c.verify("111111", now, 5); err != nil {
		t.Fatalf("correct code must still verify, got %v", err)
	}
}

func TestEmailChallenge_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	c := newEmailChallenge("111111", now, 10*time.Minute)

	err := c.verify("111111", now.Add(11*time.Minute), 5)
	if err != ErrInvalidCode {
		t.Fatalf("expired code must answer ErrInvalidCode, got %v", err)
	}
}

func TestEmailChallenge_AttemptCap(t *testing.T) {
	t.Parallel()

	now := time.Now()
	c := newEmailChallenge("111111", now, 10*time.Minute)

	for i := 0; i < 4; i++ {
		if err := c.verify("000000", now, 5); err != ErrInvalidCode {
			t.Fatalf("try %d: expected ErrInvalidCode, got %v", i+1, err)
		}
	}
	// пятая неверная попытка исчерпывает лимит
	if err := c.verify("000000", now, 5); err != ErrTooManyAttempts {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestEmailChallenge_OnlyDigestIsKept(t *testing.T) {
	t.Parallel()

	c := newEmailChallenge("987654", time.Now(), time.Minute)
	if string(c.digest[:]) == "987654" {
		t.Fatalf("challenge must not keep the plaintext code")
	}
	var zero [32]byte
	if c.digest == zero {
		t.Fatalf("digest must be populated")
	}
}
