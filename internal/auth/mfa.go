package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/keyfold/internal/cryptox"
	"github.com/dmitrijs2005/keyfold/internal/mailer"
)

// TOTPEnrollment is handed to the caller for display: the secret for manual
// entry and the otpauth URI for QR rendering. Neither is persisted until the
// first code verifies.
type TOTPEnrollment struct {
	Secret string
	URI    string
}

// StartTOTPEnrollment generates a fresh authenticator secret and moves the
// ceremony to StateMFAVerify. The secret stays pending in memory; only a
// successful SubmitCode seals it into storage.
func (f *Flow) StartTOTPEnrollment(ctx context.Context) (*TOTPEnrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateMFASetup {
		return nil, ErrInvalidState
	}

	secret, err := f.totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	f.pendingSecret = secret
	f.method = MethodTOTP
	f.lastCounter = -1
	f.limiter.reset()
	f.state = StateMFAVerify

	f.log.Info(ctx, "totp enrollment started", "email", mailer.MaskAddress(f.meta.Email))
	return &TOTPEnrollment{
		Secret: secret,
		URI:    f.totp.ProvisionURI(secret, f.meta.Email),
	}, nil
}

// RequestEmailCode generates a six-digit code, delivers it to the vault
// owner's address and installs it as the active challenge. A repeated call
// replaces the previous code. Returns the code's expiry for display.
func (f *Flow) RequestEmailCode(ctx context.Context) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateMFASetup && f.state != StateMFAVerify {
		return time.Time{}, ErrInvalidState
	}

	code, err := generateEmailCode()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to generate code: %w", err)
	}

	now := time.Now()
	expires := now.Add(f.opts.EmailCodeTTL)

	if err := f.mailer.SendCode(ctx, f.meta.Email, code, expires); err != nil {
		return time.Time{}, fmt.Errorf("failed to deliver code: %w", err)
	}

	f.challenge = newEmailChallenge(code, now, f.opts.EmailCodeTTL)
	f.method = MethodEmail
	// переключение на почту отменяет неподтверждённый totp-секрет
	f.pendingSecret = ""
	f.limiter.reset()
	f.state = StateMFAVerify

	f.log.Info(ctx, "verification code sent", "to", mailer.MaskAddress(f.meta.Email))
	return expires, nil
}

// SubmitCode verifies a second-factor code. On success a pending totp secret
// is sealed under the vault key and persisted, a session token is issued and
// the ceremony reaches StateSessionGranted.
func (f *Flow) SubmitCode(ctx context.Context, code string) (*Session, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	defer f.end()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateMFAVerify {
		return nil, ErrInvalidState
	}

	if !f.limiter.allow() {
		f.metrics.codeFailures.Add(1)
		return nil, ErrTooManyAttempts
	}

	var verr error
	switch f.method {
	case MethodTOTP:
		verr = f.verifyTOTP(code)
	case MethodEmail:
		verr = f.verifyEmailCode(code)
	default:
		verr = ErrMFASecretMissing
	}
	if verr != nil {
		if !errors.Is(verr, ErrMFASecretMissing) {
			f.metrics.codeFailures.Add(1)
		}
		f.log.Warn(ctx, "code verification failed", "method", string(f.method))
		return nil, verr
	}

	if f.pendingSecret != "" {
		sealed, err := cryptox.EncryptBlob(f.key, []byte(f.pendingSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to seal totp secret: %w", err)
		}
		if err := f.repo.Set(ctx, mfaKey(f.meta.Email), sealed); err != nil {
			return nil, storageErr(err)
		}
		f.mfaSecret = f.pendingSecret
		f.pendingSecret = ""
	}

	sess, err := f.issuer.Issue(f.meta.Email, f.meta.Name, time.Now())
	if err != nil {
		return nil, err
	}

	f.session = sess
	f.challenge = nil
	f.state = StateSessionGranted
	f.metrics.sessionsIssued.Add(1)
	f.log.Info(ctx, "session granted", "email", mailer.MaskAddress(f.meta.Email), "method", string(f.method))
	return sess, nil
}

// verifyTOTP checks the code against the pending secret during enrollment or
// the active secret afterwards. A code for an already-redeemed time step is
// refused. Callers hold f.mu.
func (f *Flow) verifyTOTP(code string) error {
	secret := f.mfaSecret
	if f.pendingSecret != "" {
		secret = f.pendingSecret
	}
	if secret == "" {
		return ErrMFASecretMissing
	}

	ok, counter, err := f.totp.Verify(secret, code, time.Now())
	if err != nil || !ok {
		return ErrInvalidCode
	}
	if f.lastCounter >= 0 && counter <= f.lastCounter {
		return ErrInvalidCode // повтор кода
	}
	f.lastCounter = counter
	return nil
}

// verifyEmailCode checks the code against the active challenge. The
// challenge is dropped on success and when attempts run out; a wrong code
// keeps it for another try. Callers hold f.mu.
func (f *Flow) verifyEmailCode(code string) error {
	if f.challenge == nil {
		return ErrInvalidCode
	}

	err := f.challenge.verify(code, time.Now(), f.opts.MaxCodeAttempts)
	if err != nil {
		if errors.Is(err, ErrTooManyAttempts) {
			f.challenge = nil
		}
		return err
	}

	f.challenge = nil
	return nil
}
