// Package auth implements the unlock ceremony of a local vault: password
// verification through authenticated decryption, second-factor enrollment and
// verification, and session issuance.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/dmitrijs2005/keyfold/internal/common"
	"github.com/dmitrijs2005/keyfold/internal/cryptox"
	"github.com/dmitrijs2005/keyfold/internal/logging"
	"github.com/dmitrijs2005/keyfold/internal/mailer"
	"github.com/dmitrijs2005/keyfold/internal/models"
	"github.com/dmitrijs2005/keyfold/internal/repositories/metadata"
	"github.com/dmitrijs2005/keyfold/internal/totp"
)

// Storage keys. The sealed second-factor record is keyed per e-mail so a
// reset can never leave an orphan behind unnoticed.
const (
	metaKey      = "vault_meta"
	blobKey      = "vault_blob"
	mfaKeyPrefix = "mfa_"
)

func mfaKey(email string) string { return mfaKeyPrefix + email }

// ErrWeakPassword rejects passwords below the configured minimum length.
var ErrWeakPassword = errors.New("password is too short")

// Options tune the ceremony. Zero values fall back to the defaults below.
type Options struct {
	Issuer          string
	EmailCodeTTL    time.Duration
	MaxCodeAttempts int
	AttemptCooldown time.Duration
	SessionTTL      time.Duration
	MinPasswordLen  int
}

func (o *Options) setDefaults() {
	if o.Issuer == "" {
		o.Issuer = "Keyfold"
	}
	if o.EmailCodeTTL <= 0 {
		o.EmailCodeTTL = 10 * time.Minute
	}
	if o.MaxCodeAttempts <= 0 {
		o.MaxCodeAttempts = 5
	}
	if o.AttemptCooldown <= 0 {
		o.AttemptCooldown = time.Minute
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 12 * time.Hour
	}
	if o.MinPasswordLen <= 0 {
		o.MinPasswordLen = 8
	}
}

// Flow drives one device's unlock ceremony. It owns the derived key and all
// second-factor material; none of it ever leaves the struct unencrypted.
//
// All methods are safe for concurrent use. Submit operations additionally
// reject with ErrBusy while another submission is still running.
type Flow struct {
	repo    metadata.Repository
	totp    *totp.Engine
	mailer  mailer.Mailer
	issuer  *SessionIssuer
	log     logging.Logger
	opts    Options
	metrics *Metrics

	inFlight atomic.Bool

	mu            sync.Mutex
	state         State
	method        Method
	meta          *models.VaultMeta
	key           *cryptox.DerivedKey
	pendingSecret string
	mfaSecret     string
	challenge     *emailChallenge
	lastCounter   int64
	limiter       *attemptLimiter
	session       *Session
}

// NewFlow builds a Flow over the given collaborators. The initial state is
// StateSignup on a fresh device and StateUnlock when vault metadata exists.
func NewFlow(ctx context.Context, repo metadata.Repository, engine *totp.Engine, m mailer.Mailer, log logging.Logger, opts Options) (*Flow, error) {
	opts.setDefaults()

	f := &Flow{
		repo:        repo,
		totp:        engine,
		mailer:      m,
		issuer:      NewSessionIssuer(opts.SessionTTL),
		log:         log,
		opts:        opts,
		metrics:     &Metrics{},
		state:       StateSignup,
		lastCounter: -1,
		limiter:     newAttemptLimiter(opts.MaxCodeAttempts, opts.AttemptCooldown),
	}

	has, err := f.hasVault(ctx)
	if err != nil {
		return nil, err
	}
	if has {
		f.state = StateUnlock
	}
	return f, nil
}

// State reports the current ceremony step.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Method reports the second factor chosen for the current ceremony.
func (f *Flow) Method() Method {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

// Session returns the current session, nil before SessionGranted.
func (f *Flow) Session() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Email returns the vault owner's e-mail, empty on a fresh device.
func (f *Flow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meta == nil {
		return ""
	}
	return f.meta.Email
}

// Metrics returns a snapshot of the ceremony counters.
func (f *Flow) Metrics() MetricsSnapshot {
	return f.metrics.Snapshot()
}

// ValidateSession checks a previously issued token.
func (f *Flow) ValidateSession(token string) (*Claims, error) {
	return f.issuer.Validate(token)
}

// begin reserves the single submission slot.
func (f *Flow) begin() error {
	if !f.inFlight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (f *Flow) end() {
	f.inFlight.Store(false)
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func (f *Flow) hasVault(ctx context.Context) (bool, error) {
	_, err := f.repo.Get(ctx, metaKey)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(err)
	}
	return true, nil
}

// loadMeta reads and parses vault metadata. Missing or unparseable metadata
// answers ErrSaltMissing: without a salt no key can be derived.
func (f *Flow) loadMeta(ctx context.Context) (*models.VaultMeta, error) {
	raw, err := f.repo.Get(ctx, metaKey)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrSaltMissing
	}
	if err != nil {
		return nil, storageErr(err)
	}

	meta := &models.VaultMeta{}
	if err := json.Unmarshal([]byte(raw), meta); err != nil {
		return nil, ErrSaltMissing
	}
	if meta.Salt == "" {
		return nil, ErrSaltMissing
	}
	return meta, nil
}

// deriveKeyAsync runs the KDF off the calling goroutine so cancellation is
// honored. A derivation that finishes after cancellation is wiped, not used.
func deriveKeyAsync(ctx context.Context, password []byte, salt string) (*cryptox.DerivedKey, error) {
	type result struct {
		key *cryptox.DerivedKey
		err error
	}

	ch := make(chan result, 1)
	go func() {
		k, err := cryptox.DeriveKey(password, salt)
		ch <- result{key: k, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.key != nil {
				r.key.Wipe()
			}
		}()
		return nil, ctx.Err()
	case r := <-ch:
		return r.key, r.err
	}
}

// SubmitSignup creates a vault on a fresh device: generates a salt, derives
// the key, seals an initial profile and persists metadata and blob in one
// transaction. On success the ceremony moves to StateMFASetup.
func (f *Flow) SubmitSignup(ctx context.Context, name string, email string, password []byte) error {
	defer common.WipeByteArray(password)

	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSignup {
		return ErrVaultExists
	}
	if has, err := f.hasVault(ctx); err != nil {
		return err
	} else if has {
		return ErrVaultExists
	}

	if len(password) < f.opts.MinPasswordLen {
		return ErrWeakPassword
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	meta := &models.VaultMeta{Email: email, Name: name, Salt: salt}
	if err := meta.Validate(); err != nil {
		return err
	}

	key, err := deriveKeyAsync(ctx, password, salt)
	if err != nil {
		return err
	}

	profile := &models.Profile{Name: name, Email: email, CreatedAt: time.Now().UTC()}
	blob, err := cryptox.SealJSON(key, profile)
	if err != nil {
		key.Wipe()
		return fmt.Errorf("failed to seal profile: %w", err)
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		key.Wipe()
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	err = f.repo.WithinTx(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Set(ctx, metaKey, string(metaJSON)); err != nil {
			return err
		}
		return r.Set(ctx, blobKey, blob)
	})
	if err != nil {
		key.Wipe()
		return storageErr(err)
	}

	f.meta = meta
	f.key = key
	f.method = MethodNone
	f.state = StateMFASetup
	f.metrics.signups.Add(1)
	f.log.Info(ctx, "vault created", "email", mailer.MaskAddress(email))
	return nil
}

// SubmitUnlock verifies the master password against the stored vault. The
// GCM tag of the blob is the only verifier: a wrong password and a corrupted
// blob are indistinguishable and both answer ErrAuthenticationFailed.
// Afterwards the ceremony moves to StateMFAVerify when a second factor is
// enrolled, StateMFASetup when none is.
func (f *Flow) SubmitUnlock(ctx context.Context, password []byte) error {
	defer common.WipeByteArray(password)

	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateUnlock {
		return ErrInvalidState
	}

	meta, err := f.loadMeta(ctx)
	if err != nil {
		return err
	}

	blob, err := f.repo.Get(ctx, blobKey)
	if errors.Is(err, common.ErrorNotFound) {
		f.metrics.authFailures.Add(1)
		return ErrAuthenticationFailed
	}
	if err != nil {
		return storageErr(err)
	}

	key, err := deriveKeyAsync(ctx, password, meta.Salt)
	if err != nil {
		return err
	}

	var profile models.Profile
	if err := cryptox.OpenJSON(key, blob, &profile); err != nil {
		key.Wipe()
		f.metrics.authFailures.Add(1)
		f.log.Warn(ctx, "unlock failed", "email", mailer.MaskAddress(meta.Email))
		return ErrAuthenticationFailed
	}

	f.meta = meta
	f.key = key
	f.metrics.unlocks.Add(1)

	secretBlob, err := f.repo.Get(ctx, mfaKey(meta.Email))
	if errors.Is(err, common.ErrorNotFound) {
		f.method = MethodNone
		f.state = StateMFASetup
		return nil
	}
	if err != nil {
		return storageErr(err)
	}

	secret, err := cryptox.DecryptBlob(key, secretBlob)
	if err != nil {
		// сломанную запись второго фактора лечим повторной регистрацией
		f.log.Warn(ctx, "sealed mfa record unreadable, re-enrollment required", "email", mailer.MaskAddress(meta.Email))
		f.method = MethodNone
		f.state = StateMFASetup
		return nil
	}

	f.mfaSecret = string(secret)
	common.WipeByteArray(secret)
	f.method = MethodTOTP
	f.lastCounter = -1
	f.limiter.reset()
	f.state = StateMFAVerify
	return nil
}

// Lock wipes the derived key and all ceremony material, invalidates issued
// session tokens and returns to StateUnlock. The vault itself stays on disk.
func (f *Flow) Lock(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSignup {
		return ErrInvalidState
	}

	f.wipeLocked()
	f.issuer.Rotate()
	f.state = StateUnlock
	f.log.Info(ctx, "vault locked")
	return nil
}

// ResetDevice removes every vault record from storage and returns to
// StateSignup. The encrypted vault contents are gone for good.
func (f *Flow) ResetDevice(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.repo.Clear(ctx); err != nil {
		return storageErr(err)
	}

	f.wipeLocked()
	f.meta = nil
	f.issuer.Rotate()
	f.state = StateSignup
	f.metrics.resets.Add(1)
	f.log.Info(ctx, "device reset, vault removed")
	return nil
}

// wipeLocked clears all secret ceremony material. Callers hold f.mu.
func (f *Flow) wipeLocked() {
	if f.key != nil {
		f.key.Wipe()
		f.key = nil
	}
	f.pendingSecret = ""
	f.mfaSecret = ""
	f.challenge = nil
	f.session = nil
	f.method = MethodNone
	f.lastCounter = -1
	f.limiter.reset()
}
