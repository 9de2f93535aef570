package auth

import "errors"

// The closed set of errors the unlock ceremony reports. Callers branch on
// these with errors.Is; anything not listed here is an internal failure.
var (
	// ErrSaltMissing means unlock ran on a device that has no vault metadata.
	ErrSaltMissing = errors.New("vault metadata is missing")

	// ErrAuthenticationFailed covers wrong password and corrupted vault
	// alike. The two cases are deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrVaultExists rejects signup on a device that already holds a vault.
	ErrVaultExists = errors.New("vault already exists on this device")

	// ErrMFASecretMissing means verification was requested with no enrolled factor.
	ErrMFASecretMissing = errors.New("no mfa secret is enrolled")

	// ErrInvalidCode is the uniform answer to a wrong, expired or replayed code.
	ErrInvalidCode = errors.New("verification code is invalid")

	ErrTooManyAttempts = errors.New("too many failed attempts, wait before retrying")

	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrBusy rejects a submission while another one is still running.
	ErrBusy = errors.New("another attempt is already in progress")

	// ErrInvalidState rejects an operation the current ceremony step does not allow.
	ErrInvalidState = errors.New("operation not allowed in the current state")
)
