// Package models defines the data shapes the vault persists and exchanges.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// VaultMeta is the plaintext descriptor stored at key "vault_meta". It holds
// everything needed to re-derive the vault key, never the key itself.
type VaultMeta struct {
	// Email identifies the vault owner and addresses MFA challenges.
	Email string `json:"email"`

	// Name is the owner's display name.
	Name string `json:"name"`

	// Salt is the hex-encoded random salt fed to the KDF.
	Salt string `json:"salt"`
}

func (m VaultMeta) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.Email),
		validation.Field(&m.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Salt, validation.Required, validation.Length(32, 32), is.Hexadecimal),
	)
}

// Profile is the decrypted payload of the vault blob.
type Profile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Bundle is the portable export of a vault: the same key/value records the
// local store keeps, so importing it elsewhere reproduces the vault exactly.
// Secrets inside stay encrypted under the owner's password.
type Bundle struct {
	// Meta is the vault_meta JSON document.
	Meta string `json:"vault_meta"`

	// Blob is the hex-encoded encrypted vault payload.
	Blob string `json:"vault_blob"`

	// MFA is the hex-encoded sealed TOTP secret, empty when the vault
	// has no enrolled authenticator.
	MFA string `json:"mfa,omitempty"`

	// ExportedAt records when the bundle was produced, in UTC.
	ExportedAt time.Time `json:"exported_at"`
}

func (b Bundle) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Meta, validation.Required),
		validation.Field(&b.Blob, validation.Required, is.Hexadecimal),
		validation.Field(&b.MFA, is.Hexadecimal),
	)
}
