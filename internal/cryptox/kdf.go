// Package cryptox implements the client-side cryptography of the vault:
// master-key derivation from the user's password and AEAD sealing of vault
// payloads. Storage only ever sees the hex blobs produced here; the derived
// key itself never leaves this package.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/keyfold/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length produced by DeriveKey.
	KeySize = 32

	// SaltSize is the number of random bytes behind a hex-encoded salt,
	// so the stored salt string is twice this length.
	SaltSize = 16

	// Iterations is the PBKDF2 round count. It is fixed for the life of a
	// vault: changing it would invalidate every previously derived key.
	Iterations = 100_000
)

// DerivedKey holds the vault master key in memory. It has no serialized
// form; the raw bytes stay inside this package and are destroyed by Wipe.
type DerivedKey struct {
	key []byte
}

// GenerateSalt returns a fresh per-vault salt: SaltSize random bytes,
// hex-encoded.
func GenerateSalt() (string, error) {
	return common.MakeRandHexString(SaltSize)
}

// DeriveKey stretches the password into an AES-256 key using
// PBKDF2-HMAC-SHA256 over the decoded salt. The same password and salt
// always produce the same key; either input changing produces an unrelated
// one. The caller keeps ownership of the password slice and should wipe it.
func DeriveKey(password []byte, saltHex string) (*DerivedKey, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}

	key := pbkdf2.Key(password, salt, Iterations, KeySize, sha256.New)
	return &DerivedKey{key: key}, nil
}

// Wipe zeroizes the key material. The DerivedKey must not be used afterwards;
// any Seal or Open with a wiped key fails.
func (k *DerivedKey) Wipe() {
	if k == nil {
		return
	}
	common.WipeByteArray(k.key)
	k.key = nil
}

// String implements fmt.Stringer without revealing key material, so an
// accidental %v in a log line stays harmless.
func (k *DerivedKey) String() string {
	return "DerivedKey(redacted)"
}
