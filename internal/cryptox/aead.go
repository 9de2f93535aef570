package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/keyfold/internal/common"
)

// nonceSize is the AES-GCM nonce length in bytes.
const nonceSize = 12

// ErrDecryptFailed is returned for every blob that cannot be opened, whether
// the key is wrong or the ciphertext is damaged. Callers must not be able to
// tell the two apart.
var ErrDecryptFailed = errors.New("decryption failed")

var errKeyUnavailable = errors.New("derived key is not available")

// EncryptBlob seals plaintext under the key with AES-256-GCM and returns
// hex(nonce || ciphertext). A fresh random nonce is generated on every call,
// so encrypting the same plaintext twice never yields the same blob.
func EncryptBlob(key *DerivedKey, plaintext []byte) (string, error) {
	if key == nil || key.key == nil {
		return "", errKeyUnavailable
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key.key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	blob := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return hex.EncodeToString(blob), nil
}

// DecryptBlob opens a blob produced by EncryptBlob. Malformed hex, a
// truncated blob, a damaged ciphertext, and a wrong key all surface as the
// same ErrDecryptFailed.
func DecryptBlob(key *DerivedKey, blobHex string) ([]byte, error) {
	if key == nil || key.key == nil {
		return nil, errKeyUnavailable
	}

	raw, err := hex.DecodeString(blobHex)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	if len(raw) < nonceSize {
		return nil, ErrDecryptFailed
	}

	block, err := aes.NewCipher(key.key)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	plaintext, err := aesgcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// SealJSON marshals v to JSON and encrypts the result with EncryptBlob. The
// intermediate plaintext buffer is wiped before returning.
func SealJSON(key *DerivedKey, v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(plaintext)

	return EncryptBlob(key, plaintext)
}

// OpenJSON decrypts a blob produced by SealJSON and unmarshals it into v.
// Decryption failures surface as ErrDecryptFailed.
func OpenJSON(key *DerivedKey, blobHex string, v any) error {
	plaintext, err := DecryptBlob(key, blobHex)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	return json.Unmarshal(plaintext, v)
}
