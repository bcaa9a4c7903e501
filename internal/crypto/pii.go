// Package crypto encrypts PII columns (email, phone) before they reach the
// database. Encryption is deterministic: the GCM nonce is derived from the
// plaintext with HMAC-SHA256, so the same input always produces the same
// ciphertext and equality search over encrypted columns keeps working.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

// ErrDecryptFailed is returned when ciphertext is malformed or was produced
// under a different key. Callers must surface this as a server error, never
// fall back to treating the stored value as plaintext.
var ErrDecryptFailed = errors.New("decryption failed")

var (
	aead     cipher.AEAD
	nonceKey []byte
)

// Init reads PII_SECRET (hex-encoded 32-byte key) and prepares the cipher.
func Init() error {
	secret := os.Getenv("PII_SECRET")
	if secret == "" {
		return fmt.Errorf("PII_SECRET environment variable is not set")
	}

	key, err := hex.DecodeString(secret)
	if err != nil || len(key) != 32 {
		return fmt.Errorf("PII_SECRET must be 32 bytes of hex")
	}

	return initKey(key)
}

func initKey(key []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}

	aead, err = cipher.NewGCM(block)
	if err != nil {
		return err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("pii-nonce"))
	nonceKey = mac.Sum(nil)

	return nil
}

// Encrypt seals plaintext and returns hex(nonce || ciphertext).
func Encrypt(plaintext string) (string, error) {
	if aead == nil {
		return "", fmt.Errorf("crypto: Init not called")
	}

	nonce := deriveNonce(plaintext)
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	return hex.EncodeToString(append(nonce, sealed...)), nil
}

// Decrypt reverses Encrypt. Any malformed input yields ErrDecryptFailed.
func Decrypt(ciphertext string) (string, error) {
	if aead == nil {
		return "", fmt.Errorf("crypto: Init not called")
	}

	raw, err := hex.DecodeString(ciphertext)
	if err != nil || len(raw) < aead.NonceSize() {
		return "", ErrDecryptFailed
	}

	plain, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plain), nil
}

func deriveNonce(plaintext string) []byte {
	mac := hmac.New(sha256.New, nonceKey)
	mac.Write([]byte(plaintext))
	return mac.Sum(nil)[:aead.NonceSize()]
}
