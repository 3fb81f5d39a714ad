package securestore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/argon2"

	"helpmoto/internal/sentinel"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// DeriveKey derives a 32-byte key from a passphrase and salt with argon2id.
// Same inputs always produce the same key, so a configured passphrase keeps
// previously written ciphertext readable across restarts.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Cipher seals JSON-serialized values with AES-256-GCM. A fresh random
// 12-byte nonce is generated per encryption and prepended to the
// ciphertext; the whole payload travels base64-encoded.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher constructs a Cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// EncryptJSON serializes v to JSON and seals it.
func (c *Cipher) EncryptJSON(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptJSON opens a sealed payload and unmarshals the plaintext into dest.
// Corrupted or foreign-key ciphertext returns sentinel.ErrInvalidData so the
// store can treat it as a miss instead of a crash.
func (c *Cipher) DecryptJSON(payload string, dest any) error {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: decode payload: %v", sentinel.ErrInvalidData, err)
	}
	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return fmt.Errorf("%w: payload shorter than nonce", sentinel.ErrInvalidData)
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return fmt.Errorf("%w: open payload: %v", sentinel.ErrInvalidData, err)
	}

	if err := json.Unmarshal(plaintext, dest); err != nil {
		return fmt.Errorf("%w: unmarshal value: %v", sentinel.ErrInvalidData, err)
	}
	return nil
}
