package security

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealedPrefix marks data produced by Cipher.Seal. Data without it is treated as plaintext.
var sealedPrefix = []byte("enc:v1:")

// ErrDecrypt is returned when sealed data cannot be opened with the configured key.
var ErrDecrypt = errors.New("decrypt failed")

// Cipher encrypts small blobs at rest with XChaCha20-Poly1305.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a hex-encoded 32-byte key.
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("cipher key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("cipher key: want %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext and returns prefix || base64(nonce || ciphertext).
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	out := make([]byte, len(sealedPrefix)+base64.StdEncoding.EncodedLen(len(sealed)))
	copy(out, sealedPrefix)
	base64.StdEncoding.Encode(out[len(sealedPrefix):], sealed)
	return out, nil
}

// Open reverses Seal. Input without the sealed prefix is returned unchanged.
func (c *Cipher) Open(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, sealedPrefix) {
		return data, nil
	}
	raw, err := base64.StdEncoding.DecodeString(string(data[len(sealedPrefix):]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns {
		return nil, ErrDecrypt
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plain, nil
}

// IsSealed reports whether data was produced by Seal.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealedPrefix)
}
