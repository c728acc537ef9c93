package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidKey is returned when PEM or key type is invalid.
var ErrInvalidKey = errors.New("invalid key")

// LoadPEM returns s as bytes when it looks like inline PEM, otherwise reads the file at path s.
// Literal "\n" sequences in inline PEM (common in .env files) become real newlines.
func LoadPEM(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	if strings.HasPrefix(s, "-----BEGIN") {
		return []byte(strings.ReplaceAll(s, `\n`, "\n")), nil
	}
	b, err := os.ReadFile(s)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return b, nil
}

// ParsePrivateKey parses a PEM-encoded RSA or ECDSA private key. s may be inline PEM or a file path.
func ParsePrivateKey(s string) (crypto.Signer, error) {
	block, err := decodePEM(s)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, ErrInvalidKey
		}
		return signer, nil
	default:
		return nil, ErrInvalidKey
	}
}

// ParsePublicKey parses a PEM-encoded RSA or ECDSA public key. s may be inline PEM or a file path.
func ParsePublicKey(s string) (crypto.PublicKey, error) {
	block, err := decodePEM(s)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	default:
		return nil, ErrInvalidKey
	}
}

// SigningMethodFor returns RS256 for RSA keys and ES256 for ECDSA keys; nil otherwise.
func SigningMethodFor(pub crypto.PublicKey) jwt.SigningMethod {
	switch pub.(type) {
	case *rsa.PublicKey:
		return jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		return jwt.SigningMethodES256
	default:
		return nil
	}
}

// GenerateSigningKey returns a fresh P-256 key pair (ES256). The mock backend uses it when no
// key is configured.
func GenerateSigningKey() (crypto.Signer, crypto.PublicKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return key, &key.PublicKey, nil
}

// EncodePublicKeyPEM returns pub as a PKIX "PUBLIC KEY" PEM block.
func EncodePublicKeyPEM(pub crypto.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

func decodePEM(s string) (*pem.Block, error) {
	pemBytes, err := LoadPEM(s)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidKey
	}
	return block, nil
}
