package security

import (
	"crypto"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"event-admin-console/internal/session/domain"
)

// ErrInvalidToken is returned when a token is malformed or fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Codec turns an access token into a user profile and answers whether it has expired.
type Codec interface {
	Decode(token string) (domain.UserProfile, error)
	IsExpired(token string) bool
}

// JWTCodec reads claims without verifying the signature. The backend remains the authority on validity;
// a forged token only changes what the console displays.
type JWTCodec struct {
	parser *jwt.Parser
	nowF   func() time.Time
}

// NewJWTCodec returns a codec that decodes without signature verification.
func NewJWTCodec() *JWTCodec {
	return &JWTCodec{parser: jwt.NewParser(), nowF: time.Now}
}

// WithClock replaces the clock used by IsExpired. Intended for tests.
func (c *JWTCodec) WithClock(now func() time.Time) *JWTCodec {
	c.nowF = now
	return c
}

// Decode returns the profile claims of token. Malformed input yields a *domain.DecodeError.
func (c *JWTCodec) Decode(token string) (domain.UserProfile, error) {
	claims, err := c.parse(token)
	if err != nil {
		return domain.UserProfile{}, &domain.DecodeError{Err: err}
	}
	return claims.Profile(), nil
}

// IsExpired reports true for malformed tokens, tokens without exp, and tokens whose exp is not in the future.
func (c *JWTCodec) IsExpired(token string) bool {
	claims, err := c.parse(token)
	if err != nil {
		return true
	}
	return expired(claims, c.nowF())
}

func (c *JWTCodec) parse(token string) (*ProfileClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &ProfileClaims{}
	if _, _, err := c.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// VerifyingCodec is a drop-in Codec that also checks the RS256/ES256 signature.
// Expiry is reported by IsExpired, not enforced by Decode.
type VerifyingCodec struct {
	publicKey crypto.PublicKey
	parser    *jwt.Parser
	nowF      func() time.Time
}

// NewVerifyingCodec returns a codec bound to pub. Only RSA and ECDSA keys are accepted.
func NewVerifyingCodec(pub crypto.PublicKey) (*VerifyingCodec, error) {
	method := SigningMethodFor(pub)
	if method == nil {
		return nil, ErrInvalidKey
	}
	return &VerifyingCodec{
		publicKey: pub,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
		nowF: time.Now,
	}, nil
}

// WithClock replaces the clock used by IsExpired. Intended for tests.
func (c *VerifyingCodec) WithClock(now func() time.Time) *VerifyingCodec {
	c.nowF = now
	return c
}

// Decode verifies the signature and returns the profile claims.
func (c *VerifyingCodec) Decode(token string) (domain.UserProfile, error) {
	claims, err := c.parse(token)
	if err != nil {
		return domain.UserProfile{}, &domain.DecodeError{Err: err}
	}
	return claims.Profile(), nil
}

// IsExpired reports true when the token fails verification, has no exp, or exp is not in the future.
func (c *VerifyingCodec) IsExpired(token string) bool {
	claims, err := c.parse(token)
	if err != nil {
		return true
	}
	return expired(claims, c.nowF())
}

func (c *VerifyingCodec) parse(token string) (*ProfileClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &ProfileClaims{}
	_, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// NewCodec returns a VerifyingCodec when publicKey (inline PEM or path) is set, otherwise a JWTCodec.
func NewCodec(publicKey string) (Codec, error) {
	if strings.TrimSpace(publicKey) == "" {
		return NewJWTCodec(), nil
	}
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("jwt public key: %w", err)
	}
	return NewVerifyingCodec(pub)
}

func expired(claims *ProfileClaims, now time.Time) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return !now.Before(claims.ExpiresAt.Time)
}
