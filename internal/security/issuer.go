package security

import (
	"crypto"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"event-admin-console/internal/session/domain"
)

// Issuer mints and validates access tokens for the mock backend.
// Access tokens are signed JWTs (RS256 or ES256) carrying ProfileClaims; refresh tokens are opaque.
type Issuer struct {
	signer    crypto.Signer
	publicKey crypto.PublicKey
	method    jwt.SigningMethod
	issuer    string
	audience  string
	accessTTL time.Duration
	nowF      func() time.Time
}

// NewIssuer returns an Issuer. The signing method is chosen from the public key type.
func NewIssuer(signer crypto.Signer, pub crypto.PublicKey, issuer, audience string, accessTTL time.Duration) (*Issuer, error) {
	method := SigningMethodFor(pub)
	if method == nil {
		return nil, ErrInvalidKey
	}
	return &Issuer{
		signer:    signer,
		publicKey: pub,
		method:    method,
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
		nowF:      time.Now,
	}, nil
}

// WithClock replaces the issuer clock. Intended for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.nowF = now
	return i
}

// AccessTTL returns the configured access-token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// IssueAccess returns a signed access token for p valid for the configured TTL.
func (i *Issuer) IssueAccess(p domain.UserProfile) (token string, expiresAt time.Time, err error) {
	expiresAt = i.nowF().Add(i.accessTTL)
	token, err = i.IssueAccessUntil(p, expiresAt)
	return token, expiresAt, err
}

// IssueAccessUntil returns a signed access token for p that expires at expiresAt.
func (i *Issuer) IssueAccessUntil(p domain.UserProfile, expiresAt time.Time) (string, error) {
	now := i.nowF()
	claims := NewProfileClaims(p)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   p.ID,
		Audience:  jwt.ClaimStrings{i.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	return i.sign(claims)
}

// IssueRefresh returns a new opaque refresh token.
func (i *Issuer) IssueRefresh() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateAccess verifies signature, issuer, audience and expiry and returns the profile.
func (i *Issuer) ValidateAccess(token string) (domain.UserProfile, error) {
	claims := &ProfileClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.nowF),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return i.publicKey, nil
	})
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Profile(), nil
}

func (i *Issuer) sign(claims ProfileClaims) (string, error) {
	t := jwt.NewWithClaims(i.method, claims)
	return t.SignedString(i.signer)
}
