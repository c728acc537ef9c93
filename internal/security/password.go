package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password is empty")

// PasswordHasher hashes and checks mock-backend account passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher clamps cost into bcrypt's accepted range; 0 means bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost returns the bcrypt cost in use.
func (h *PasswordHasher) Cost() int { return h.cost }

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Matches reports whether password matches hash.
func (h *PasswordHasher) Matches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
