package security

import (
	"github.com/golang-jwt/jwt/v5"

	"event-admin-console/internal/session/domain"
)

// ProfileClaims is the access-token claim set: registered claims plus the flattened user profile.
// The backend spells the role claim "roleid"; "roleId" is read as a fallback.
type ProfileClaims struct {
	jwt.RegisteredClaims
	UserID     string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
	RoleID     string `json:"roleid"`
	RoleIDAlt  string `json:"roleId,omitempty"`
}

// NewProfileClaims copies p into a claim set. Registered claims are left for the caller.
func NewProfileClaims(p domain.UserProfile) ProfileClaims {
	return ProfileClaims{
		UserID:     p.ID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		MiddleName: p.MiddleName,
		LastName:   p.LastName,
		RoleID:     p.RoleID,
	}
}

// Profile returns the user profile carried by the claims.
func (c *ProfileClaims) Profile() domain.UserProfile {
	role := c.RoleID
	if role == "" {
		role = c.RoleIDAlt
	}
	return domain.UserProfile{
		ID:         c.UserID,
		Email:      c.Email,
		FirstName:  c.FirstName,
		MiddleName: c.MiddleName,
		LastName:   c.LastName,
		RoleID:     role,
	}
}
