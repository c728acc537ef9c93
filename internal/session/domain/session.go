// Package domain holds the session types shared by the token store, codec, API client and facade.
package domain

import (
	"encoding/json"
	"strings"
)

// UserProfile is the claim set carried by an access token.
type UserProfile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
	RoleID     string `json:"roleid"`
}

// UnmarshalJSON accepts both "roleid" (backend spelling) and "roleId".
func (p *UserProfile) UnmarshalJSON(b []byte) error {
	type plain UserProfile
	var aux struct {
		plain
		RoleIDCamel string `json:"roleId"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = UserProfile(aux.plain)
	if p.RoleID == "" {
		p.RoleID = aux.RoleIDCamel
	}
	return nil
}

// FullName joins first, middle and last name, skipping empty parts.
func (p UserProfile) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// TokenPair is an access/refresh pair as returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Valid reports whether both tokens are present.
func (p TokenPair) Valid() bool {
	return strings.TrimSpace(p.AccessToken) != "" && strings.TrimSpace(p.RefreshToken) != ""
}

// Artifacts are the three persisted session entries.
type Artifacts struct {
	Access  string
	Refresh string
	Profile UserProfile
}

// State mirrors authentication state for UI bindings.
// IsAuthenticated is true iff User is set and a non-expired access token is stored.
type State struct {
	IsAuthenticated bool
	User            *UserProfile
	IsLoading       bool
	Error           string
}

// InitialState is the unauthenticated state a session starts in and returns to on logout.
func InitialState() State {
	return State{}
}
