package domain

import (
	"errors"

	"event-admin-console/internal/validation"
)

// MinPasswordLength is the shortest password accepted for admin accounts.
const MinPasswordLength = 8

// AdminUser is a console operator account.
type AdminUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
	RoleID     string `json:"roleId"`
	RoleName   string `json:"roleName"`
	IsActive   bool   `json:"isActive"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
	LastLogin  string `json:"lastLogin,omitempty"`
}

// Role is an assignable admin role.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// DashboardStats is the free-form statistics object the dashboard shows.
type DashboardStats map[string]any

// CreateAdminRequest is the create payload.
type CreateAdminRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
	RoleID     string `json:"roleId"`
	Password   string `json:"password"`
}

// Validate returns the first validation failure.
func (r *CreateAdminRequest) Validate() error {
	return validation.First(
		validation.Email("email", r.Email),
		validation.Required("firstName", "First name", r.FirstName),
		validation.Required("lastName", "Last name", r.LastName),
		validation.Required("roleId", "Role", r.RoleID),
		validatePassword("password", r.Password),
	)
}

// UpdateAdminRequest is a partial update; nil fields are left unchanged.
type UpdateAdminRequest struct {
	Email      *string `json:"email,omitempty"`
	FirstName  *string `json:"firstName,omitempty"`
	MiddleName *string `json:"middleName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	RoleID     *string `json:"roleId,omitempty"`
	IsActive   *bool   `json:"isActive,omitempty"`
}

// ErrEmptyUpdate is returned when an update sets no fields.
var ErrEmptyUpdate = errors.New("update sets no fields")

// Validate checks the fields that are set.
func (r *UpdateAdminRequest) Validate() error {
	if r.Email == nil && r.FirstName == nil && r.MiddleName == nil && r.LastName == nil && r.RoleID == nil && r.IsActive == nil {
		return ErrEmptyUpdate
	}
	if r.Email != nil {
		if err := validation.Email("email", *r.Email); err != nil {
			return err
		}
	}
	if r.FirstName != nil {
		if err := validation.Required("firstName", "First name", *r.FirstName); err != nil {
			return err
		}
	}
	if r.LastName != nil {
		if err := validation.Required("lastName", "Last name", *r.LastName); err != nil {
			return err
		}
	}
	if r.RoleID != nil {
		return validation.Required("roleId", "Role", *r.RoleID)
	}
	return nil
}

// ValidateNewPassword checks a reset password.
func ValidateNewPassword(password string) error {
	return validatePassword("newPassword", password)
}

func validatePassword(field, password string) error {
	if password == "" {
		return &validation.Error{Field: field, Message: "Password is required"}
	}
	if len(password) < MinPasswordLength {
		return &validation.Error{Field: field, Message: "Password must be at least 8 characters"}
	}
	return nil
}
