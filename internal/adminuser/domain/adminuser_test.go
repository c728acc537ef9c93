package domain

import (
	"errors"
	"testing"

	"event-admin-console/internal/validation"
)

func TestCreateAdminRequest_Validate(t *testing.T) {
	valid := CreateAdminRequest{Email: "ops@example.com", FirstName: "Ada", LastName: "Lovelace", RoleID: "it-admin", Password: "s3cretpass"}
	testCases := []struct {
		name      string
		mutate    func(*CreateAdminRequest)
		wantField string
	}{
		{"valid", func(*CreateAdminRequest) {}, ""},
		{"bad email", func(r *CreateAdminRequest) { r.Email = "ops" }, "email"},
		{"missing role", func(r *CreateAdminRequest) { r.RoleID = "" }, "roleId"},
		{"missing password", func(r *CreateAdminRequest) { r.Password = "" }, "password"},
		{"short password", func(r *CreateAdminRequest) { r.Password = "short" }, "password"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			if got := validation.Field(req.Validate()); got != tc.wantField {
				t.Errorf("Validate field = %q, want %q", got, tc.wantField)
			}
		})
	}
}

func TestUpdateAdminRequest_Validate(t *testing.T) {
	if err := (&UpdateAdminRequest{}).Validate(); !errors.Is(err, ErrEmptyUpdate) {
		t.Errorf("empty update err = %v", err)
	}
	active := false
	if err := (&UpdateAdminRequest{IsActive: &active}).Validate(); err != nil {
		t.Errorf("status-only update: %v", err)
	}
	bad := "nope"
	if validation.Field((&UpdateAdminRequest{Email: &bad}).Validate()) != "email" {
		t.Error("bad email should fail")
	}
	blank := ""
	if validation.Field((&UpdateAdminRequest{RoleID: &blank}).Validate()) != "roleId" {
		t.Error("blank role should fail")
	}
}

func TestValidateNewPassword(t *testing.T) {
	if ValidateNewPassword("longenough") != nil {
		t.Error("8+ characters should pass")
	}
	if validation.Field(ValidateNewPassword("1234567")) != "newPassword" {
		t.Error("7 characters should fail")
	}
}
