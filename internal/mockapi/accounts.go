package mockapi

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	admindomain "event-admin-console/internal/adminuser/domain"
	"event-admin-console/internal/security"
	"event-admin-console/internal/session/domain"
)

// Built-in roles.
const (
	RoleITAdmin    = "it-admin"
	RoleEventAdmin = "event-admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownRole        = errors.New("unknown role")
	ErrAccountNotFound    = errors.New("admin user not found")
)

// SeedAccount is an account created at startup.
type SeedAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleID    string
}

type account struct {
	user         admindomain.AdminUser
	passwordHash string
}

func (a *account) profile() domain.UserProfile {
	return domain.UserProfile{
		ID:         a.user.ID,
		Email:      a.user.Email,
		FirstName:  a.user.FirstName,
		MiddleName: a.user.MiddleName,
		LastName:   a.user.LastName,
		RoleID:     a.user.RoleID,
	}
}

// Directory holds admin accounts and roles.
type Directory struct {
	mu      sync.RWMutex
	byID    map[string]*account
	byEmail map[string]string
	roles   []admindomain.Role
	hasher  *security.PasswordHasher
	nowF    func() time.Time
}

// NewDirectory returns a directory with the built-in roles and no accounts.
func NewDirectory(hasher *security.PasswordHasher) *Directory {
	return &Directory{
		byID:    make(map[string]*account),
		byEmail: make(map[string]string),
		roles: []admindomain.Role{
			{ID: RoleITAdmin, Name: "IT Administrator", Description: "Manages admin users and customers", Permissions: []string{"admins:write", "customers:write", "events:write"}},
			{ID: RoleEventAdmin, Name: "Event Administrator", Description: "Manages events", Permissions: []string{"events:write"}},
		},
		hasher: hasher,
		nowF:   utcNow,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *Directory) stamp() string {
	return d.nowF().Format(time.RFC3339)
}

func (d *Directory) roleName(id string) (string, bool) {
	for _, r := range d.roles {
		if r.ID == id {
			return r.Name, true
		}
	}
	return "", false
}

// Roles returns the assignable roles.
func (d *Directory) Roles() []admindomain.Role {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.roles)
}

// Create validates req and adds an active account.
func (d *Directory) Create(req admindomain.CreateAdminRequest) (admindomain.AdminUser, error) {
	if err := req.Validate(); err != nil {
		return admindomain.AdminUser{}, err
	}
	hash, err := d.hasher.Hash(req.Password)
	if err != nil {
		return admindomain.AdminUser{}, err
	}
	email := normalizeEmail(req.Email)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byEmail[email]; ok {
		return admindomain.AdminUser{}, ErrEmailTaken
	}
	roleName, ok := d.roleName(req.RoleID)
	if !ok {
		return admindomain.AdminUser{}, ErrUnknownRole
	}
	now := d.stamp()
	a := &account{
		user: admindomain.AdminUser{
			ID:         uuid.NewString(),
			Email:      email,
			FirstName:  strings.TrimSpace(req.FirstName),
			MiddleName: strings.TrimSpace(req.MiddleName),
			LastName:   strings.TrimSpace(req.LastName),
			RoleID:     req.RoleID,
			RoleName:   roleName,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		passwordHash: hash,
	}
	d.byID[a.user.ID] = a
	d.byEmail[email] = a.user.ID
	return a.user, nil
}

// Authenticate checks credentials. Unknown, inactive and mismatched accounts all yield
// ErrInvalidCredentials.
func (d *Directory) Authenticate(email, password string) (domain.UserProfile, error) {
	d.mu.RLock()
	id, ok := d.byEmail[normalizeEmail(email)]
	var a *account
	if ok {
		a = d.byID[id]
	}
	var hash string
	active := false
	if a != nil {
		hash = a.passwordHash
		active = a.user.IsActive
	}
	d.mu.RUnlock()

	if a == nil || !active || !d.hasher.Matches(hash, password) {
		return domain.UserProfile{}, ErrInvalidCredentials
	}

	d.mu.Lock()
	a.user.LastLogin = d.stamp()
	p := a.profile()
	d.mu.Unlock()
	return p, nil
}

// ActiveProfile returns the profile of an active account.
func (d *Directory) ActiveProfile(id string) (domain.UserProfile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[id]
	if !ok || !a.user.IsActive {
		return domain.UserProfile{}, false
	}
	return a.profile(), true
}

// List returns all accounts ordered by email.
func (d *Directory) List() []admindomain.AdminUser {
	d.mu.RLock()
	out := make([]admindomain.AdminUser, 0, len(d.byID))
	for _, a := range d.byID {
		out = append(out, a.user)
	}
	d.mu.RUnlock()
	slices.SortFunc(out, func(a, b admindomain.AdminUser) int { return strings.Compare(a.Email, b.Email) })
	return out
}

// Get returns one account.
func (d *Directory) Get(id string) (admindomain.AdminUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[id]
	if !ok {
		return admindomain.AdminUser{}, ErrAccountNotFound
	}
	return a.user, nil
}

// Update applies a validated partial update.
func (d *Directory) Update(id string, req admindomain.UpdateAdminRequest) (admindomain.AdminUser, error) {
	if err := req.Validate(); err != nil {
		return admindomain.AdminUser{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.byID[id]
	if !ok {
		return admindomain.AdminUser{}, ErrAccountNotFound
	}
	roleName := a.user.RoleName
	if req.RoleID != nil {
		name, ok := d.roleName(*req.RoleID)
		if !ok {
			return admindomain.AdminUser{}, ErrUnknownRole
		}
		roleName = name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if other, ok := d.byEmail[email]; ok && other != id {
			return admindomain.AdminUser{}, ErrEmailTaken
		}
		delete(d.byEmail, a.user.Email)
		d.byEmail[email] = id
		a.user.Email = email
	}
	if req.RoleID != nil {
		a.user.RoleID, a.user.RoleName = *req.RoleID, roleName
	}
	if req.FirstName != nil {
		a.user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.MiddleName != nil {
		a.user.MiddleName = strings.TrimSpace(*req.MiddleName)
	}
	if req.LastName != nil {
		a.user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.IsActive != nil {
		a.user.IsActive = *req.IsActive
	}
	a.user.UpdatedAt = d.stamp()
	return a.user, nil
}

// SetStatus activates or deactivates an account.
func (d *Directory) SetStatus(id string, active bool) (admindomain.AdminUser, error) {
	return d.Update(id, admindomain.UpdateAdminRequest{IsActive: &active})
}

// ResetPassword replaces an account's password.
func (d *Directory) ResetPassword(id, password string) error {
	if err := admindomain.ValidateNewPassword(password); err != nil {
		return err
	}
	hash, err := d.hasher.Hash(password)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.passwordHash = hash
	a.user.UpdatedAt = d.stamp()
	return nil
}

// Delete removes an account.
func (d *Directory) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	delete(d.byEmail, a.user.Email)
	delete(d.byID, id)
	return nil
}

// Counts returns the total and active number of accounts.
func (d *Directory) Counts() (total, active int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.byID {
		total++
		if a.user.IsActive {
			active++
		}
	}
	return total, active
}
