package mockapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	admindomain "event-admin-console/internal/adminuser/domain"
	customerdomain "event-admin-console/internal/customer/domain"
	eventdomain "event-admin-console/internal/event/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type statusRequest struct {
	IsActive *bool `json:"isActive"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}
	tokens, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			s.logger.ErrorContext(r.Context(), "login failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "Login successful", tokenResult{Token: tokens.Access, RefreshToken: tokens.Refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	tokens, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "Token refreshed", tokenResult{Token: tokens.Access, RefreshToken: tokens.Refresh})
}

// handleLogout always succeeds; a missing or unknown refresh token is ignored.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeBadRequest(w, err)
		return
	}
	s.auth.Logout(r.Context(), req.RefreshToken)
	writeResult(w, http.StatusOK, "Logged out", nil)
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, http.StatusOK, "", s.res.Events())
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.res.Event(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "", ev)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventdomain.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	ev, err := s.res.CreateEvent(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, statusMessage("created", "Event"), ev)
}

func (s *Server) handleCreateFullEvent(w http.ResponseWriter, r *http.Request) {
	var req eventdomain.CreateFullEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	ev, err := s.res.CreateFullEvent(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, statusMessage("created", "Event"), ev)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventdomain.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	ev, err := s.res.UpdateEvent(chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, statusMessage("updated", "Event"), ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.res.DeleteEvent(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, statusMessage("deleted", "Event"), nil)
}

func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	q := eventdomain.SearchQuery{
		Text:   r.URL.Query().Get("search"),
		Status: eventdomain.EventStatus(r.URL.Query().Get("status")),
	}
	if err := q.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "", s.res.SearchEvents(q))
}

func (s *Server) handleThemes(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, http.StatusOK, "", s.res.Themes())
}

func (s *Server) handleFonts(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, http.StatusOK, "", s.res.Fonts())
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerdomain.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	c, err := s.res.CreateCustomer(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, statusMessage("created", "Customer"), c)
}

func (s *Server) handleListCustomers(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, http.StatusOK, "", s.res.Customers())
}

func (s *Server) handleListAdmins(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, http.StatusOK, "", s.dir.List())
}

func (s *Server) handleGetAdmin(w http.ResponseWriter, r *http.Request) {
	u, err := s.dir.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "", u)
}

func (s *Server) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req admindomain.CreateAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	u, err := s.dir.Create(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, statusMessage("created", "Admin user"), u)
}

func (s *Server) handleUpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req admindomain.UpdateAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	u, err := s.dir.Update(chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !u.IsActive {
		s.auth.RevokeUser(u.ID)
	}
	writeResult(w, http.StatusOK, statusMessage("updated", "Admin user"), u)
}

// handleSetAdminStatus revokes every session of a deactivated account.
func (s *Server) handleSetAdminStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "isActive is required", nil)
		return
	}
	u, err := s.dir.SetStatus(chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !u.IsActive {
		s.auth.RevokeUser(u.ID)
	}
	writeResult(w, http.StatusOK, statusMessage("updated", "Admin user"), u)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.dir.ResetPassword(id, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	s.auth.RevokeUser(id)
	writeResult(w, http.StatusOK, "Password reset successfully", nil)
}

func (s *Server) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.dir.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	s.auth.RevokeUser(id)
	writeResult(w, http.StatusOK, statusMessage("deleted", "Admin user"), nil)
}

func (s *Server) handleRoles(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, http.StatusOK, "", s.dir.Roles())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	total, byStatus := s.res.EventCounts()
	admins, activeAdmins := s.dir.Counts()
	writeResult(w, http.StatusOK, "", map[string]any{
		"totalEvents":     total,
		"activeEvents":    byStatus[eventdomain.EventStatusActive],
		"inactiveEvents":  byStatus[eventdomain.EventStatusInactive],
		"completedEvents": byStatus[eventdomain.EventStatusCompleted],
		"totalCustomers":  len(s.res.Customers()),
		"totalAdmins":     admins,
		"activeAdmins":    activeAdmins,
	})
}
