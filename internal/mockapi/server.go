// Package mockapi is an in-memory stand-in for the event platform backend. It serves the auth
// and resource endpoints the console consumes, with bcrypt-checked accounts, signed access
// tokens and rotated refresh tokens. It is meant for local development and tests.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	admindomain "event-admin-console/internal/adminuser/domain"
	"event-admin-console/internal/logging"
	"event-admin-console/internal/security"
)

// ErrProductionEnv is returned by New when asked to run with APP_ENV=production.
var ErrProductionEnv = errors.New("mockapi: refusing to run with APP_ENV=production")

// Options configures a Server.
type Options struct {
	Addr       string
	Env        string
	Issuer     *security.Issuer
	Hasher     *security.PasswordHasher
	RefreshTTL time.Duration
	Seed       []SeedAccount
	// Clock overrides the server clock for sessions and timestamps. The issuer keeps its own.
	Clock  func() time.Time
	Logger *slog.Logger
}

// Server is the mock backend HTTP server.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	auth       *Auth
	dir        *Directory
	res        *Resources
	logger     *slog.Logger
}

// New builds the server and creates the seed accounts.
func New(opts Options) (*Server, error) {
	if strings.EqualFold(strings.TrimSpace(opts.Env), "production") {
		return nil, ErrProductionEnv
	}
	if opts.Issuer == nil {
		return nil, errors.New("mockapi: issuer is required")
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = security.NewPasswordHasher(0)
	}
	refreshTTL := opts.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}
	logger := logging.Or(opts.Logger)

	dir := NewDirectory(hasher)
	sessions := NewSessionStore()
	res := NewResources()
	auth := NewAuth(dir, sessions, opts.Issuer, refreshTTL, logger)
	if opts.Clock != nil {
		dir.nowF, sessions.nowF, res.nowF, auth.nowF = opts.Clock, opts.Clock, opts.Clock, opts.Clock
	}
	for _, seed := range opts.Seed {
		role := seed.RoleID
		if role == "" {
			role = RoleITAdmin
		}
		_, err := dir.Create(admindomain.CreateAdminRequest{
			Email:     seed.Email,
			FirstName: seed.FirstName,
			LastName:  seed.LastName,
			RoleID:    role,
			Password:  seed.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("mockapi: seed %s: %w", seed.Email, err)
		}
	}

	s := &Server{
		auth:   auth,
		dir:    dir,
		res:    res,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, chimiddleware.RealIP, s.logRequests, chimiddleware.Recoverer)
	s.registerRoutes(r)
	s.router = r

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the router, for use with httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/Auth/login", s.handleLogin)
		r.Post("/Auth/refresh", s.handleRefresh)
		r.Post("/Auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireBearer)

			r.Get("/Events", s.handleListEvents)
			r.Post("/Events", s.handleCreateEvent)
			r.Get("/Events/search", s.handleSearchEvents)
			r.Get("/Events/{id}", s.handleGetEvent)
			r.Put("/Events/{id}", s.handleUpdateEvent)
			r.Delete("/Events/{id}", s.handleDeleteEvent)
			r.Post("/Event/createEvent", s.handleCreateFullEvent)

			r.Get("/Common/getAllThemeSelections", s.handleThemes)
			r.Get("/Common/getAllFontsStyles", s.handleFonts)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(RoleITAdmin))

				r.Post("/Customer/createCustomer", s.handleCreateCustomer)
				r.Get("/Customer/getAllCustomer", s.handleListCustomers)

				r.Get("/Admin/users", s.handleListAdmins)
				r.Post("/Admin/users", s.handleCreateAdmin)
				r.Get("/Admin/users/{id}", s.handleGetAdmin)
				r.Put("/Admin/users/{id}", s.handleUpdateAdmin)
				r.Delete("/Admin/users/{id}", s.handleDeleteAdmin)
				r.Put("/Admin/users/{id}/status", s.handleSetAdminStatus)
				r.Post("/Admin/users/{id}/reset-password", s.handleResetPassword)
				r.Get("/Admin/roles", s.handleRoles)
				r.Get("/Admin/dashboard/stats", s.handleStats)
			})
		})
	})
}
