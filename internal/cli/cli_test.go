package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"event-admin-console/internal/config"
	"event-admin-console/internal/mockapi"
	"event-admin-console/internal/security"
	"event-admin-console/internal/tokenstore"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	clock *testClock
	env   Env
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	issuer, err := security.NewTestIssuer()
	if err != nil {
		t.Fatalf("NewTestIssuer: %v", err)
	}
	clk := &testClock{now: time.Now().UTC().Truncate(time.Second)}
	issuer.WithClock(clk.Now)
	backend, err := mockapi.New(mockapi.Options{
		Issuer:     issuer,
		Hasher:     security.NewPasswordHasher(4),
		RefreshTTL: time.Hour,
		Seed: []mockapi.SeedAccount{
			{Email: "admin@example.com", Password: "password123", FirstName: "Ada", LastName: "Admin", RoleID: mockapi.RoleITAdmin},
			{Email: "events@example.com", Password: "password123", FirstName: "Eve", LastName: "Events", RoleID: mockapi.RoleEventAdmin},
		},
		Clock: clk.Now,
	})
	if err != nil {
		t.Fatalf("mockapi.New: %v", err)
	}
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL:          srv.URL,
		TokenStoreDriver:    config.DriverMemory,
		RefreshSingleFlight: true,
		LandingRoute:        "/",
		UnauthorizedRoute:   "/unauthorized",
		LogLevel:            "error",
	}
	return &harness{
		clock: clk,
		env:   Env{Config: cfg, Store: tokenstore.New(tokenstore.NewMemoryBackend(), nil)},
	}
}

func (h *harness) run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	env := h.env
	env.Stdout, env.Stderr = &out, &errOut
	code = Run(context.Background(), env, args)
	return code, out.String(), errOut.String()
}

func (h *harness) login(t *testing.T, email string) {
	t.Helper()
	if code, _, stderr := h.run(t, "login", "-email", email, "-password", "password123"); code != ExitOK {
		t.Fatalf("login %s: exit %d: %s", email, code, stderr)
	}
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t)
	testCases := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"login without password", []string{"login", "-email", "admin@example.com"}},
		{"events without subcommand", []string{"events"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.name == "events without subcommand" {
				h.login(t, "admin@example.com")
			}
			if code, _, _ := h.run(t, tc.args...); code != ExitUsage {
				t.Errorf("exit = %d, want %d", code, ExitUsage)
			}
		})
	}
}

func TestRun_LoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run(t, "login", "-email", "admin@example.com", "-password", "wrong-password")
	if code != ExitError {
		t.Fatalf("bad login exit = %d, want %d", code, ExitError)
	}
	if !strings.Contains(stderr, "Invalid credentials") {
		t.Errorf("stderr = %q, want backend message", stderr)
	}

	code, stdout, _ := h.run(t, "login", "-email", "admin@example.com", "-password", "password123")
	if code != ExitOK || !strings.Contains(stdout, "Ada Admin") {
		t.Fatalf("login exit = %d stdout = %q", code, stdout)
	}

	code, stdout, _ = h.run(t, "-json", "whoami")
	if code != ExitOK {
		t.Fatalf("whoami exit = %d", code)
	}
	var who map[string]any
	if err := json.Unmarshal([]byte(stdout), &who); err != nil {
		t.Fatalf("whoami -json: %v (%q)", err, stdout)
	}
	if who["email"] != "admin@example.com" || who["roleid"] != mockapi.RoleITAdmin {
		t.Errorf("whoami = %v", who)
	}

	if code, stdout, _ = h.run(t, "logout"); code != ExitOK || !strings.Contains(stdout, "logged out") {
		t.Fatalf("logout exit = %d stdout = %q", code, stdout)
	}
	if code, _, _ = h.run(t, "whoami"); code != ExitError {
		t.Errorf("whoami after logout exit = %d, want %d", code, ExitError)
	}
	// Logout with nothing stored still succeeds.
	if code, _, _ = h.run(t, "logout"); code != ExitOK {
		t.Errorf("second logout exit = %d, want %d", code, ExitOK)
	}
}

func TestRun_GuardDenials(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run(t, "events", "list")
	if code != ExitUsage || !strings.Contains(stderr, "login required") {
		t.Errorf("signed out: exit = %d stderr = %q", code, stderr)
	}

	h.login(t, "events@example.com")
	code, _, stderr = h.run(t, "admins", "list")
	if code != ExitUsage || !strings.Contains(stderr, "permission denied") {
		t.Errorf("event-admin on admins: exit = %d stderr = %q", code, stderr)
	}
	if code, _, _ = h.run(t, "events", "list"); code != ExitOK {
		t.Errorf("event-admin on events: exit = %d, want %d", code, ExitOK)
	}

	_, stdout, _ := h.run(t, "guard", "-role", RoleITAdmin)
	if !strings.Contains(stdout, "redirect_unauthorized") || !strings.Contains(stdout, "/unauthorized") {
		t.Errorf("guard output = %q", stdout)
	}
}

func TestRun_EventsAndAdministration(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin@example.com")

	code, _, stderr := h.run(t, "events", "create", "-title", "Launch Party", "-start", "2026-05-02", "-end", "2026-05-01")
	if code != ExitError || !strings.Contains(stderr, "endDate") {
		t.Errorf("invalid create: exit = %d stderr = %q", code, stderr)
	}

	code, stdout, stderr := h.run(t, "-json", "events", "create", "-title", "Launch Party", "-location", "Hall A",
		"-start", "2026-05-01", "-end", "2026-05-02", "-capacity", "100")
	if code != ExitOK {
		t.Fatalf("create exit = %d stderr = %q", code, stderr)
	}
	var created []map[string]any
	if err := json.Unmarshal([]byte(stdout), &created); err != nil || len(created) != 1 {
		t.Fatalf("create output = %q (%v)", stdout, err)
	}
	id, _ := created[0]["id"].(string)

	if code, stdout, _ = h.run(t, "events", "search", "-q", "launch"); code != ExitOK || !strings.Contains(stdout, "Launch Party") {
		t.Errorf("search exit = %d stdout = %q", code, stdout)
	}
	if code, _, _ = h.run(t, "events", "delete", id); code != ExitOK {
		t.Errorf("delete exit = %d", code)
	}
	if code, _, stderr = h.run(t, "events", "get", id); code != ExitError || !strings.Contains(stderr, "404") {
		t.Errorf("get deleted: exit = %d stderr = %q", code, stderr)
	}

	for _, args := range [][]string{{"admins", "list"}, {"roles"}, {"stats"}, {"customers", "list"}, {"themes", "-active"}, {"fonts"}} {
		if code, _, stderr := h.run(t, args...); code != ExitOK {
			t.Errorf("%v: exit = %d stderr = %q", args, code, stderr)
		}
	}
}

func TestRun_ExpiredRefreshLogsOut(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin@example.com")

	// Past both the access and refresh lifetimes on the backend's clock.
	h.clock.Advance(2 * time.Hour)

	code, _, stderr := h.run(t, "events", "list")
	if code != ExitLoggedOut {
		t.Fatalf("exit = %d, want %d (stderr %q)", code, ExitLoggedOut, stderr)
	}
	if !strings.Contains(stderr, loggedOutNotice) {
		t.Errorf("stderr = %q, want logged-out notice", stderr)
	}
	if _, ok := h.env.Store.Load(context.Background()); ok {
		t.Error("store should be cleared after the session ends")
	}
	if code, _, _ = h.run(t, "events", "list"); code != ExitUsage {
		t.Errorf("next run exit = %d, want %d", code, ExitUsage)
	}
}

func TestRun_StartupFailureExitsWithError(t *testing.T) {
	badKey := &config.Config{
		APIBaseURL:       "http://127.0.0.1:1",
		TokenStoreDriver: config.DriverMemory,
		JWTPublicKey:     "garbage",
	}
	unreachableRedis := &config.Config{
		APIBaseURL:       "http://127.0.0.1:1",
		TokenStoreDriver: config.DriverRedis,
		RedisAddr:        "127.0.0.1:1",
	}
	for name, cfg := range map[string]*config.Config{"bad public key": badKey, "unreachable redis": unreachableRedis} {
		t.Run(name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := Run(context.Background(), Env{Config: cfg, Stderr: &stderr}, []string{"whoami"})
			if code != ExitError {
				t.Errorf("exit = %d, want %d", code, ExitError)
			}
			if !strings.HasPrefix(stderr.String(), "console:") {
				t.Errorf("stderr = %q, want console: prefix", stderr.String())
			}
		})
	}
}

func TestRun_CorruptSessionFileStillLogsIn(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	h.env.Store = nil
	h.env.Config.TokenStoreDriver = config.DriverFile
	h.env.Config.TokenStorePath = path

	if code, _, _ := h.run(t, "whoami"); code != ExitError {
		t.Errorf("whoami on corrupt file exit = %d, want %d", code, ExitError)
	}
	h.login(t, "admin@example.com")
	if code, stdout, stderr := h.run(t, "whoami"); code != ExitOK || !strings.Contains(stdout, "admin@example.com") {
		t.Errorf("whoami after login exit = %d stdout = %q stderr = %q", code, stdout, stderr)
	}
}

func TestRun_GuardPolicyHealthy(t *testing.T) {
	h := newHarness(t)
	h.env.Config.LogLevel = "warn"
	_, _, stderr := h.run(t, "guard")
	if strings.Contains(stderr, "guard policy health check failed") {
		t.Errorf("stderr = %q, embedded policy should pass its health check", stderr)
	}
}
