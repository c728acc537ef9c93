package mockapi

import (
	"sync"
	"testing"
	"time"

	"event-admin-console/internal/security"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "password123"
	eventsEmail   = "events@example.com"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now().UTC().Truncate(time.Second)}
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

func testSeed() []SeedAccount {
	return []SeedAccount{
		{Email: adminEmail, Password: adminPassword, FirstName: "Ada", LastName: "Admin", RoleID: RoleITAdmin},
		{Email: eventsEmail, Password: adminPassword, FirstName: "Eve", LastName: "Events", RoleID: RoleEventAdmin},
	}
}

func newTestServer(t *testing.T) (*Server, *testClock) {
	t.Helper()
	issuer, err := security.NewTestIssuer()
	if err != nil {
		t.Fatalf("NewTestIssuer: %v", err)
	}
	clk := newTestClock()
	issuer.WithClock(clk.Now)
	s, err := New(Options{
		Issuer:     issuer,
		Hasher:     security.NewPasswordHasher(4),
		RefreshTTL: 24 * time.Hour,
		Seed:       testSeed(),
		Clock:      clk.Now,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, clk
}
