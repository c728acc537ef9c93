package cache

import (
	"sync"
	"testing"

	"event-admin-console/internal/session/domain"
)

var profile = domain.UserProfile{ID: "u-1", Email: "a@b.com", FirstName: "Ada", RoleID: "admin"}

func TestCache_Transitions(t *testing.T) {
	c := New()
	if s := c.State(); s.IsAuthenticated || s.User != nil || s.IsLoading || s.Error != "" {
		t.Fatalf("initial state = %+v", s)
	}

	c.SetLoading(true)
	c.SetError("Invalid credentials")
	if s := c.State(); s.IsLoading || s.Error != "Invalid credentials" {
		t.Errorf("after SetError = %+v", s)
	}

	c.SetLoading(true)
	c.SetCredentials(profile)
	s := c.State()
	if !s.IsAuthenticated || s.User == nil || *s.User != profile || s.IsLoading || s.Error != "" {
		t.Errorf("after SetCredentials = %+v", s)
	}

	c.SetError("x")
	c.ClearError()
	if c.State().Error != "" {
		t.Error("ClearError should remove the error")
	}

	c.Clear()
	if s := c.State(); s.IsAuthenticated || s.User != nil {
		t.Errorf("after Clear = %+v", s)
	}
}

func TestCache_StateIsSnapshot(t *testing.T) {
	c := New()
	c.SetCredentials(profile)
	s := c.State()
	s.User.Email = "mutated@example.com"
	if c.State().User.Email != profile.Email {
		t.Error("mutating a snapshot must not change the cache")
	}
}

func TestCache_SubscribeSeesPostMutationState(t *testing.T) {
	c := New()
	var seen []domain.State
	unsubscribe := c.Subscribe(func(s domain.State) {
		if got := c.State(); got.IsAuthenticated != s.IsAuthenticated {
			t.Error("subscriber should observe the mutation already applied")
		}
		seen = append(seen, s)
	})

	c.SetLoading(true)
	c.SetCredentials(profile)
	unsubscribe()
	unsubscribe()
	c.Clear()

	if len(seen) != 2 {
		t.Fatalf("notifications = %d, want 2", len(seen))
	}
	if !seen[0].IsLoading || !seen[1].IsAuthenticated {
		t.Errorf("seen = %+v", seen)
	}
}

func TestCache_ConcurrentMutations(t *testing.T) {
	c := New()
	var mu sync.Mutex
	count := 0
	c.Subscribe(func(domain.State) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); c.SetCredentials(profile) }()
		go func() { defer wg.Done(); _ = c.State() }()
	}
	wg.Wait()
	if count != 20 {
		t.Errorf("notifications = %d, want 20", count)
	}
}
