package mockapi

import (
	"testing"
	"time"

	"event-admin-console/internal/security"
)

func TestSessionStore_Rotate(t *testing.T) {
	s := NewSessionStore()
	exp := time.Now().Add(time.Hour)
	id := s.Create("u1", "r1", exp)

	sess, state := s.find("r1")
	if state != refreshCurrent || sess.id != id {
		t.Fatalf("find(r1) = %v, %v; want current %s", sess.id, state, id)
	}
	if !s.Rotate(id, security.HashRefreshToken("r1"), "r2", exp) {
		t.Fatal("Rotate should succeed for the current hash")
	}
	if _, state := s.find("r1"); state != refreshRetired {
		t.Errorf("find(r1) after rotate = %v, want retired", state)
	}
	if _, state := s.find("r2"); state != refreshCurrent {
		t.Errorf("find(r2) = %v, want current", state)
	}
	if s.Rotate(id, security.HashRefreshToken("r1"), "r3", exp) {
		t.Error("Rotate with a stale hash should fail")
	}
	if _, state := s.find("nope"); state != refreshUnknown {
		t.Errorf("find(nope) = %v, want unknown", state)
	}
}

func TestSessionStore_RevokeUser(t *testing.T) {
	s := NewSessionStore()
	exp := time.Now().Add(time.Hour)
	s.Create("u1", "a", exp)
	s.Create("u1", "b", exp)
	s.Create("u2", "c", exp)

	if n := s.RevokeUser("u1"); n != 2 {
		t.Errorf("RevokeUser = %d, want 2", n)
	}
	if n := s.Active("u1"); n != 0 {
		t.Errorf("Active(u1) = %d, want 0", n)
	}
	if n := s.Active("u2"); n != 1 {
		t.Errorf("Active(u2) = %d, want 1", n)
	}
	if _, state := s.find("a"); state != refreshUnknown {
		t.Errorf("revoked token state = %v, want unknown", state)
	}
	if n := s.RevokeUser("u1"); n != 0 {
		t.Errorf("second RevokeUser = %d, want 0", n)
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	clk := newTestClock()
	s := NewSessionStore()
	s.nowF = clk.Now
	id := s.Create("u1", "r1", clk.Now().Add(time.Minute))

	sess, _ := s.find("r1")
	if s.expired(sess) {
		t.Fatal("fresh session should not be expired")
	}
	clk.Advance(time.Minute)
	sess, _ = s.find("r1")
	if !s.expired(sess) {
		t.Error("session should expire at expiresAt")
	}
	s.Revoke(id)
	if n := s.Active("u1"); n != 0 {
		t.Errorf("Active = %d, want 0", n)
	}
}

func TestSessionStore_ExpiryOnDefaultClock(t *testing.T) {
	s := NewSessionStore()
	s.Create("u1", "r1", time.Now().Add(20*time.Millisecond))
	if n := s.Active("u1"); n != 1 {
		t.Fatalf("Active = %d, want 1", n)
	}
	time.Sleep(60 * time.Millisecond)
	sess, _ := s.find("r1")
	if !s.expired(sess) {
		t.Error("session should expire once the wall clock passes expiresAt")
	}
	if n := s.Active("u1"); n != 0 {
		t.Errorf("Active = %d, want 0", n)
	}
}

func TestDefaultClocksAdvance(t *testing.T) {
	clocks := map[string]func() time.Time{
		"sessions":  NewSessionStore().nowF,
		"directory": NewDirectory(security.NewPasswordHasher(4)).nowF,
		"resources": NewResources().nowF,
		"auth":      NewAuth(NewDirectory(nil), NewSessionStore(), nil, time.Hour, nil).nowF,
	}
	for name, nowF := range clocks {
		first := nowF()
		time.Sleep(5 * time.Millisecond)
		if !nowF().After(first) {
			t.Errorf("%s clock did not advance from %v", name, first)
		}
		if nowF().Location() != time.UTC {
			t.Errorf("%s clock is not UTC", name)
		}
	}
}
