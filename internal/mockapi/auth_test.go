package mockapi

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAuth_LoginAndRefreshRotation(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	first, err := s.auth.Login(ctx, adminEmail, adminPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	p, err := s.auth.Authorize(first.Access)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if p.Email != adminEmail || p.RoleID != RoleITAdmin {
		t.Errorf("profile = %+v", p)
	}

	second, err := s.auth.Refresh(ctx, first.Refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.Refresh == first.Refresh {
		t.Error("refresh token should rotate")
	}
	if _, err := s.auth.Refresh(ctx, second.Refresh); err != nil {
		t.Errorf("Refresh with rotated token: %v", err)
	}
}

func TestAuth_RefreshReuseRevokesAllSessions(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	a, err := s.auth.Login(ctx, adminEmail, adminPassword)
	if err != nil {
		t.Fatalf("Login a: %v", err)
	}
	b, err := s.auth.Login(ctx, adminEmail, adminPassword)
	if err != nil {
		t.Fatalf("Login b: %v", err)
	}
	if _, err := s.auth.Refresh(ctx, a.Refresh); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, err := s.auth.Refresh(ctx, a.Refresh); !errors.Is(err, ErrRefreshTokenReuse) {
		t.Fatalf("replayed refresh err = %v, want ErrRefreshTokenReuse", err)
	}
	if _, err := s.auth.Refresh(ctx, b.Refresh); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("other session after reuse err = %v, want ErrInvalidRefreshToken", err)
	}
	if n := s.auth.sessions.Active(a.Profile.ID); n != 0 {
		t.Errorf("active sessions = %d, want 0", n)
	}
}

func TestAuth_LoginInvalid(t *testing.T) {
	s, _ := newTestServer(t)
	testCases := []struct {
		name, email, password string
	}{
		{"wrong password", adminEmail, "nope-nope"},
		{"unknown user", "ghost@example.com", adminPassword},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.auth.Login(context.Background(), tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuth_RefreshFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		s, _ := newTestServer(t)
		if _, err := s.auth.Refresh(ctx, ""); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("after logout", func(t *testing.T) {
		s, _ := newTestServer(t)
		tok, err := s.auth.Login(ctx, adminEmail, adminPassword)
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		s.auth.Logout(ctx, tok.Refresh)
		if _, err := s.auth.Refresh(ctx, tok.Refresh); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("err = %v, want ErrInvalidRefreshToken", err)
		}
		s.auth.Logout(ctx, tok.Refresh)
	})

	t.Run("session expired", func(t *testing.T) {
		s, clk := newTestServer(t)
		tok, err := s.auth.Login(ctx, adminEmail, adminPassword)
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		clk.Advance(25 * time.Hour)
		if _, err := s.auth.Refresh(ctx, tok.Refresh); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("err = %v, want ErrInvalidRefreshToken", err)
		}
	})

	t.Run("account deactivated", func(t *testing.T) {
		s, _ := newTestServer(t)
		tok, err := s.auth.Login(ctx, adminEmail, adminPassword)
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if _, err := s.dir.SetStatus(tok.Profile.ID, false); err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		if _, err := s.auth.Refresh(ctx, tok.Refresh); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("err = %v, want ErrInvalidRefreshToken", err)
		}
	})
}

func TestAuth_AuthorizeExpiredAccess(t *testing.T) {
	s, clk := newTestServer(t)
	tok, err := s.auth.Login(context.Background(), adminEmail, adminPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	clk.Advance(16 * time.Minute)
	if _, err := s.auth.Authorize(tok.Access); err == nil {
		t.Error("Authorize should reject an expired access token")
	}
}
