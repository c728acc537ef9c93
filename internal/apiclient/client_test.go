package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"event-admin-console/internal/navigation"
	"event-admin-console/internal/security"
	"event-admin-console/internal/session/domain"
	"event-admin-console/internal/tokenstore"
)

var testProfile = domain.UserProfile{ID: "u-1", Email: "a@b.com", FirstName: "Ada", LastName: "Lovelace", RoleID: "admin"}

type recordingListener struct {
	mu         sync.Mutex
	refreshed  []domain.UserProfile
	terminated int
}

func (l *recordingListener) TokensRefreshed(_ context.Context, p domain.UserProfile) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshed = append(l.refreshed, p)
}

func (l *recordingListener) SessionTerminated(context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.terminated++
}

type harness struct {
	client   *Client
	store    *tokenstore.Store
	nav      *navigation.Recorder
	listener *recordingListener
	issuer   *security.Issuer
}

func newHarness(t *testing.T, handler http.Handler, singleFlight bool) *harness {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	issuer, err := security.NewTestIssuer()
	if err != nil {
		t.Fatalf("NewTestIssuer: %v", err)
	}
	h := &harness{
		store:    tokenstore.New(tokenstore.NewMemoryBackend(), nil),
		nav:      &navigation.Recorder{},
		listener: &recordingListener{},
		issuer:   issuer,
	}
	h.client, err = New(Options{
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
		Store:        h.store,
		Codec:        security.NewJWTCodec(),
		Navigator:    h.nav,
		SingleFlight: singleFlight,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.client.SetListener(h.listener)
	return h
}

func (h *harness) token(t *testing.T) string {
	t.Helper()
	tok, _, err := h.issuer.IssueAccess(testProfile)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	return tok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tokenEnvelope(access, refresh string) Envelope[TokenResult] {
	return Envelope[TokenResult]{Version: "1.0", StatusCode: 200, Result: TokenResult{Token: access, RefreshToken: refresh}}
}

func TestNew_Validation(t *testing.T) {
	store := tokenstore.New(tokenstore.NewMemoryBackend(), nil)
	testCases := []struct {
		name string
		opts Options
	}{
		{"relative url", Options{BaseURL: "/api", Store: store, Codec: security.NewJWTCodec(), Navigator: &navigation.Recorder{}}},
		{"missing store", Options{BaseURL: "http://x", Codec: security.NewJWTCodec(), Navigator: &navigation.Recorder{}}},
		{"missing codec", Options{BaseURL: "http://x", Store: store, Navigator: &navigation.Recorder{}}},
		{"missing navigator", Options{BaseURL: "http://x", Store: store, Codec: security.NewJWTCodec()}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.opts); err == nil {
				t.Error("New should return error")
			}
		})
	}
}

func TestDo_StampsHeaders(t *testing.T) {
	var got http.Header
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, 200, Envelope[any]{StatusCode: 200})
	}), true)
	ctx := context.Background()

	if _, err := h.client.Do(ctx, Request{Method: http.MethodGet, Path: "api/Events"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got.Get("Authorization") != "" {
		t.Errorf("Authorization = %q, want none without a token", got.Get("Authorization"))
	}
	if got.Get("Content-Type") != "application/json" || got.Get("Accept") != "application/json" {
		t.Errorf("content headers = %q / %q", got.Get("Content-Type"), got.Get("Accept"))
	}
	if got.Get(requestIDHeader) == "" {
		t.Error("X-Request-ID should be set")
	}

	_ = h.store.Save(ctx, domain.Artifacts{Access: "acc", Refresh: "ref", Profile: testProfile})
	if _, err := h.client.Do(ctx, Request{Method: http.MethodGet, Path: "/api/Events"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got.Get("Authorization") != "Bearer acc" {
		t.Errorf("Authorization = %q, want %q", got.Get("Authorization"), "Bearer acc")
	}
}

// Scenario C: 401, refresh succeeds, retry returns the payload and the store holds the new pair.
func TestDo_RefreshAndRetry(t *testing.T) {
	var newAccess string
	var refreshCalls, getCalls int32
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RefreshPath:
			atomic.AddInt32(&refreshCalls, 1)
			var body refreshRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.RefreshToken != "r1" {
				writeJSON(w, 401, Envelope[any]{StatusCode: 401, Message: "bad refresh"})
				return
			}
			writeJSON(w, 200, tokenEnvelope(newAccess, "r2"))
		case "/api/Events":
			atomic.AddInt32(&getCalls, 1)
			if r.Header.Get("Authorization") != "Bearer "+newAccess {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, 200, Envelope[[]string]{StatusCode: 200, Result: []string{"e1", "e2"}})
		}
	}), true)
	newAccess = h.token(t)
	ctx := context.Background()
	_ = h.store.Save(ctx, domain.Artifacts{Access: "expired", Refresh: "r1", Profile: testProfile})

	events, err := Call[[]string](ctx, h.client, Request{Method: http.MethodGet, Path: "/api/Events"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(events) != 2 || events[0] != "e1" {
		t.Errorf("events = %v, want [e1 e2]", events)
	}
	if refreshCalls != 1 || getCalls != 2 {
		t.Errorf("refresh calls = %d, get calls = %d; want 1 and 2", refreshCalls, getCalls)
	}
	stored, ok := h.store.Load(ctx)
	if !ok {
		t.Fatal("store should hold the refreshed session")
	}
	if stored.Access != newAccess || stored.Refresh != "r2" || stored.Profile != testProfile {
		t.Errorf("stored = %+v", stored)
	}
	if len(h.listener.refreshed) != 1 || h.listener.refreshed[0] != testProfile {
		t.Errorf("listener refreshed = %v", h.listener.refreshed)
	}
	if h.nav.Count() != 0 {
		t.Errorf("navigations = %v, want none", h.nav.Routes())
	}
}

// P3: the retry is issued exactly once even when it also returns 401.
func TestDo_SingleRetry(t *testing.T) {
	var refreshCalls, getCalls int32
	var validToken string
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RefreshPath {
			atomic.AddInt32(&refreshCalls, 1)
			writeJSON(w, 200, tokenEnvelope(validToken, "r2"))
			return
		}
		atomic.AddInt32(&getCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}), true)
	validToken = h.token(t)
	ctx := context.Background()
	_ = h.store.Save(ctx, domain.Artifacts{Access: "old", Refresh: "r1", Profile: testProfile})

	resp, err := h.client.Do(ctx, Request{Method: http.MethodGet, Path: "/api/Events"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshCalls)
	}
	if getCalls != 2 {
		t.Errorf("get calls = %d, want 2 (original + one retry)", getCalls)
	}
	if h.nav.Count() != 0 {
		t.Error("a 401 retry must not navigate")
	}
}

// Scenario D: refresh rejected, store cleared, navigation to the landing route.
func TestDo_RefreshFailureTerminates(t *testing.T) {
	testCases := []struct {
		name    string
		refresh http.HandlerFunc
	}{
		{"refresh 401", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 401, Envelope[any]{StatusCode: 401, Message: "expired"})
		}},
		{"envelope status 500", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, Envelope[TokenResult]{StatusCode: 500, Result: TokenResult{Token: "a", RefreshToken: "b"}})
		}},
		{"missing refresh token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, tokenEnvelope("a.b.c", ""))
		}},
		{"undecodable access token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, tokenEnvelope("not-a-jwt", "r2"))
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == RefreshPath {
					tc.refresh(w, r)
					return
				}
				w.WriteHeader(http.StatusUnauthorized)
			}), true)
			ctx := context.Background()
			_ = h.store.Save(ctx, domain.Artifacts{Access: "old", Refresh: "r1", Profile: testProfile})

			resp, err := h.client.Do(ctx, Request{Method: http.MethodGet, Path: "/api/Events"})
			var refreshErr *domain.RefreshError
			if !errors.As(err, &refreshErr) {
				t.Fatalf("err = %v, want *domain.RefreshError", err)
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("resp = %+v, want the original 401", resp)
			}
			if _, ok := h.store.Load(ctx); ok {
				t.Error("store should be cleared")
			}
			if got := h.nav.Routes(); len(got) != 1 || got[0] != "/" {
				t.Errorf("navigations = %v, want [/]", got)
			}
			if h.listener.terminated != 1 {
				t.Errorf("terminated = %d, want 1", h.listener.terminated)
			}
		})
	}
}

func TestDo_401WithoutRefreshToken(t *testing.T) {
	var refreshCalls int32
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RefreshPath {
			atomic.AddInt32(&refreshCalls, 1)
		}
		writeJSON(w, 401, Envelope[any]{StatusCode: 401, Message: "Unauthorized access"})
	}), true)

	resp, err := h.client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/Events"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if refreshCalls != 0 || h.nav.Count() != 0 {
		t.Errorf("refresh calls = %d, navigations = %d; want 0 and 0", refreshCalls, h.nav.Count())
	}

	err = h.client.DoJSON(context.Background(), Request{Method: http.MethodGet, Path: "/api/Events"}, nil)
	if StatusOf(err) != 401 || MessageOf(err) != "Unauthorized access" {
		t.Errorf("DoJSON err = %v", err)
	}
}

func TestDo_OtherStatusesPassThrough(t *testing.T) {
	var refreshCalls int32
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RefreshPath {
			atomic.AddInt32(&refreshCalls, 1)
		}
		w.WriteHeader(http.StatusForbidden)
	}), true)
	ctx := context.Background()
	_ = h.store.Save(ctx, domain.Artifacts{Access: "a", Refresh: "r", Profile: testProfile})

	resp, err := h.client.Do(ctx, Request{Method: http.MethodGet, Path: "/x"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden || refreshCalls != 0 {
		t.Errorf("status = %d, refresh calls = %d", resp.StatusCode, refreshCalls)
	}
}

func TestDo_ConcurrentRefreshIsSingleFlight(t *testing.T) {
	var refreshCalls int32
	var current atomic.Value
	current.Store("")
	release := make(chan struct{})
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RefreshPath {
			if atomic.AddInt32(&refreshCalls, 1) > 1 {
				writeJSON(w, 401, Envelope[any]{StatusCode: 401, Message: "refresh token reused"})
				return
			}
			<-release
			writeJSON(w, 200, tokenEnvelope(current.Load().(string), "r2"))
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+current.Load().(string) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, 200, Envelope[string]{StatusCode: 200, Result: "ok"})
	}), true)
	current.Store(h.token(t))
	ctx := context.Background()
	_ = h.store.Save(ctx, domain.Artifacts{Access: "old", Refresh: "r1", Profile: testProfile})

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Call[string](ctx, h.client, Request{Method: http.MethodGet, Path: "/api/Events"})
			errs <- err
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Call: %v", err)
		}
	}
	if refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshCalls)
	}
	if h.nav.Count() != 0 {
		t.Errorf("navigations = %v, want none", h.nav.Routes())
	}
}

func TestDoJSON_ErrorMessages(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"exception string", 400, `{"statusCode":400,"message":"m","responseException":"Event not found"}`, "Event not found"},
		{"exception object", 400, `{"statusCode":400,"message":"m","responseException":{"exceptionMessage":"Validation failed"}}`, "Validation failed"},
		{"exception object message", 400, `{"responseException":{"message":"boom"}}`, "boom"},
		{"envelope message", 409, `{"statusCode":409,"message":"Duplicate email"}`, "Duplicate email"},
		{"plain text", 502, "upstream unavailable", "upstream unavailable"},
		{"empty body", 404, "", "Not Found"},
		{"json without message", 500, `{"statusCode":500}`, "Internal Server Error"},
		{"isError on 200", 200, `{"statusCode":200,"isError":true,"message":"soft failure"}`, "soft failure"},
		{"envelope status on 200", 200, `{"statusCode":422,"message":"Unprocessable"}`, "Unprocessable"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}), true)
			err := h.client.DoJSON(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Message != tc.want {
				t.Errorf("Message = %q, want %q", apiErr.Message, tc.want)
			}
		})
	}
}

func TestClearCookies(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	}), true)
	if _, err := h.client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(h.client.Cookies("/")) != 1 {
		t.Fatalf("cookies = %v, want one", h.client.Cookies("/"))
	}
	h.client.ClearCookies()
	if got := h.client.Cookies("/"); len(got) != 0 {
		t.Errorf("cookies after clear = %v", got)
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if _, err := c.Do(context.Background(), Request{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Do on nil = %v", err)
	}
	c.ClearCookies()
}
