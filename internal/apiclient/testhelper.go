package apiclient

import (
	"context"

	"event-admin-console/internal/navigation"
	"event-admin-console/internal/security"
	"event-admin-console/internal/session/domain"
	"event-admin-console/internal/tokenstore"
)

// Tokens stored by NewTestClient.
const (
	TestAccessToken  = "test-access-token"
	TestRefreshToken = "test-refresh-token"
)

// NewTestClient returns a Client for baseURL backed by an in-memory store that already holds
// TestAccessToken and TestRefreshToken. For use in tests of packages built on the client.
func NewTestClient(baseURL string) (*Client, error) {
	store := tokenstore.New(tokenstore.NewMemoryBackend(), nil)
	err := store.Save(context.Background(), domain.Artifacts{
		Access:  TestAccessToken,
		Refresh: TestRefreshToken,
		Profile: domain.UserProfile{ID: "test-user"},
	})
	if err != nil {
		return nil, err
	}
	return New(Options{
		BaseURL:   baseURL,
		Store:     store,
		Codec:     security.NewJWTCodec(),
		Navigator: &navigation.Recorder{},
	})
}
