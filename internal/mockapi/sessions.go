package mockapi

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"event-admin-console/internal/security"
)

func utcNow() time.Time { return time.Now().UTC() }

// refreshState classifies a presented refresh token.
type refreshState int

const (
	refreshUnknown refreshState = iota
	refreshCurrent
	refreshRetired
)

type refreshSession struct {
	id          string
	userID      string
	refreshHash string
	expiresAt   time.Time
	revoked     bool
}

// SessionStore keeps refresh sessions in memory, indexed by the SHA-256 of the current
// refresh token. Rotated-out hashes are remembered so a replayed token can be detected.
type SessionStore struct {
	mu      sync.RWMutex
	byID    map[string]*refreshSession
	current map[string]string
	retired map[string]string
	nowF    func() time.Time
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:    make(map[string]*refreshSession),
		current: make(map[string]string),
		retired: make(map[string]string),
		nowF:    utcNow,
	}
}

// Create opens a session for userID holding refreshToken until expiresAt and returns its id.
func (s *SessionStore) Create(userID, refreshToken string, expiresAt time.Time) string {
	hash := security.HashRefreshToken(refreshToken)
	sess := &refreshSession{id: uuid.NewString(), userID: userID, refreshHash: hash, expiresAt: expiresAt}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[sess.id] = sess
	s.current[hash] = sess.id
	return sess.id
}

// find returns a copy of the session refreshToken belongs to and whether the token is its
// current one or an already rotated one.
func (s *SessionStore) find(refreshToken string) (refreshSession, refreshState) {
	hash := security.HashRefreshToken(refreshToken)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.current[hash]; ok {
		if sess, ok := s.byID[id]; ok {
			return *sess, refreshCurrent
		}
	}
	if id, ok := s.retired[hash]; ok {
		if sess, ok := s.byID[id]; ok {
			return *sess, refreshRetired
		}
	}
	return refreshSession{}, refreshUnknown
}

// expired reports whether sess can no longer be refreshed.
func (s *SessionStore) expired(sess refreshSession) bool {
	return sess.revoked || !sess.expiresAt.After(s.nowF())
}

// Rotate replaces the session's refresh token. It fails when the session no longer holds
// oldHash, which means a concurrent rotation won.
func (s *SessionStore) Rotate(id, oldHash, newToken string, expiresAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok || sess.revoked || sess.refreshHash != oldHash {
		return false
	}
	delete(s.current, oldHash)
	s.retired[oldHash] = id
	sess.refreshHash = security.HashRefreshToken(newToken)
	sess.expiresAt = expiresAt
	s.current[sess.refreshHash] = id
	return true
}

// Revoke ends one session.
func (s *SessionStore) Revoke(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byID[id]; ok {
		sess.revoked = true
		delete(s.current, sess.refreshHash)
	}
}

// RevokeUser ends every session of userID and returns how many were open.
func (s *SessionStore) RevokeUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.byID {
		if sess.userID != userID || sess.revoked {
			continue
		}
		sess.revoked = true
		delete(s.current, sess.refreshHash)
		n++
	}
	return n
}

// Active returns the number of live sessions of userID.
func (s *SessionStore) Active(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	now := s.nowF()
	for _, sess := range s.byID {
		if sess.userID == userID && !sess.revoked && sess.expiresAt.After(now) {
			n++
		}
	}
	return n
}
