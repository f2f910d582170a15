package session

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/staff-admin/internal/domain"
)

// MemoryStore keeps sessions in process. Suitable for a single instance.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	nonces   map[string]time.Time
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]domain.Session),
		nonces:   make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) ClaimNonce(_ context.Context, nonce string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for n, exp := range s.nonces {
		if !now.Before(exp) {
			delete(s.nonces, n)
		}
	}
	if _, used := s.nonces[nonce]; used {
		return false, nil
	}
	s.nonces[nonce] = now.Add(ttl)
	return true, nil
}

func (s *MemoryStore) ReleaseNonce(_ context.Context, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nonces, nonce)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
