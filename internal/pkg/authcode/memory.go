package authcode

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemoryStore keeps codes in process memory. It suits a single instance.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]entry
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]entry), now: time.Now}
}

// Issue stores a fresh code for userID
func (s *MemoryStore) Issue(_ context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.codes {
		if !now.Before(e.expiresAt) {
			delete(s.codes, k)
		}
	}
	s.codes[code] = entry{userID: userID, expiresAt: now.Add(ttl)}
	return code, nil
}

// Consume removes the code and returns its account
func (s *MemoryStore) Consume(_ context.Context, code string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[code]
	if !ok {
		return uuid.Nil, ErrInvalidCode
	}
	delete(s.codes, code)

	if !s.now().Before(e.expiresAt) {
		return uuid.Nil, ErrInvalidCode
	}
	return e.userID, nil
}
