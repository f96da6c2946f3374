package auth

import (
	"context"
	"sync"
	"time"
)

// NonceStore records request nonces so a signed request is accepted once.
// Claim returns ErrReplayedRequest when signer already used nonce within ttl.
type NonceStore interface {
	Claim(ctx context.Context, signer Principal, nonce string, ttl time.Duration) error
}

// MemoryNonceStore keeps claimed nonces in process memory until they expire.
// Expired entries are swept on Claim once the map has grown past the last
// sweep.
type MemoryNonceStore struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	now       func() time.Time
	sweepSize int
}

// NewMemoryNonceStore returns an empty MemoryNonceStore. A nil now uses time.Now.
func NewMemoryNonceStore(now func() time.Time) *MemoryNonceStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryNonceStore{
		seen:      make(map[string]time.Time),
		now:       now,
		sweepSize: 1024,
	}
}

func (s *MemoryNonceStore) Claim(_ context.Context, signer Principal, nonce string, ttl time.Duration) error {
	key := signer.String() + ":" + nonce
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.seen[key]; ok && now.Before(exp) {
		return ErrReplayedRequest
	}
	if len(s.seen) >= s.sweepSize {
		for k, exp := range s.seen {
			if !now.Before(exp) {
				delete(s.seen, k)
			}
		}
		s.sweepSize = max(1024, 2*len(s.seen))
	}
	s.seen[key] = now.Add(ttl)
	return nil
}

// Len reports how many nonces are held, expired ones included until swept.
func (s *MemoryNonceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
