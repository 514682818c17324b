package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Used for tests and for
// running without Redis; history does not survive a restart.
type MemoryStore struct {
	cache *cache.Cache
}

var _ Store = &MemoryStore{}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (s *MemoryStore) Get(_ context.Context, userID, sessionID string) ([]Turn, error) {
	if x, found := s.cache.Get(sessionKey(userID, sessionID)); found {
		history := x.([]Turn)
		out := make([]Turn, len(history))
		copy(out, history)
		return out, nil
	}
	return []Turn{}, nil
}

func (s *MemoryStore) Append(ctx context.Context, userID, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	history, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	history = append(history, turns...)

	// Set refreshes the entry expiry, matching the sliding TTL contract.
	s.cache.Set(sessionKey(userID, sessionID), history, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, sessionID string) error {
	s.cache.Delete(sessionKey(userID, sessionID))
	return nil
}
