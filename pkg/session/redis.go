package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = time.Hour

// RedisStore persists each session as a single JSON blob under
// agent_session:{userId}:{sessionId}. Redis key expiry implements the
// sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = &RedisStore{}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("agent_session:%s:%s", userID, sessionID)
}

func (s *RedisStore) Get(ctx context.Context, userID, sessionID string) ([]Turn, error) {
	data, err := s.client.Get(ctx, sessionKey(userID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return turns, nil
}

func (s *RedisStore) Append(ctx context.Context, userID, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	history, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	history = append(history, turns...)

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(userID, sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(userID, sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
