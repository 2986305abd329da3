package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces session keys.
const DefaultRedisKeyPrefix = "mcp:session:"

// RedisStore keeps JSON-encoded session state in redis with a native key expiry.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix replaces the default key prefix. An empty prefix is ignored.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a store on top of an existing client.
func NewRedisStore(client redis.Cmdable, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}

	s := &RedisStore{
		client:    client,
		keyPrefix: DefaultRedisKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, id string) (*mcp.ServerSessionState, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	state := &mcp.ServerSessionState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeState, err)
	}
	return state, nil
}

// Save implements Store. A non-positive ttl stores the key without expiry.
func (s *RedisStore) Save(ctx context.Context, id string, state *mcp.ServerSessionState, ttl time.Duration) error {
	if id == "" {
		return ErrEmptySessionID
	}
	if state == nil {
		return ErrNilState
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeState, err)
	}

	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session %s: %w", id, err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}
