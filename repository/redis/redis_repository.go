package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "teluhub:token:"

// TokenRepository persists the bearer token between runs, one key per profile.
type TokenRepository interface {
	GetToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string, ttl time.Duration) error
	DeleteToken(ctx context.Context) error
}

type redis struct {
	client  *goredis.Client
	profile string
}

// NewRepository returns a Redis backed TokenRepository. A nil client turns
// every call into a no-op.
func NewRepository(client *goredis.Client, profile string) TokenRepository {
	return &redis{client: client, profile: profile}
}

func (r *redis) key() string {
	return tokenKeyPrefix + r.profile
}

// GetToken returns an empty token when nothing is stored.
func (r *redis) GetToken(ctx context.Context) (string, error) {
	if r.client == nil {
		return "", nil
	}
	val, err := r.client.Get(ctx, r.key()).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SaveToken stores the token; ttl <= 0 stores it without expiration.
func (r *redis) SaveToken(ctx context.Context, token string, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.key(), token, ttl).Err()
}

func (r *redis) DeleteToken(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(ctx, r.key()).Err()
}

type memory struct {
	mu    sync.Mutex
	token string
}

// NewMemoryRepository keeps the token in process memory, seeded with token.
// Used when Redis is not reachable.
func NewMemoryRepository(token string) TokenRepository {
	return &memory{token: token}
}

func (m *memory) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memory) SaveToken(ctx context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memory) DeleteToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
