package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/frahmantamala/warehouse-management/internal"
	"github.com/redis/go-redis/v9"
)

// TokenRevoker remembers revoked token IDs (jti) until the token would have expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisRevoker struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisRevoker(cfg internal.RedisConfig) (*RedisRevoker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis for token revocation: %w", err)
	}

	return NewRedisRevokerWithClient(client), nil
}

func NewRedisRevokerWithClient(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client, keyPrefix: "warehouse:revoked:"}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

func (r *RedisRevoker) Close() error {
	return r.client.Close()
}

// MemoryRevoker is the single-instance fallback used when redis is disabled.
type MemoryRevoker struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{entries: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[jti] = m.now().Add(ttl)
	m.sweep()
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if m.now().After(exp) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

func (m *MemoryRevoker) sweep() {
	now := m.now()
	for k, exp := range m.entries {
		if now.After(exp) {
			delete(m.entries, k)
		}
	}
}

// PingContext lets the health endpoint probe redis.
func (r *RedisRevoker) PingContext(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
