package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisPersister stores session blobs in Redis under a fixed key per
// browser session, with a sliding TTL.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPersister creates a Redis-backed persister.
func NewRedisPersister(client *redis.Client, ttl time.Duration) *RedisPersister {
	return &RedisPersister{client: client, ttl: ttl}
}

func redisKey(sid string) string {
	return fmt.Sprintf("%s%s", redisKeyPrefix, sid)
}

// Save writes the blob and refreshes the TTL.
func (p *RedisPersister) Save(ctx context.Context, sid string, blob []byte) error {
	if err := p.client.Set(ctx, redisKey(sid), blob, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Load reads the blob, refreshing the TTL on hit.
func (p *RedisPersister) Load(ctx context.Context, sid string) ([]byte, error) {
	blob, err := p.client.GetEx(ctx, redisKey(sid), p.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return blob, nil
}

// Delete removes the blob. Deleting a missing key is not an error.
func (p *RedisPersister) Delete(ctx context.Context, sid string) error {
	if err := p.client.Del(ctx, redisKey(sid)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
