// Package redis provides a Redis-backed persistence adapter storing the whole
// document under the fixed storage key.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tabflow/tabflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using Redis.
type Persistence struct {
	client *goredis.Client
}

// NewPersistence creates a Redis adapter from a redis:// URL.
func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{client: client}, nil
}

// Load reads the stored document. A missing key or an unrecognized shape
// yields the empty dataset rather than an error.
func (rp *Persistence) Load(ctx context.Context) (*persistence.Dataset, error) {
	body, err := rp.client.Get(ctx, persistence.StorageKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return persistence.EmptyDataset(), nil
		}

		return nil, persistence.NewStoreError("Load", persistence.StorageKey, err)
	}

	return persistence.DecodeDocument(body), nil
}

// SaveAll writes the entire document under the storage key, replacing any
// prior document.
func (rp *Persistence) SaveAll(ctx context.Context, dataset *persistence.Dataset) error {
	data, err := persistence.EncodeDocument(dataset)
	if err != nil {
		return persistence.NewStoreError("SaveAll", persistence.StorageKey,
			fmt.Errorf("failed to marshal document: %w", err))
	}

	if err := rp.client.Set(ctx, persistence.StorageKey, data, 0).Err(); err != nil {
		return persistence.NewStoreError("SaveAll", persistence.StorageKey, err)
	}

	return nil
}

// HealthCheck verifies the Redis connection is healthy.
func (rp *Persistence) HealthCheck(ctx context.Context) error {
	if err := rp.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Close closes the Redis client.
func (rp *Persistence) Close(_ context.Context) error {
	return rp.client.Close()
}
