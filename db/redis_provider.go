package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/mezonai/vault/logx"
	"github.com/redis/go-redis/v9"
)

// RedisProvider implements DatabaseProvider for Redis
type RedisProvider struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisProvider creates a new Redis provider on the given logical database
func NewRedisProvider(address string, database int) (*RedisProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr: address,
		DB:   database,
	})

	ctx := context.Background()

	// Test connection
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProvider{
		client: client,
		ctx:    ctx,
	}, nil
}

// Get retrieves a value by key
func (p *RedisProvider) Get(key []byte) ([]byte, error) {
	value, err := p.client.Get(p.ctx, string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Return nil for not found, consistent with interface
		}
		return nil, err
	}
	return value, nil
}

// Put stores a key-value pair
func (p *RedisProvider) Put(key, value []byte) error {
	logx.Debug("REDIS", "Put key:", string(key), " value length:", len(value))
	return p.client.Set(p.ctx, string(key), value, 0).Err()
}

// Delete removes a key-value pair
func (p *RedisProvider) Delete(key []byte) error {
	return p.client.Del(p.ctx, string(key)).Err()
}

// Has checks if a key exists
func (p *RedisProvider) Has(key []byte) (bool, error) {
	count, err := p.client.Exists(p.ctx, string(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Close closes the database connection
func (p *RedisProvider) Close() error {
	return p.client.Close()
}

// Batch returns a MULTI/EXEC pipeline so a batch lands atomically
func (p *RedisProvider) Batch() DatabaseBatch {
	return &RedisBatch{
		client: p.client,
		ctx:    p.ctx,
		pipe:   p.client.TxPipeline(),
	}
}

// IteratePrefix implements IterableProvider for Redis using SCAN
func (p *RedisProvider) IteratePrefix(prefix []byte, fn func(key, value []byte) bool) error {
	pattern := string(prefix) + "*"
	var cursor uint64
	for {
		keys, newCursor, err := p.client.Scan(p.ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return err
		}
		cursor = newCursor
		for _, k := range keys {
			val, err := p.client.Get(p.ctx, k).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				return err
			}
			if !fn([]byte(k), val) {
				return nil
			}
		}
		if cursor == 0 {
			break
		}
	}
	return nil
}

// RedisBatch implements DatabaseBatch for Redis
type RedisBatch struct {
	client *redis.Client
	ctx    context.Context
	pipe   redis.Pipeliner
}

// Put adds a key-value pair to the batch
func (b *RedisBatch) Put(key, value []byte) {
	b.pipe.Set(b.ctx, string(key), value, 0)
}

// Delete adds a deletion to the batch
func (b *RedisBatch) Delete(key []byte) {
	b.pipe.Del(b.ctx, string(key))
}

// Write commits all operations in the batch
func (b *RedisBatch) Write() error {
	_, err := b.pipe.Exec(b.ctx)
	return err
}

// Reset clears the batch
func (b *RedisBatch) Reset() {
	b.pipe.Discard()
	b.pipe = b.client.TxPipeline()
}

// Close releases batch resources
func (b *RedisBatch) Close() {
	b.pipe.Discard()
}
