package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-relations/pkg/record"
)

const (
	defaultRedisPrefix  = "relations:meta"
	defaultRedisRetries = 8
)

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithKeyPrefix overrides the hash key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithMaxRetries bounds optimistic retries in Mutate.
func WithMaxRetries(n int) RedisOption {
	return func(r *Redis) {
		if n > 0 {
			r.retries = n
		}
	}
}

// Redis keeps one hash per record, with one field per metadata key.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	retries int
}

var (
	_ MetaStore = (*Redis)(nil)
	_ Mutator   = (*Redis)(nil)
)

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: defaultRedisPrefix, retries: defaultRedisRetries}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) hashKey(id record.ID) string {
	return r.prefix + ":" + id.String()
}

func (r *Redis) Get(ctx context.Context, id record.ID, key string) ([]byte, bool, error) {
	value, err := r.client.HGet(ctx, r.hashKey(id), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: redis hget: %w", err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, id record.ID, key string, value []byte) error {
	if err := r.client.HSet(ctx, r.hashKey(id), key, value).Err(); err != nil {
		return fmt.Errorf("store: redis hset: %w", err)
	}
	return nil
}

// Mutate watches the record hash and retries when another client writes it
// between the read and the transaction.
func (r *Redis) Mutate(ctx context.Context, id record.ID, key string, fn MutateFunc) error {
	hashKey := r.hashKey(id)

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, hashKey, key).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, key, next)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < r.retries; attempt++ {
		err := r.client.Watch(ctx, txf, hashKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}
