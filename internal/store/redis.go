package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/router-for-me/MailRelayGateway/internal/models"
)

// RedisStore keeps the collection under a single Redis key. The version
// marker is a content hash of the stored value; Save runs inside WATCH so
// any concurrent write of the key aborts the transaction.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore constructs a RedisStore for the given key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Load reads the document value. A missing key yields an empty collection
// with an empty version marker.
func (s *RedisStore) Load(ctx context.Context) (models.Collection, string, error) {
	if s == nil || s.client == nil {
		return nil, "", fmt.Errorf("redis store: not initialized")
	}

	data, errGet := s.client.Get(ctx, s.key).Bytes()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return models.Collection{}, "", nil
		}
		return nil, "", fmt.Errorf("%w: redis get: %v", ErrUnavailable, errGet)
	}

	users, errDecode := decodeCollection(data)
	if errDecode != nil {
		return nil, "", errDecode
	}
	return users, contentHash(data), nil
}

// Save writes the document back inside a WATCH transaction, re-checking the
// version hash under the watch before committing.
func (s *RedisStore) Save(ctx context.Context, users models.Collection, version, _ string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("redis store: not initialized")
	}

	data, errEncode := encodeCollection(users)
	if errEncode != nil {
		return errEncode
	}

	errWatch := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, errGet := tx.Get(ctx, s.key).Bytes()
		switch {
		case errors.Is(errGet, redis.Nil):
			if version != "" {
				return fmt.Errorf("%w: document deleted since load", ErrConflict)
			}
		case errGet != nil:
			return fmt.Errorf("%w: redis get: %v", ErrUnavailable, errGet)
		default:
			if contentHash(current) != version {
				return fmt.Errorf("%w: document changed since load", ErrConflict)
			}
		}

		_, errExec := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return errExec
	}, s.key)

	if errWatch != nil {
		if errors.Is(errWatch, redis.TxFailedErr) {
			return fmt.Errorf("%w: watched key modified", ErrConflict)
		}
		if errors.Is(errWatch, ErrConflict) || errors.Is(errWatch, ErrUnavailable) {
			return errWatch
		}
		return fmt.Errorf("%w: redis save: %v", ErrUnavailable, errWatch)
	}
	return nil
}
