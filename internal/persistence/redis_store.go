package persistence

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/sigflow/pkg/api"
)

// RedisStore is a StateStore backed by Redis. It uses a simple key
// structure:
//
//	<prefix>state:<storeID>:<key> => gob-encoded state map
//
// Update uses optimistic locking (WATCH) so concurrent read-modify-writes
// on the same key compose atomically.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ StateStore = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. prefix is optional but recommended
// (e.g. "sigflow:").
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "sigflow:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) stateKey(storeID, key string) string {
	return s.prefix + "state:" + storeID + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, storeID, key string) (api.State, error) {
	data, err := s.client.Get(ctx, s.stateKey(storeID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return DecodeState(data)
}

func (s *RedisStore) Put(ctx context.Context, storeID, key string, state api.State) error {
	data, err := EncodeState(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(storeID, key), data, 0).Err()
}

func (s *RedisStore) Update(ctx context.Context, storeID, key string, def api.State, f func(api.State) api.State) error {
	rkey := s.stateKey(storeID, key)

	// Optimistic transaction: retry while another writer touches the key
	// between our read and our write. Retries back off with jitter so
	// contending writers do not lockstep; ctx bounds the total wait.
	for attempt := 0; ; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current := def
			data, err := tx.Get(ctx, rkey).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
				// keep def
			case err != nil:
				return err
			default:
				current, err = DecodeState(data)
				if err != nil {
					return err
				}
			}

			next, err := EncodeState(f(current))
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, rkey, next, 0)
				return nil
			})
			return err
		}, rkey)

		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}

		ceiling := 1 << min(attempt, 6)
		delay := time.Duration(rand.Intn(ceiling)+1) * time.Millisecond
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis state update: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
}

func (s *RedisStore) Delete(ctx context.Context, storeID, key string) error {
	return s.client.Del(ctx, s.stateKey(storeID, key)).Err()
}
