package wikigraph

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps redirect maps as redis hashes, so several machines
// working on the same dump can share them.
type RedisStore struct {
	Client *redis.Client
	// Prefix is put in front of every key; defaults to
	// "wikigraph:redirects:".
	Prefix string
}

const redisHashChunk = 10000

func (rs RedisStore) key(key string) string {
	prefix := rs.Prefix
	if prefix == "" {
		prefix = "wikigraph:redirects:"
	}
	return prefix + key
}

// Load implements RedirectStore.
//
// A map counts as present once its ":built" marker exists, which lets
// an empty map be told apart from a missing one.
func (rs RedisStore) Load(ctx context.Context, key string) (RedirectMap, bool, error) {
	k := rs.key(key)
	n, err := rs.Client.Exists(ctx, k+":built").Result()
	if err != nil {
		return nil, false, errors.Wrap(err, "checking redirect cache")
	}
	if n == 0 {
		return nil, false, nil
	}
	h, err := rs.Client.HGetAll(ctx, k).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, "reading redirect cache")
	}
	return RedirectMap(h), true, nil
}

// Save implements RedirectStore.
func (rs RedisStore) Save(ctx context.Context, key string, m RedirectMap) error {
	k := rs.key(key)
	if err := rs.Client.Del(ctx, k, k+":built").Err(); err != nil {
		return errors.Wrap(err, "clearing redirect cache")
	}

	chunk := make(map[string]interface{}, redisHashChunk)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := rs.Client.HSet(ctx, k, chunk).Err(); err != nil {
			return errors.Wrap(err, "writing redirect cache")
		}
		chunk = make(map[string]interface{}, redisHashChunk)
		return nil
	}
	for from, to := range m {
		chunk[from] = to
		if len(chunk) >= redisHashChunk {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	return errors.Wrap(rs.Client.Set(ctx, k+":built", len(m), 0).Err(),
		"marking redirect cache")
}
