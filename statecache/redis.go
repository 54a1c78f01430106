package statecache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis shares the closed set across cooperating search processes (a
// portfolio of workers exploring the same task), the way
// registry.ResultStreamManager shares tool-invocation bookkeeping across
// gateway nodes in the pack.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis returns a Cache backed by a Redis server at addr, namespacing
// keys under prefix so multiple concurrent runs can share one server.
func NewRedis(addr, prefix string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
	}
}

func (r *Redis) key(hash uint64) string {
	return r.prefix + ":" + strconv.FormatUint(hash, 16)
}

// CheckAndRecord implements Cache. The get-then-set is not atomic across
// concurrent workers sharing one Redis instance; a rare race can let two
// workers both treat the same state as new at the same g, which only costs
// a redundant expansion, never an unsound one, so this is left unguarded
// by a Lua script for simplicity.
func (r *Redis) CheckAndRecord(hash uint64, g int) bool {
	ctx := context.Background()
	key := r.key(hash)
	if val, err := r.client.Get(ctx, key).Int(); err == nil && val <= g {
		return true
	}
	r.client.Set(ctx, key, g, 0)
	return false
}
