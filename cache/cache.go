// Package cache memoizes dashboard aggregates per snapshot.
package cache

import (
	"context"
	"strconv"
	"time"

	"civicsync-admin/config"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Aggregates is a two level cache: an in-process LRU in front of an optional
// shared Redis. Entries are keyed by the snapshot fingerprint, so a new
// snapshot never hits old entries.
type Aggregates struct {
	local  *lru.Cache[string, []byte]
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// New builds a cache holding up to size entries in process. rdb may be nil.
func New(size int, rdb *redis.Client, ttl time.Duration) (*Aggregates, error) {
	local, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Aggregates{local: local, redis: rdb, prefix: "civicsync:agg:", ttl: ttl}, nil
}

// Key derives a cache key from a snapshot fingerprint and the parameters the
// cached value depends on.
func Key(fingerprint uint64, parts ...string) string {
	d := xxhash.New()
	d.WriteString(strconv.FormatUint(fingerprint, 16))
	for _, p := range parts {
		d.Write([]byte{0})
		d.WriteString(p)
	}
	return strconv.FormatUint(fingerprint, 16) + ":" + strconv.FormatUint(d.Sum64(), 16)
}

// Get decodes the cached value for key into dst.
func (a *Aggregates) Get(ctx context.Context, key string, dst interface{}) bool {
	raw, ok := a.local.Get(key)
	if !ok && a.redis != nil {
		b, err := a.redis.Get(ctx, a.prefix+key).Bytes()
		if err != nil {
			if err != redis.Nil {
				config.Warning("cache: redis get %s: %v", key, err)
			}
			return false
		}
		raw, ok = b, true
		a.local.Add(key, b)
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		config.Warning("cache: decode %s: %v", key, err)
		return false
	}
	return true
}

func (a *Aggregates) Set(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		config.Warning("cache: encode %s: %v", key, err)
		return
	}
	a.local.Add(key, raw)
	if a.redis != nil {
		if err := a.redis.Set(ctx, a.prefix+key, raw, a.ttl).Err(); err != nil {
			config.Warning("cache: redis set %s: %v", key, err)
		}
	}
}

// Purge drops the in-process entries. Redis entries expire on their own and
// are unreachable once the fingerprint changes.
func (a *Aggregates) Purge() {
	a.local.Purge()
}

func (a *Aggregates) Len() int {
	return a.local.Len()
}
