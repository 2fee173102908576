// Package cache holds short-lived copies of directory listings.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	gocache "github.com/patrickmn/go-cache"
)

// Local keeps values in process memory.
type Local struct {
	cache *gocache.Cache
}

func NewLocal(ttl time.Duration) *Local {
	return &Local{
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (l *Local) Get(ctx context.Context, key string) ([]string, bool) {
	cached, found := l.cache.Get(key)
	if !found {
		return nil, false
	}
	value, ok := cached.([]string)
	if !ok {
		return nil, false
	}
	return append([]string(nil), value...), true
}

func (l *Local) Set(ctx context.Context, key string, value []string) {
	l.cache.Set(key, append([]string(nil), value...), gocache.DefaultExpiration)
}

func (l *Local) Delete(ctx context.Context, key string) {
	l.cache.Delete(key)
}

// Memcache shares values between processes through memcached. Errors are
// treated as misses.
type Memcache struct {
	client *memcache.Client
	prefix string
	ttl    time.Duration
}

func NewMemcache(client *memcache.Client, ttl time.Duration) *Memcache {
	return &Memcache{
		client: client,
		prefix: "moodboard:",
		ttl:    ttl,
	}
}

func (m *Memcache) Get(ctx context.Context, key string) ([]string, bool) {
	item, err := m.client.Get(m.prefix + key)
	if err != nil {
		return nil, false
	}
	var value []string
	if err := json.Unmarshal(item.Value, &value); err != nil {
		return nil, false
	}
	return value, true
}

func (m *Memcache) Set(ctx context.Context, key string, value []string) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = m.client.Set(&memcache.Item{
		Key:        m.prefix + key,
		Value:      data,
		Expiration: int32(m.ttl / time.Second),
	})
}

func (m *Memcache) Delete(ctx context.Context, key string) {
	_ = m.client.Delete(m.prefix + key)
}
