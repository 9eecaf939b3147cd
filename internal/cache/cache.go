package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/revistaviva/leitor/internal/store"
)

// Cache is a best-effort json cache in front of a store.Store. No method
// returns an error: failures are logged and read as a miss or a failed write.
type Cache struct {
	store store.Store
	// ttl of 0 means entries never go stale
	ttl time.Duration
	now func() time.Time
}

func New(s store.Store, ttl time.Duration) *Cache {
	return &Cache{
		store: s,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Set encodes value and stores it under key, stamped with the current time.
func (c *Cache) Set(ctx context.Context, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: set %s: %v", key, err)
		return false
	}

	err = c.store.Put(ctx, store.Entry{Key: key, Data: data, WrittenAt: c.now()})
	if err != nil {
		log.Printf("cache: set %s: %v", key, err)
		return false
	}

	return true
}

// Get decodes the entry for key into dest and reports when it was written.
// Expired entries are left in place but read as a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (time.Time, bool) {
	e, err := c.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, false
	}
	if err != nil {
		log.Printf("cache: get %s: %v", key, err)
		return time.Time{}, false
	}

	if c.ttl > 0 && c.now().Sub(e.WrittenAt) > c.ttl {
		return time.Time{}, false
	}

	err = json.Unmarshal(e.Data, dest)
	if err != nil {
		log.Printf("cache: get %s: %v", key, err)
		return time.Time{}, false
	}

	return e.WrittenAt, true
}

func (c *Cache) Delete(ctx context.Context, key string) bool {
	err := c.store.Delete(ctx, key)
	if err != nil {
		log.Printf("cache: delete %s: %v", key, err)
		return false
	}

	return true
}

func (c *Cache) Clear(ctx context.Context) bool {
	err := c.store.Clear(ctx)
	if err != nil {
		log.Printf("cache: clear: %v", err)
		return false
	}

	return true
}

func (c *Cache) Stats(ctx context.Context) (store.Stats, bool) {
	stats, err := c.store.Stats(ctx)
	if err != nil {
		log.Printf("cache: stats: %v", err)
		return stats, false
	}

	return stats, true
}

// Keys lists cached keys starting with any of prefixes, or every key when
// no prefix is given.
func (c *Cache) Keys(ctx context.Context, prefixes ...string) []string {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		log.Printf("cache: keys: %v", err)
		return nil
	}

	if len(prefixes) == 0 {
		return keys
	}

	var matched []string
	for _, k := range keys {
		for _, p := range prefixes {
			if strings.HasPrefix(k, p) {
				matched = append(matched, k)
				break
			}
		}
	}

	return matched
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}
