// Package readthrough serves collections network first, keeping the last
// good answer per key so a failed fetch can still return something.
package readthrough

import (
	"context"
	"log"
	"time"

	"github.com/revistaviva/leitor/internal/cache"
)

// AllFilter stands in for an absent filter in cache keys.
const AllFilter = "all"

type Source int

const (
	// SourceNone means the network failed and nothing was cached.
	SourceNone Source = iota
	SourceNetwork
	SourceCache
)

func (s Source) String() string {
	switch s {
	case SourceNetwork:
		return "network"
	case SourceCache:
		return "cache"
	default:
		return "none"
	}
}

type Result[T any] struct {
	Items  []T
	Source Source
	// WrittenAt is when the cached rows were stored. Zero unless Source is
	// SourceCache.
	WrittenAt time.Time
}

// Stale reports whether the items came from an earlier fetch.
func (r Result[T]) Stale() bool {
	return r.Source != SourceNetwork
}

// Key builds the cache key for a resource and an optional filter, e.g.
// news_Tecnologia or editorials_all.
func Key(resource string, filter string) string {
	if filter == "" {
		filter = AllFilter
	}

	return resource + "_" + filter
}

// Fetch calls the network and, on success, caches the raw rows under key
// before returning them mapped. When the call fails the last cached rows are
// mapped instead; with nothing cached the result is empty. Fetch never fails.
//
// Rows the mapper rejects are skipped. Order is kept as received.
func Fetch[R, T any](ctx context.Context, c *cache.Cache, key string, call func(context.Context) ([]R, error), mapper func(R) (T, error)) Result[T] {
	rows, err := call(ctx)
	if err == nil {
		if rows == nil {
			rows = []R{}
		}

		// the write outlives the caller so an abandoned fetch still warms the cache
		c.Set(context.WithoutCancel(ctx), key, rows)

		return Result[T]{
			Items:  mapRows(key, rows, mapper),
			Source: SourceNetwork,
		}
	}

	log.Printf("readthrough: %s: network failed, trying cache: %v", key, err)

	var cached []R
	writtenAt, ok := c.Get(context.WithoutCancel(ctx), key, &cached)
	if !ok {
		return Result[T]{Items: []T{}, Source: SourceNone}
	}

	return Result[T]{
		Items:     mapRows(key, cached, mapper),
		Source:    SourceCache,
		WrittenAt: writtenAt,
	}
}

func mapRows[R, T any](key string, rows []R, mapper func(R) (T, error)) []T {
	items := make([]T, 0, len(rows))

	for i, r := range rows {
		item, err := mapper(r)
		if err != nil {
			log.Printf("readthrough: %s: skipping row %d: %v", key, i, err)
			continue
		}

		items = append(items, item)
	}

	return items
}
