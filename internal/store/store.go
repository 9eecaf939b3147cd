package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("store: entry not found")
	ErrUnavailable = errors.New("store: partition unavailable")
)

// DefaultPartition is the partition name used when none is configured.
const DefaultPartition = "leitor-cache"

// Entry is one cached payload. There is at most one Entry per key in a
// partition; a second Put for the same key replaces the first.
type Entry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	WrittenAt time.Time       `json:"-"`
}

// entryFile is the on-disk form used by FileStore, keeping the timestamp in
// epoch milliseconds like the sqlite column.
type entryFile struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	WrittenAt int64           `json:"writtenAtEpochMs"`
}

type Stats struct {
	Partition string
	Entries   int
	Bytes     int64
	Oldest    time.Time
	Newest    time.Time
}

type Store interface {
	Put(ctx context.Context, entry Entry) error
	Get(ctx context.Context, key string) (Entry, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	// Keys lists every key in the partition, sorted.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

func toEpochMs(t time.Time) int64 {
	return t.UnixMilli()
}

func fromEpochMs(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func (s *Stats) observe(size int64, writtenAt time.Time) {
	s.Entries++
	s.Bytes += size

	if s.Oldest.IsZero() || writtenAt.Before(s.Oldest) {
		s.Oldest = writtenAt
	}
	if writtenAt.After(s.Newest) {
		s.Newest = writtenAt
	}
}
