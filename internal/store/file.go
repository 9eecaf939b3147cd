package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore writes one json document per key into <dir>/<partition>.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

func NewFileStore(dir string, partition string) *FileStore {
	if partition == "" {
		partition = DefaultPartition
	}

	return &FileStore{
		dir: filepath.Join(dir, partition),
	}
}

func (fs *FileStore) entryPath(key string) string {
	return filepath.Join(fs.dir, fmt.Sprintf("%x.json", sha256.Sum256([]byte(key))))
}

func (fs *FileStore) Put(_ context.Context, entry Entry) error {
	data, err := json.Marshal(entryFile{
		Key:       entry.Key,
		Data:      entry.Data,
		WrittenAt: toEpochMs(entry.WrittenAt),
	})
	if err != nil {
		return fmt.Errorf("FileStore.Put: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	err = os.MkdirAll(fs.dir, 0755)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	tmp, err := os.CreateTemp(fs.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("FileStore.Put: %w", err)
	}

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("FileStore.Put: %w", err)
	}

	err = os.Rename(tmp.Name(), fs.entryPath(entry.Key))
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("FileStore.Put: %w", err)
	}

	return nil
}

func (fs *FileStore) Get(_ context.Context, key string) (Entry, error) {
	fs.mu.RLock()
	raw, err := os.ReadFile(fs.entryPath(key))
	fs.mu.RUnlock()

	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("FileStore.Get: %w", err)
	}

	var ef entryFile
	err = json.Unmarshal(raw, &ef)
	if err != nil {
		return Entry{}, fmt.Errorf("FileStore.Get: %s: %w", key, err)
	}

	// sha256 collisions aside, a mismatch means the file was tampered with
	if ef.Key != key {
		return Entry{}, ErrNotFound
	}

	return Entry{Key: ef.Key, Data: ef.Data, WrittenAt: fromEpochMs(ef.WrittenAt)}, nil
}

func (fs *FileStore) Delete(_ context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := os.Remove(fs.entryPath(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("FileStore.Delete: %w", err)
	}

	return nil
}

func (fs *FileStore) Clear(_ context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := os.ReadDir(fs.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("FileStore.Clear: %w", err)
	}

	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}

		err := os.Remove(filepath.Join(fs.dir, e.Name()))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("FileStore.Clear: %w", err)
		}
	}

	return nil
}

func (fs *FileStore) Stats(_ context.Context) (Stats, error) {
	stats := Stats{Partition: filepath.Base(fs.dir)}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.dir)
	if errors.Is(err, os.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("FileStore.Stats: %w", err)
	}

	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(fs.dir, e.Name()))
		if err != nil {
			continue
		}

		var ef entryFile
		if err := json.Unmarshal(raw, &ef); err != nil {
			continue
		}

		stats.observe(int64(len(ef.Data)), fromEpochMs(ef.WrittenAt))
	}

	return stats, nil
}

// Keys reads every entry file, since file names are hashes of the keys.
func (fs *FileStore) Keys(_ context.Context) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FileStore.Keys: %w", err)
	}

	var keys []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(fs.dir, e.Name()))
		if err != nil {
			continue
		}

		var ef entryFile
		if err := json.Unmarshal(raw, &ef); err != nil {
			continue
		}

		keys = append(keys, ef.Key)
	}
	sort.Strings(keys)

	return keys, nil
}

func (fs *FileStore) Close() error {
	return nil
}
