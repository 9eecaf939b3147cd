package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps every entry of one partition in a shared sqlite file.
// The database is opened lazily on first use; if that fails the store stays
// unavailable and every call returns ErrUnavailable.
type SQLiteStore struct {
	path      string
	partition string

	once    sync.Once
	db      *sql.DB
	openErr error
}

func NewInMemorySQLiteStore(partition string) *SQLiteStore {
	return NewSQLiteStore(":memory:", partition)
}

func NewSQLiteStore(dbpath string, partition string) *SQLiteStore {
	if partition == "" {
		partition = DefaultPartition
	}

	return &SQLiteStore{
		path:      dbpath,
		partition: partition,
	}
}

// Open initialises the database. It is safe to call more than once and is
// called implicitly by every other method.
func (sls *SQLiteStore) Open() error {
	sls.once.Do(func() {
		db, err := openDB(sls.path)
		if err != nil {
			log.Printf("store: sqlite %s unavailable: %v", sls.path, err)
			sls.openErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}
		sls.db = db
	})

	return sls.openErr
}

func openDB(dbpath string) (*sql.DB, error) {
	if dbpath != ":memory:" {
		err := os.MkdirAll(filepath.Dir(dbpath), 0755)
		if err != nil {
			return nil, fmt.Errorf("openDB: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbpath)
	if err != nil {
		return nil, fmt.Errorf("openDB: %w", err)
	}
	// one connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	err = dbSetup(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: %w", err)
	}

	err = runMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: %w", err)
	}

	return db, nil
}

// dbSetup creates the base tables. See migrations below for additions.
func dbSetup(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("dbSetup: %w", err)
	}

	stm := `
		create table if not exists entries (partition text not null, key text not null, data text not null, writtenat integer not null, primary key (partition, key));
		create table if not exists migrations (id integer not null, runat datetime);
	`

	_, err = tx.Exec(stm)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("dbSetup: could not execute query: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("dbSetup: could not commit tx: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Index based so all new migrations must go at the end of the array
	migrations := []string{
		`create index if not exists idx_entries_writtenat on entries (partition, writtenat);`,
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("runMigrations: %w", err)
	}

	var count int
	err = tx.QueryRow(`select count(*) from migrations;`).Scan(&count)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("runMigrations: %w", err)
	}

	for i, m := range migrations {
		// if the migration has already been run, skip
		if i < count {
			continue
		}

		_, err = tx.Exec(m)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("runMigrations: migration %d: %w", i, err)
		}

		_, err = tx.Exec(`insert into migrations (id, runat) values (?, ?);`, i, time.Now())
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("runMigrations: migration %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (sls *SQLiteStore) Put(ctx context.Context, entry Entry) error {
	if err := sls.Open(); err != nil {
		return err
	}

	_, err := sls.db.ExecContext(ctx, `
		insert into entries (partition, key, data, writtenat) values (?, ?, ?, ?)
		on conflict (partition, key) do update set data = excluded.data, writtenat = excluded.writtenat;
	`, sls.partition, entry.Key, string(entry.Data), toEpochMs(entry.WrittenAt))
	if err != nil {
		return fmt.Errorf("SQLiteStore.Put: %w", err)
	}

	return nil
}

func (sls *SQLiteStore) Get(ctx context.Context, key string) (Entry, error) {
	if err := sls.Open(); err != nil {
		return Entry{}, err
	}

	var data string
	var writtenAt int64

	err := sls.db.QueryRowContext(ctx, `select data, writtenat from entries where partition = ? and key = ?;`, sls.partition, key).Scan(&data, &writtenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("SQLiteStore.Get: %w", err)
	}

	return Entry{
		Key:       key,
		Data:      []byte(data),
		WrittenAt: fromEpochMs(writtenAt),
	}, nil
}

func (sls *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := sls.Open(); err != nil {
		return err
	}

	_, err := sls.db.ExecContext(ctx, `delete from entries where partition = ? and key = ?;`, sls.partition, key)
	if err != nil {
		return fmt.Errorf("SQLiteStore.Delete: %w", err)
	}

	return nil
}

func (sls *SQLiteStore) Clear(ctx context.Context) error {
	if err := sls.Open(); err != nil {
		return err
	}

	_, err := sls.db.ExecContext(ctx, `delete from entries where partition = ?;`, sls.partition)
	if err != nil {
		return fmt.Errorf("SQLiteStore.Clear: %w", err)
	}

	return nil
}

func (sls *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Partition: sls.partition}

	if err := sls.Open(); err != nil {
		return stats, err
	}

	// cast so length counts bytes, not characters
	rows, err := sls.db.QueryContext(ctx, `select length(cast(data as blob)), writtenat from entries where partition = ?;`, sls.partition)
	if err != nil {
		return stats, fmt.Errorf("SQLiteStore.Stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var size, writtenAt int64
		if err := rows.Scan(&size, &writtenAt); err != nil {
			return stats, fmt.Errorf("SQLiteStore.Stats: %w", err)
		}
		stats.observe(size, fromEpochMs(writtenAt))
	}

	return stats, rows.Err()
}

func (sls *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	if err := sls.Open(); err != nil {
		return nil, err
	}

	rows, err := sls.db.QueryContext(ctx, `select key from entries where partition = ? order by key;`, sls.partition)
	if err != nil {
		return nil, fmt.Errorf("SQLiteStore.Keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("SQLiteStore.Keys: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

func (sls *SQLiteStore) Close() error {
	if sls.db == nil {
		return nil
	}

	return sls.db.Close()
}
