package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/vmihailenco/msgpack/v5"
)

const keyPrefix = "http"

// envelope is the msgpack encoded value stored in badger
type envelope struct {
	URL       string    `msgpack:"url"`
	Body      []byte    `msgpack:"body"`
	FetchedAt time.Time `msgpack:"fetchedAt"`
}

type Filesystem struct {
	db  *badger.DB
	ttl time.Duration
}

// NewFilesystem opens (or creates) a badger database in dir.
func NewFilesystem(dir string, ttl time.Duration) (*Filesystem, error) {
	if dir == "" {
		return nil, errors.New("filesystem cache requires a path")
	}
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Filesystem{db: db, ttl: ttl}, nil
}

func (f *Filesystem) buildKey(key string) []byte {
	return []byte(fmt.Sprintf("%s/%s", keyPrefix, key))
}

func (f *Filesystem) Get(_ context.Context, key string) (Entry, bool) {
	var env envelope
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(f.buildKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &env)
		})
	})
	if err != nil {
		return Entry{}, false
	}
	return Entry{Body: env.Body, FetchedAt: env.FetchedAt}, true
}

func (f *Filesystem) Set(_ context.Context, key string, e Entry) error {
	buf, err := msgpack.Marshal(&envelope{URL: key, Body: e.Body, FetchedAt: e.FetchedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	return f.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(f.buildKey(key), buf)
		if f.ttl > 0 {
			entry = entry.WithTTL(f.ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (f *Filesystem) Delete(_ context.Context, key string) error {
	return f.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(f.buildKey(key))
	})
}

func (f *Filesystem) Close() error {
	return f.db.Close()
}
