package loader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/singleflight"
)

// CachedFetcher keeps every artifact fetched through Next in a badger
// database. Concurrent fetches of the same missing artifact share one
// call to Next.
type CachedFetcher struct {
	Next Fetcher

	db     *badger.DB
	flight singleflight.Group
}

// NewCachedFetcher opens the cache in dir, or in memory when dir is empty.
func NewCachedFetcher(dir string, next Fetcher) (*CachedFetcher, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(badgerLogger{}).WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &CachedFetcher{Next: next, db: db}, nil
}

func (f *CachedFetcher) Close() error {
	return f.db.Close()
}

func (f *CachedFetcher) Fetch(ctx context.Context, id ID) ([]byte, error) {
	key := []byte(id.String())
	data, err := f.get(key)
	if err == nil {
		log.Debugf("cache hit %s", id)
		return data, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("cache lookup %s: %w", id, err)
	}

	v, err, _ := f.flight.Do(id.String(), func() (any, error) {
		data, err := f.Next.Fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := f.db.Update(func(txn *badger.Txn) error {
			return txn.Set(key, data)
		}); err != nil {
			return nil, fmt.Errorf("cache store %s: %w", id, err)
		}
		log.Debugf("cached %s (%d bytes)", id, len(data))
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (f *CachedFetcher) get(key []byte) ([]byte, error) {
	var data []byte
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

// Evict drops id from the cache.
func (f *CachedFetcher) Evict(id ID) error {
	return f.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(id.String()))
	})
}

// badgerLogger routes badger's own logging through commonlog. Info is
// demoted to debug and debug is dropped.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any)   { log.Errorf(format, args...) }
func (badgerLogger) Warningf(format string, args ...any) { log.Warningf(format, args...) }
func (badgerLogger) Infof(format string, args ...any)    { log.Debugf(format, args...) }
func (badgerLogger) Debugf(format string, args ...any)   {}
