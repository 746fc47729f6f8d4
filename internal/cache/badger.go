// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore implements Store on BadgerDB. Badger handles entry TTLs
// natively, so expiry needs no sweeper of our own. With an empty path the
// store runs fully in memory, which is also what tests use.
type BadgerStore struct {
	db *badger.DB
}

// compile-time interface check
var _ Store = (*BadgerStore)(nil)

// NewBadgerStore opens a Badger-backed cache store at path, or an in-memory
// store when path is empty.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get retrieves the value stored under key. Absent and expired keys report
// found=false without an error; Badger hides expired entries itself.
func (s *BadgerStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return string(value), true, nil
}

// Set stores value under key with the given TTL. Concurrent writers of the
// same key race benignly; last write wins and both values are equivalent in
// content.
func (s *BadgerStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value)).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying Badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
