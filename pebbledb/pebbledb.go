// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pebbledb implements kv.Store on top of pebble.
package pebbledb

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/kv"
	"github.com/hayotensor/hypertensor/log"
)

var logger = log.WithContext("pkg", "pebbledb")

var _ kv.StoreCloser = (*PebbleDB)(nil)

// PebbleDB wraps a pebble database.
type PebbleDB struct {
	db *pebble.DB
}

// errorLogger forwards pebble errors and fatals to the package logger.
type errorLogger struct{}

func (errorLogger) Infof(format string, args ...any) {}
func (errorLogger) Errorf(format string, args ...any) {
	logger.Error("pebble", "msg", fmt.Sprintf(format, args...))
}
func (errorLogger) Fatalf(format string, args ...any) {
	logger.Crit("pebble", "msg", fmt.Sprintf(format, args...))
}

func defaultOptions() *pebble.Options {
	return &pebble.Options{
		Cache:                       pebble.NewCache(64 << 20),
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
		MemTableSize:                32 << 20,
		MemTableStopWritesThreshold: 4,
		MaxOpenFiles:                1000,
		Logger:                      errorLogger{},
	}
}

// Open opens or creates the database at path.
func Open(path string) (*PebbleDB, error) {
	db, err := pebble.Open(path, defaultOptions())
	if err != nil {
		return nil, errors.Wrap(err, "open pebble db")
	}
	return &PebbleDB{db: db}, nil
}

// NewMem creates a database backed by an in-memory filesystem.
func NewMem() (*PebbleDB, error) {
	opts := defaultOptions()
	opts.FS = vfs.NewMem()
	db, err := pebble.Open("mem", opts)
	if err != nil {
		return nil, errors.Wrap(err, "open pebble mem db")
	}
	return &PebbleDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (p *PebbleDB) IsNotFound(err error) bool {
	return errors.Is(err, pebble.ErrNotFound)
}

// Get returns a copy of the value stored under key.
func (p *PebbleDB) Get(key []byte) ([]byte, error) {
	value, closer, err := p.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Has returns whether a key exists.
func (p *PebbleDB) Has(key []byte) (bool, error) {
	_, closer, err := p.db.Get(key)
	if err != nil {
		if p.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, closer.Close()
}

func (p *PebbleDB) Put(key, value []byte) error {
	return p.db.Set(key, value, pebble.Sync)
}

func (p *PebbleDB) Delete(key []byte) error {
	return p.db.Delete(key, pebble.Sync)
}

// Bulk creates an atomic batch committed with sync on Write.
func (p *PebbleDB) Bulk() kv.Bulk {
	return &bulk{db: p.db, batch: p.db.NewBatch()}
}

// Iterate creates an iterator over the range.
func (p *PebbleDB) Iterate(r kv.Range) kv.Iterator {
	opts := &pebble.IterOptions{LowerBound: r.Start}
	if len(r.Limit) > 0 {
		opts.UpperBound = r.Limit
	}
	iter, err := p.db.NewIter(opts)
	if err != nil {
		return &iterator{err: errors.Wrap(err, "new iterator")}
	}
	return &iterator{iter: iter}
}

func (p *PebbleDB) Close() error {
	return p.db.Close()
}

type bulk struct {
	db    *pebble.DB
	batch *pebble.Batch
	n     int
}

func (b *bulk) Put(key, value []byte) error {
	b.n++
	return b.batch.Set(key, value, nil)
}

func (b *bulk) Delete(key []byte) error {
	b.n++
	return b.batch.Delete(key, nil)
}

func (b *bulk) Len() int {
	return b.n
}

func (b *bulk) Write() error {
	if err := b.batch.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "commit batch")
	}
	if err := b.batch.Close(); err != nil {
		return err
	}
	b.batch = b.db.NewBatch()
	b.n = 0
	return nil
}

type iterator struct {
	iter    *pebble.Iterator
	started bool
	err     error
}

func (it *iterator) Next() bool {
	if it.iter == nil {
		return false
	}
	if !it.started {
		it.started = true
		return it.iter.First()
	}
	return it.iter.Next()
}

func (it *iterator) Key() []byte {
	return append([]byte(nil), it.iter.Key()...)
}

func (it *iterator) Value() []byte {
	return append([]byte(nil), it.iter.Value()...)
}

func (it *iterator) Release() {
	if it.iter != nil {
		if err := it.iter.Close(); err != nil && it.err == nil {
			it.err = err
		}
		it.iter = nil
	}
}

func (it *iterator) Error() error {
	if it.err != nil {
		return it.err
	}
	if it.iter != nil {
		return it.iter.Error()
	}
	return nil
}
