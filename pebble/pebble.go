// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	_ database.Database = (*Database)(nil)
	_ database.Batch    = (*batch)(nil)
	_ database.Iterator = (*iterator)(nil)
)

type Config struct {
	CacheSize                   int  `yaml:"cacheSize"`
	BytesPerSync                int  `yaml:"bytesPerSync"`
	WALBytesPerSync             int  `yaml:"walBytesPerSync"` // 0 means no background syncing
	MemTableStopWritesThreshold int  `yaml:"memTableStopWritesThreshold"`
	MaxOpenFiles                int  `yaml:"maxOpenFiles"`
	ConcurrentCompactions       int  `yaml:"concurrentCompactions"`
	Sync                        bool `yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   128 * units.MiB,
		BytesPerSync:                512 * units.KiB,
		WALBytesPerSync:             0,
		MemTableStopWritesThreshold: 8,
		MaxOpenFiles:                4_096,
		ConcurrentCompactions:       1,
		Sync:                        true,
	}
}

// Database is a pebble-backed [database.Database].
type Database struct {
	db      *pebble.DB
	metrics *metrics
	wo      *pebble.WriteOptions

	l       sync.RWMutex
	closed  bool
	closing chan struct{}
}

// New opens a pebble database at [file] and returns the registry that its
// metrics are reported to.
func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	// These default settings are based on https://github.com/ethereum/go-ethereum/blob/master/ethdb/pebble/pebble.go
	d := &Database{closing: make(chan struct{})}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.ConcurrentCompactions },
		EventListener: &pebble.EventListener{
			CompactionBegin: d.onCompactionBegin,
			CompactionEnd:   d.onCompactionEnd,
			WriteStallBegin: d.onWriteStallBegin,
			WriteStallEnd:   d.onWriteStallEnd,
		},
	}
	defer opts.Cache.Unref()
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d.metrics = metrics
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db
	if cfg.Sync {
		d.wo = pebble.Sync
	} else {
		d.wo = pebble.NoSync
	}
	go d.collectMetrics()
	return d, registry, nil
}

func (db *Database) Close() error {
	db.l.Lock()
	defer db.l.Unlock()

	if db.closed {
		return database.ErrClosed
	}
	db.closed = true
	close(db.closing)
	return updateError(db.db.Close())
}

func (db *Database) HealthCheck(context.Context) (interface{}, error) {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return nil, database.ErrClosed
	}
	return nil, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return false, database.ErrClosed
	}
	_, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, updateError(err)
	}
	return true, closer.Close()
}

func (db *Database) Get(key []byte) ([]byte, error) {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return nil, database.ErrClosed
	}
	start := time.Now()
	data, closer, err := db.db.Get(key)
	db.metrics.getLatency.Observe(float64(time.Since(start)))
	if err != nil {
		return nil, updateError(err)
	}
	ret := make([]byte, len(data))
	copy(ret, data)
	return ret, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	return updateError(db.db.Set(key, value, db.wo))
}

func (db *Database) Delete(key []byte) error {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	return updateError(db.db.Delete(key, db.wo))
}

func (db *Database) Compact(start []byte, limit []byte) error {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	if limit == nil {
		// Pebble requires an explicit upper bound.
		it, err := db.db.NewIter(&pebble.IterOptions{})
		if err != nil {
			return updateError(err)
		}
		if it.Last() {
			limit = append(bytes.Clone(it.Key()), 0)
		}
		if err := it.Close(); err != nil {
			return updateError(err)
		}
		if limit == nil {
			return nil
		}
	}
	return updateError(db.db.Compact(start, limit, true))
}

func (db *Database) NewBatch() database.Batch {
	return &batch{db: db, batch: db.db.NewBatch()}
}

func (db *Database) NewIterator() database.Iterator {
	return db.NewIteratorWithStartAndPrefix(nil, nil)
}

func (db *Database) NewIteratorWithStart(start []byte) database.Iterator {
	return db.NewIteratorWithStartAndPrefix(start, nil)
}

func (db *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	return db.NewIteratorWithStartAndPrefix(nil, prefix)
}

func (db *Database) NewIteratorWithStartAndPrefix(start, prefix []byte) database.Iterator {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return &iterator{err: database.ErrClosed}
	}
	opts := &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	}
	if bytes.Compare(start, prefix) > 0 {
		opts.LowerBound = start
	}
	it, err := db.db.NewIter(opts)
	if err != nil {
		return &iterator{err: updateError(err)}
	}
	return &iterator{iter: it}
}

// prefixUpperBound returns the smallest key that is larger than every key
// with [prefix], or nil if no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	upper := bytes.Clone(prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}
	return nil
}

func updateError(err error) error {
	switch {
	case errors.Is(err, pebble.ErrClosed):
		return database.ErrClosed
	case errors.Is(err, pebble.ErrNotFound):
		return database.ErrNotFound
	default:
		return err
	}
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

type batch struct {
	db    *Database
	batch *pebble.Batch
	ops   []batchOp
	size  int
}

func (b *batch) Put(key, value []byte) error {
	b.ops = append(b.ops, batchOp{key: bytes.Clone(key), value: bytes.Clone(value)})
	b.size += len(key) + len(value)
	return updateError(b.batch.Set(key, value, nil))
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{key: bytes.Clone(key), delete: true})
	b.size += len(key)
	return updateError(b.batch.Delete(key, nil))
}

func (b *batch) Size() int {
	return b.size
}

// Write commits every operation in the batch atomically.
func (b *batch) Write() error {
	b.db.l.RLock()
	defer b.db.l.RUnlock()

	if b.db.closed {
		return database.ErrClosed
	}
	return updateError(b.batch.Commit(b.db.wo))
}

func (b *batch) Reset() {
	b.batch.Reset()
	b.ops = b.ops[:0]
	b.size = 0
}

func (b *batch) Replay(w database.KeyValueWriterDeleter) error {
	for _, op := range b.ops {
		if op.delete {
			if err := w.Delete(op.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(op.key, op.value); err != nil {
			return err
		}
	}
	return nil
}

func (b *batch) Inner() database.Batch {
	return b
}

type iterator struct {
	iter    *pebble.Iterator
	started bool
	valid   bool
	err     error
	key     []byte
	value   []byte
}

func (it *iterator) Next() bool {
	if it.iter == nil || it.err != nil {
		return false
	}
	if !it.started {
		it.valid = it.iter.First()
		it.started = true
	} else {
		it.valid = it.iter.Next()
	}
	if !it.valid {
		it.key, it.value = nil, nil
		it.err = updateError(it.iter.Error())
		return false
	}
	it.key = bytes.Clone(it.iter.Key())
	it.value = bytes.Clone(it.iter.Value())
	return true
}

func (it *iterator) Error() error {
	return it.err
}

func (it *iterator) Key() []byte {
	return it.key
}

func (it *iterator) Value() []byte {
	return it.value
}

func (it *iterator) Release() {
	if it.iter == nil {
		return
	}
	if err := it.iter.Close(); err != nil && it.err == nil {
		it.err = updateError(err)
	}
	it.iter = nil
}
