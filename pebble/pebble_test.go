// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	cfg := NewDefaultConfig()
	cfg.Sync = false
	db, registry, err := New(t.TempDir(), cfg)
	require.NoError(t, err)
	require.NotNil(t, registry)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPutGetDelete(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	_, err := db.Get([]byte("bear"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Put([]byte("bear"), []byte("honey")))
	has, err := db.Has([]byte("bear"))
	require.NoError(err)
	require.True(has)
	v, err := db.Get([]byte("bear"))
	require.NoError(err)
	require.Equal([]byte("honey"), v)

	require.NoError(db.Delete([]byte("bear")))
	has, err = db.Has([]byte("bear"))
	require.NoError(err)
	require.False(has)
}

func TestBatchIsAtomic(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	b := db.NewBatch()
	require.NoError(b.Put([]byte{1}, []byte{10}))
	require.NoError(b.Put([]byte{2}, []byte{20}))
	require.NoError(b.Delete([]byte{3}))
	require.Equal(5, b.Size())

	has, err := db.Has([]byte{1})
	require.NoError(err)
	require.False(has)

	require.NoError(b.Write())
	v, err := db.Get([]byte{2})
	require.NoError(err)
	require.Equal([]byte{20}, v)

	replayed := map[string][]byte{}
	require.NoError(b.Replay(&recorder{m: replayed}))
	require.Len(replayed, 3)
	require.Nil(replayed[string([]byte{3})])

	b.Reset()
	require.Zero(b.Size())
}

func TestIteratorWithPrefix(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	for _, k := range [][]byte{{0x1, 0x1}, {0x1, 0x2}, {0x1, 0xff}, {0x2, 0x0}} {
		require.NoError(db.Put(k, k))
	}

	it := db.NewIteratorWithPrefix([]byte{0x1})
	defer it.Release()
	keys := [][]byte{}
	for it.Next() {
		keys = append(keys, it.Key())
	}
	require.NoError(it.Error())
	require.Equal([][]byte{{0x1, 0x1}, {0x1, 0x2}, {0x1, 0xff}}, keys)

	it2 := db.NewIteratorWithStartAndPrefix([]byte{0x1, 0x2}, []byte{0x1})
	defer it2.Release()
	require.True(it2.Next())
	require.Equal([]byte{0x1, 0x2}, it2.Value())
}

func TestPrefixUpperBound(t *testing.T) {
	require := require.New(t)

	require.Equal([]byte{0x2}, prefixUpperBound([]byte{0x1}))
	require.Equal([]byte{0x2}, prefixUpperBound([]byte{0x1, 0xff}))
	require.Nil(prefixUpperBound([]byte{0xff, 0xff}))
	require.Nil(prefixUpperBound(nil))
}

func TestClosed(t *testing.T) {
	require := require.New(t)
	cfg := NewDefaultConfig()
	db, _, err := New(t.TempDir(), cfg)
	require.NoError(err)
	require.NoError(db.Close())

	require.ErrorIs(db.Close(), database.ErrClosed)
	require.ErrorIs(db.Put([]byte{1}, []byte{1}), database.ErrClosed)
	_, err = db.HealthCheck(context.Background())
	require.ErrorIs(err, database.ErrClosed)
	it := db.NewIterator()
	require.False(it.Next())
	require.ErrorIs(it.Error(), database.ErrClosed)
}

type recorder struct {
	m map[string][]byte
}

func (r *recorder) Put(k, v []byte) error {
	r.m[string(k)] = v
	return nil
}

func (r *recorder) Delete(k []byte) error {
	r.m[string(k)] = nil
	return nil
}
