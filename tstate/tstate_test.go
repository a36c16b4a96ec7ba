// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/nomadconnection/cryptobears/keys"
	"github.com/nomadconnection/cryptobears/state"
)

var (
	testKey  = keys.EncodeChunks([]byte("key"), 1)
	testKey2 = keys.EncodeChunks([]byte("key2"), 1)
	testVal  = []byte("value")
	testVal2 = []byte("value2")
)

func TestGetValue(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	require.NoError(db.Put(testKey, testVal))

	ts := New(state.NewReader(db))
	v, err := ts.GetValue(ctx, testKey)
	require.NoError(err)
	require.Equal(testVal, v)

	_, err = ts.GetValue(ctx, testKey2)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestInsertNew(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	ts := New(state.NewReader(memdb.New()))
	require.NoError(ts.Insert(ctx, testKey, testVal))
	require.Equal(1, ts.OpIndex())
	require.Equal(1, ts.PendingChanges())

	v, err := ts.GetValue(ctx, testKey)
	require.NoError(err)
	require.Equal(testVal, v)
}

func TestInsertInvalid(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	ts := New(state.NewReader(memdb.New()))
	require.ErrorIs(ts.Insert(ctx, testKey, make([]byte, 128)), ErrInvalidKeyValue)
	require.Zero(ts.OpIndex())
}

func TestDisableAllocation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	require.NoError(db.Put(testKey, testVal))

	ts := New(state.NewReader(db))
	ts.DisableAllocation()
	require.NoError(ts.Insert(ctx, testKey, testVal2))
	require.ErrorIs(ts.Insert(ctx, testKey2, testVal), ErrAllocationDisabled)
	ts.EnableAllocation()
	require.NoError(ts.Insert(ctx, testKey2, testVal))
}

func TestRemove(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	require.NoError(db.Put(testKey, testVal))

	ts := New(state.NewReader(db))
	// Removing a missing key records nothing.
	require.NoError(ts.Remove(ctx, testKey2))
	require.Zero(ts.OpIndex())

	require.NoError(ts.Remove(ctx, testKey))
	_, err := ts.GetValue(ctx, testKey)
	require.ErrorIs(err, database.ErrNotFound)
	require.Equal(1, ts.OpIndex())
}

func TestRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	require.NoError(db.Put(testKey, testVal))

	ts := New(state.NewReader(db))
	require.NoError(ts.Insert(ctx, testKey2, testVal))
	checkpoint := ts.OpIndex()

	require.NoError(ts.Insert(ctx, testKey, testVal2))
	require.NoError(ts.Insert(ctx, testKey2, testVal2))
	require.NoError(ts.Remove(ctx, testKey))
	require.Equal(4, ts.OpIndex())

	ts.Rollback(ctx, checkpoint)
	require.Equal(checkpoint, ts.OpIndex())

	v, err := ts.GetValue(ctx, testKey)
	require.NoError(err)
	require.Equal(testVal, v)
	v, err = ts.GetValue(ctx, testKey2)
	require.NoError(err)
	require.Equal(testVal, v)

	ts.Rollback(ctx, 0)
	require.Zero(ts.PendingChanges())
	_, err = ts.GetValue(ctx, testKey2)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestWriteChanges(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	require.NoError(db.Put(testKey, testVal))

	ts := New(state.NewReader(db))
	require.NoError(ts.Remove(ctx, testKey))
	require.NoError(ts.Insert(ctx, testKey2, testVal2))

	batch := db.NewBatch()
	require.NoError(ts.WriteChanges(batch))

	// Nothing is visible before the batch is written.
	has, err := db.Has(testKey)
	require.NoError(err)
	require.True(has)

	require.NoError(batch.Write())
	has, err = db.Has(testKey)
	require.NoError(err)
	require.False(has)
	v, err := db.Get(testKey2)
	require.NoError(err)
	require.Equal(testVal2, v)
}
