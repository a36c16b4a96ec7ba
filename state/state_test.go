// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	require.NoError(db.Put([]byte("k"), []byte("v")))

	r := NewReader(db)
	v, err := r.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)

	_, err = r.GetValue(ctx, []byte("missing"))
	require.ErrorIs(err, database.ErrNotFound)
}

func TestReadOnly(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	require.NoError(db.Put([]byte("k"), []byte("v")))

	ro := NewReadOnly(NewReader(db))
	v, err := ro.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)

	require.ErrorIs(ro.Insert(ctx, []byte("k"), []byte("w")), ErrReadOnly)
	require.ErrorIs(ro.Remove(ctx, []byte("k")), ErrReadOnly)

	v, err = db.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)
}
