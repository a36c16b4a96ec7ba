// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
)

var ErrReadOnly = errors.New("state is read-only")

type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

var _ Immutable = (*Reader)(nil)

// Reader exposes committed database contents as [Immutable].
type Reader struct {
	db database.KeyValueReader
}

func NewReader(db database.KeyValueReader) *Reader {
	return &Reader{db: db}
}

func (r *Reader) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return r.db.Get(key)
}

var _ Mutable = (*ReadOnly)(nil)

// ReadOnly rejects every write. Queries execute against it so that a
// read-only method can never mutate state.
type ReadOnly struct {
	Immutable
}

func NewReadOnly(im Immutable) *ReadOnly {
	return &ReadOnly{Immutable: im}
}

func (*ReadOnly) Insert(context.Context, []byte, []byte) error {
	return ErrReadOnly
}

func (*ReadOnly) Remove(context.Context, []byte) error {
	return ErrReadOnly
}
