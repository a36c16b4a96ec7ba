// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/nomadconnection/cryptobears/keys"
	"github.com/nomadconnection/cryptobears/state"
)

const defaultOps = 8

var _ state.Mutable = (*TState)(nil)

type op struct {
	k string

	pastExists  bool
	pastV       []byte
	pastChanged bool
}

// TState defines a struct for storing temporary state on top of a base
// [state.Immutable]. Every mutation is recorded so that state can be reverted
// to any earlier operation index.
type TState struct {
	base state.Immutable

	changedKeys map[string]maybe.Maybe[[]byte]

	// Ops is a record of all operations performed on [TState]. Tracking
	// operations allows for reverting state to a certain point-in-time.
	ops []*op

	canAllocate bool
}

// New returns a new instance of TState reading through to [base].
func New(base state.Immutable) *TState {
	return &TState{
		base:        base,
		changedKeys: make(map[string]maybe.Maybe[[]byte]),
		ops:         make([]*op, 0, defaultOps),
		canAllocate: true, // default to allowing allocation
	}
}

// DisableAllocation causes [Insert] to return an error if
// it would create a new key.
func (ts *TState) DisableAllocation() {
	ts.canAllocate = false
}

// EnableAllocation removes the forcer error case in [Insert]
// if a new key is created.
func (ts *TState) EnableAllocation() {
	ts.canAllocate = true
}

func (ts *TState) getValue(ctx context.Context, key string) ([]byte, bool, bool, error) {
	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false, nil
		}
		return v.Value(), true, true, nil
	}
	v, err := ts.base.GetValue(ctx, []byte(key))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, false, nil
	}
	if err != nil {
		return nil, false, false, err
	}
	return v, false, true, nil
}

// GetValue returns the value associated with [key], preferring uncommitted
// changes over the base state.
func (ts *TState) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	v, _, exists, err := ts.getValue(ctx, string(key))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, database.ErrNotFound
	}
	return v, nil
}

// Insert sets or updates [key] to [value].
//
// Any bytes passed into [Insert] will be consumed by [TState] and should
// not be modified/referenced after this call.
func (ts *TState) Insert(ctx context.Context, key []byte, value []byte) error {
	if !keys.VerifyValue(key, value) {
		return ErrInvalidKeyValue
	}
	k := string(key)
	past, changed, exists, err := ts.getValue(ctx, k)
	if err != nil {
		return err
	}
	if !exists && !ts.canAllocate {
		return ErrAllocationDisabled
	}
	ts.changedKeys[k] = maybe.Some(value)
	ts.ops = append(ts.ops, &op{
		k:           k,
		pastExists:  exists,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// Remove deletes [key].
func (ts *TState) Remove(ctx context.Context, key []byte) error {
	k := string(key)
	past, changed, exists, err := ts.getValue(ctx, k)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	ts.changedKeys[k] = maybe.Nothing[[]byte]()
	ts.ops = append(ts.ops, &op{
		k:           k,
		pastExists:  true,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// OpIndex returns the number of operations done on ts.
func (ts *TState) OpIndex() int {
	return len(ts.ops)
}

// Rollback restores the TState to the ts.op[restorePoint] operation.
func (ts *TState) Rollback(_ context.Context, restorePoint int) {
	if restorePoint < 0 {
		restorePoint = 0
	}
	for i := len(ts.ops) - 1; i >= restorePoint; i-- {
		op := ts.ops[i]

		// The key was untouched before this op: drop it from the change set.
		if !op.pastChanged {
			delete(ts.changedKeys, op.k)
			continue
		}
		if !op.pastExists {
			ts.changedKeys[op.k] = maybe.Nothing[[]byte]()
			continue
		}
		ts.changedKeys[op.k] = maybe.Some(op.pastV)
	}
	if restorePoint < len(ts.ops) {
		ts.ops = ts.ops[:restorePoint]
	}
}

// PendingChanges returns the number of keys that differ from the base state.
func (ts *TState) PendingChanges() int {
	return len(ts.changedKeys)
}

// WriteChanges applies every pending change to [w], typically a
// [database.Batch] that is then written atomically.
//
// Once [WriteChanges] is called, [TState] should not be used again.
func (ts *TState) WriteChanges(w database.KeyValueWriterDeleter) error {
	for k, v := range ts.changedKeys {
		if v.IsNothing() {
			if err := w.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := w.Put([]byte(k), v.Value()); err != nil {
			return err
		}
	}
	return nil
}
