// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/tstate"
)

var (
	_ State = (*tstate.TState)(nil)
	_ State = (*readOnlyState)(nil)
)

// State is the mutable view a transaction executes against. Checkpoints let
// a failed call discard only its own writes.
type State interface {
	state.Mutable

	OpIndex() int
	Rollback(ctx context.Context, restorePoint int)
}

// readOnlyState serves queries. Every write fails with [state.ErrReadOnly].
type readOnlyState struct {
	*state.ReadOnly
}

func newReadOnlyState(im state.Immutable) *readOnlyState {
	return &readOnlyState{ReadOnly: state.NewReadOnly(im)}
}

func (*readOnlyState) OpIndex() int { return 0 }

func (*readOnlyState) Rollback(context.Context, int) {}
