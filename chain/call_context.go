// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"encoding"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/storage"
)

const DefaultMaxCallDepth = 16

// CallContext is handed to a method for the duration of one invocation.
type CallContext struct {
	TxID      ids.ID
	Height    uint64
	Timestamp uint64

	// Origin is the account that signed the transaction.
	Origin codec.Address
	// Caller is the direct caller: Origin for top-level calls, the calling
	// contract for nested calls.
	Caller codec.Address
	// Self is the address of the running contract.
	Self codec.Address
	// Value is the payment attached to this invocation. It is already
	// credited to Self.
	Value    codec.Amount
	ReadOnly bool

	state State
	exec  *execution
	depth int
}

// execution is shared by every invocation of a single transaction or query.
type execution struct {
	registry *Registry
	log      logging.Logger
	maxDepth int
	logs     []*EventLog
}

func (c *CallContext) State() State {
	return c.state
}

func (c *CallContext) Log() logging.Logger {
	return c.exec.log
}

// Contract returns the registry entry of the running contract.
func (c *CallContext) Contract(ctx context.Context) (*storage.Contract, error) {
	record, ok, err := storage.GetContract(ctx, c.state, c.Self)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, c.Self)
	}
	return record, nil
}

// ContractOf returns the registry entry at [addr], if any.
func (c *CallContext) ContractOf(ctx context.Context, addr codec.Address) (*storage.Contract, bool, error) {
	return storage.GetContract(ctx, c.state, addr)
}

func (c *CallContext) Balance(ctx context.Context) (codec.Amount, error) {
	return storage.GetBalance(ctx, c.state, c.Self)
}

// Transfer pays [amount] from the running contract to [to].
func (c *CallContext) Transfer(ctx context.Context, to codec.Address, amount codec.Amount) error {
	if c.ReadOnly {
		return fmt.Errorf("%w: transfer in query", ErrAccessDenied)
	}
	if err := storage.Transfer(ctx, c.state, c.Self, to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfBalance, err)
	}
	return nil
}

// Emit records an event log on behalf of the running contract.
func (c *CallContext) Emit(signature string, indexed []string, data []string) {
	if c.ReadOnly {
		return
	}
	c.exec.logs = append(c.exec.logs, &EventLog{
		ScoreAddress: c.Self,
		Indexed:      append([]string{signature}, indexed...),
		Data:         data,
	})
}

// Call invokes [method] on the contract at [to] with the running contract as
// caller. Writes and events of a failed call are discarded before the error
// is returned.
func (c *CallContext) Call(
	ctx context.Context,
	to codec.Address,
	method string,
	params Params,
	value codec.Amount,
) (any, error) {
	if c.depth+1 > c.exec.maxDepth {
		return nil, fmt.Errorf("%w: %d", ErrCallDepth, c.exec.maxDepth)
	}
	restore := c.state.OpIndex()
	logs := len(c.exec.logs)
	out, err := c.exec.invoke(ctx, c.state, &CallContext{
		TxID:      c.TxID,
		Height:    c.Height,
		Timestamp: c.Timestamp,
		Origin:    c.Origin,
		Caller:    c.Self,
		Self:      to,
		Value:     value,
		ReadOnly:  c.ReadOnly,
		depth:     c.depth + 1,
	}, method, params)
	if err != nil {
		c.state.Rollback(ctx, restore)
		c.exec.logs = c.exec.logs[:logs]
		return nil, err
	}
	return out, nil
}

// invoke resolves and runs [method] for [cc]. It moves the attached value
// from the caller to the callee before the handler runs.
func (e *execution) invoke(
	ctx context.Context,
	st State,
	cc *CallContext,
	method string,
	params Params,
) (any, error) {
	cc.state = st
	cc.exec = e
	record, ok, err := storage.GetContract(ctx, st, cc.Self)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, cc.Self)
	}
	m, err := e.registry.Method(record.CodeID, method)
	if err != nil {
		return nil, err
	}
	if cc.ReadOnly && !m.ReadOnly {
		return nil, fmt.Errorf("%w: %s is not read-only", ErrMethodNotFound, method)
	}
	if !cc.Value.IsZero() && !m.Payable {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotPayable, method)
	}
	if err := params.Verify(m.Inputs); err != nil {
		return nil, err
	}
	if err := storage.Transfer(ctx, st, cc.Caller, cc.Self, cc.Value); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfBalance, err)
	}
	e.log.Debug("invoking method",
		zap.Stringer("contract", cc.Self),
		zap.String("method", method),
		zap.Stringer("caller", cc.Caller),
		zap.Int("depth", cc.depth),
	)
	return m.Handler(ctx, cc, params)
}

// FormatOutput renders a method return value in its text form.
func FormatOutput(v any) (string, error) {
	switch o := v.(type) {
	case nil:
		return "", nil
	case string:
		return o, nil
	case encoding.TextMarshaler:
		b, err := o.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case fmt.Stringer:
		return o.String(), nil
	default:
		return "", fmt.Errorf("%w: output of type %T", ErrInvalidObject, v)
	}
}
