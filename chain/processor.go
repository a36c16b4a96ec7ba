// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/storage"
)

// Processor executes transactions against a [State]. It holds no state of
// its own and is safe to share, but callers must serialize Execute.
type Processor struct {
	registry *Registry
	log      logging.Logger
	maxDepth int
}

func NewProcessor(log logging.Logger, registry *Registry, maxCallDepth int) *Processor {
	if maxCallDepth <= 0 {
		maxCallDepth = DefaultMaxCallDepth
	}
	return &Processor{registry: registry, log: log, maxDepth: maxCallDepth}
}

func (p *Processor) Registry() *Registry {
	return p.registry
}

// DeployAddress is the address a contract installed by [from] in [txID]
// receives.
func DeployAddress(from codec.Address, txID ids.ID) codec.Address {
	h := hashing.ComputeHash256(append(from[:], txID[:]...))
	return codec.CreateAddressFromBytes(codec.ContractType, h)
}

// Execute runs [tx] all-or-nothing and persists its result. A failed
// transaction leaves no writes behind except its result and the new height.
// An error is returned only when [tx] is rejected outright or [st] fails.
func (p *Processor) Execute(
	ctx context.Context,
	st State,
	tx *Transaction,
	height uint64,
	timestamp uint64,
) (*Result, error) {
	if err := tx.Verify(); err != nil {
		return nil, err
	}
	txID, err := tx.ID()
	if err != nil {
		return nil, err
	}
	if _, ok, err := storage.GetResult(ctx, st, txID); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTx, codec.Hash(txID))
	}

	exec := &execution{registry: p.registry, log: p.log, maxDepth: p.maxDepth}
	root := &CallContext{
		TxID:      txID,
		Height:    height,
		Timestamp: timestamp,
		Origin:    tx.From,
		Caller:    tx.From,
		Self:      tx.To,
		Value:     tx.Value,
	}
	result := &Result{
		TxHash:    codec.Hash(txID),
		Height:    codec.Uint(height),
		Timestamp: codec.Uint(timestamp),
		From:      tx.From,
		To:        tx.To,
		Status:    StatusSuccess,
	}
	restore := st.OpIndex()
	out, err := p.run(ctx, st, exec, root, tx, result)
	if err == nil {
		result.Output, err = FormatOutput(out)
	}
	if err != nil {
		st.Rollback(ctx, restore)
		code := CodeOf(err)
		result.Status = StatusFailure
		result.ScoreAddress = nil
		result.Output = ""
		result.Failure = &Failure{Code: codec.Uint(code), Message: err.Error()}
		exec.logs = nil
		p.log.Debug("transaction failed",
			zap.Stringer("txID", result.TxHash),
			zap.Int("code", code),
			zap.Error(err),
		)
	}
	result.EventLogs = exec.logs
	if result.EventLogs == nil {
		result.EventLogs = []*EventLog{}
	}
	b, err := result.Bytes()
	if err != nil {
		return nil, err
	}
	if err := storage.SetResult(ctx, st, txID, b); err != nil {
		return nil, err
	}
	if err := storage.SetHeight(ctx, st, height); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Processor) run(
	ctx context.Context,
	st State,
	exec *execution,
	root *CallContext,
	tx *Transaction,
	result *Result,
) (any, error) {
	switch tx.DataType {
	case DataTypeCall:
		return exec.invoke(ctx, st, root, tx.Data.Method, tx.Data.Params)
	case DataTypeDeploy:
		addr, err := p.deploy(ctx, st, exec, root, tx)
		if err != nil {
			return nil, err
		}
		result.ScoreAddress = &addr
		return nil, nil
	default:
		if err := storage.Transfer(ctx, st, tx.From, tx.To, tx.Value); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOutOfBalance, err)
		}
		return nil, nil
	}
}

func (p *Processor) deploy(
	ctx context.Context,
	st State,
	exec *execution,
	root *CallContext,
	tx *Transaction,
) (codec.Address, error) {
	root.state = st
	root.exec = exec

	if tx.To == codec.InstallAddress {
		contract, ok := p.registry.Contract(tx.Data.Content)
		if !ok {
			return codec.EmptyAddress, fmt.Errorf("%w: unknown code %q", ErrIllegalFormat, tx.Data.Content)
		}
		addr := DeployAddress(tx.From, root.TxID)
		if _, exists, err := storage.GetContract(ctx, st, addr); err != nil {
			return codec.EmptyAddress, err
		} else if exists {
			return codec.EmptyAddress, fmt.Errorf("%w: %s already deployed", ErrIllegalFormat, addr)
		}
		if err := storage.SetContract(ctx, st, addr, &storage.Contract{
			CodeID:   tx.Data.Content,
			Deployer: tx.From,
			TxID:     root.TxID,
			Height:   root.Height,
		}); err != nil {
			return codec.EmptyAddress, err
		}
		root.Self = addr
		if err := p.fund(ctx, st, root); err != nil {
			return codec.EmptyAddress, err
		}
		if err := contract.OnInstall(ctx, root, tx.Data.Params); err != nil {
			return codec.EmptyAddress, err
		}
		p.log.Info("contract installed",
			zap.Stringer("address", addr),
			zap.String("code", tx.Data.Content),
			zap.Stringer("deployer", tx.From),
		)
		return addr, nil
	}

	record, ok, err := storage.GetContract(ctx, st, tx.To)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if !ok {
		return codec.EmptyAddress, fmt.Errorf("%w: %s", ErrContractNotFound, tx.To)
	}
	if record.Deployer != tx.From {
		return codec.EmptyAddress, fmt.Errorf("%w: only the deployer may update %s", ErrAccessDenied, tx.To)
	}
	if len(tx.Data.Content) > 0 {
		record.CodeID = tx.Data.Content
	}
	contract, ok := p.registry.Contract(record.CodeID)
	if !ok {
		return codec.EmptyAddress, fmt.Errorf("%w: unknown code %q", ErrIllegalFormat, record.CodeID)
	}
	record.TxID = root.TxID
	record.Height = root.Height
	if err := storage.SetContract(ctx, st, tx.To, record); err != nil {
		return codec.EmptyAddress, err
	}
	if err := p.fund(ctx, st, root); err != nil {
		return codec.EmptyAddress, err
	}
	if err := contract.OnUpdate(ctx, root, tx.Data.Params); err != nil {
		return codec.EmptyAddress, err
	}
	p.log.Info("contract updated",
		zap.Stringer("address", tx.To),
		zap.String("code", record.CodeID),
	)
	return tx.To, nil
}

func (*Processor) fund(ctx context.Context, st State, root *CallContext) error {
	if err := storage.Transfer(ctx, st, root.Caller, root.Self, root.Value); err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfBalance, err)
	}
	return nil
}

// Query runs the read-only [method] of [to] against [im]. [from] is
// reported as caller and origin and may be empty.
func (p *Processor) Query(
	ctx context.Context,
	im state.Immutable,
	from codec.Address,
	to codec.Address,
	method string,
	params Params,
	height uint64,
) (string, error) {
	exec := &execution{registry: p.registry, log: p.log, maxDepth: p.maxDepth}
	out, err := exec.invoke(ctx, newReadOnlyState(im), &CallContext{
		Height:   height,
		Origin:   from,
		Caller:   from,
		Self:     to,
		ReadOnly: true,
	}, method, params)
	if err != nil {
		return "", err
	}
	return FormatOutput(out)
}

// Methods returns the method list of the contract deployed at [to].
func (p *Processor) Methods(ctx context.Context, im state.Immutable, to codec.Address) ([]*Method, error) {
	record, ok, err := storage.GetContract(ctx, im, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, to)
	}
	return p.registry.Methods(record.CodeID)
}
