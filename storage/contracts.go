// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/consts"
	"github.com/nomadconnection/cryptobears/keys"
	"github.com/nomadconnection/cryptobears/state"
)

const MaxCodeIDLen = 64

var contractChunks = keys.ChunksFor(
	consts.Uint16Len + MaxCodeIDLen + codec.AddressLen + consts.IDLen + consts.Uint64Len,
)

// Contract is the registry entry of a deployed contract.
type Contract struct {
	CodeID   string
	Deployer codec.Address
	TxID     ids.ID
	Height   uint64
}

func ContractKey(addr codec.Address) []byte {
	return makeKey(contractPrefix, contractChunks, addr[:])
}

func GetContract(ctx context.Context, im state.Immutable, addr codec.Address) (*Contract, bool, error) {
	v, err := im.GetValue(ctx, ContractKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	p := codec.NewReader(v, len(v))
	c := &Contract{}
	c.CodeID = p.UnpackString(true)
	p.UnpackAddress(&c.Deployer)
	p.UnpackID(true, &c.TxID)
	c.Height = p.UnpackUint64(false)
	if err := p.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: contract %s: %w", ErrCorruptRecord, addr, err)
	}
	return c, true, nil
}

func SetContract(ctx context.Context, mu state.Mutable, addr codec.Address, c *Contract) error {
	if len(c.CodeID) > MaxCodeIDLen {
		return fmt.Errorf("code id %q exceeds %d bytes", c.CodeID, MaxCodeIDLen)
	}
	p := codec.NewWriter(codec.StringLen(c.CodeID)+codec.AddressLen+consts.IDLen+consts.Uint64Len, consts.NetworkSizeLimit)
	p.PackString(c.CodeID)
	p.PackAddress(c.Deployer)
	p.PackID(c.TxID)
	p.PackUint64(c.Height)
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, ContractKey(addr), p.Bytes())
}

var resultChunks = keys.ChunksFor(consts.NetworkSizeLimit)

func ResultKey(txID ids.ID) []byte {
	return makeKey(resultPrefix, resultChunks, txID[:])
}

// GetResult returns the packed result of [txID] if it was executed.
func GetResult(ctx context.Context, im state.Immutable, txID ids.ID) ([]byte, bool, error) {
	v, err := im.GetValue(ctx, ResultKey(txID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func SetResult(ctx context.Context, mu state.Mutable, txID ids.ID, result []byte) error {
	return mu.Insert(ctx, ResultKey(txID), result)
}
