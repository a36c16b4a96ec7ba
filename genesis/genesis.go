// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/storage"
)

var (
	ErrContractAllocation = errors.New("cannot allocate to a contract")
	ErrSupplyOverflow     = errors.New("total supply overflows")
)

type CustomAllocation struct {
	Address string `json:"address"`
	// Balance in loop, as 0x-prefixed hex or decimal string.
	Balance codec.Amount `json:"balance"`
}

type Genesis struct {
	CustomAllocation []*CustomAllocation `json:"customAllocation"`
}

func NewDefaultGenesis(customAllocations []*CustomAllocation) *Genesis {
	return &Genesis{CustomAllocation: customAllocations}
}

func Parse(b []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(b, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Load reads the genesis at [path]. An empty path yields an empty genesis.
func Load(path string) (*Genesis, error) {
	if len(path) == 0 {
		return NewDefaultGenesis(nil), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// InitializeState credits every allocation and returns the total supply.
func (g *Genesis) InitializeState(ctx context.Context, mu state.Mutable) (codec.Amount, error) {
	var supply codec.Amount
	for _, alloc := range g.CustomAllocation {
		addr, err := codec.ParseAddress(alloc.Address)
		if err != nil {
			return codec.Amount{}, fmt.Errorf("%w: %s", err, alloc.Address)
		}
		if addr.IsContract() {
			return codec.Amount{}, fmt.Errorf("%w: %s", ErrContractAllocation, alloc.Address)
		}
		var overflow bool
		supply, overflow = supply.Add(alloc.Balance)
		if overflow {
			return codec.Amount{}, fmt.Errorf("%w: at %s", ErrSupplyOverflow, alloc.Address)
		}
		if _, err := storage.AddBalance(ctx, mu, addr, alloc.Balance); err != nil {
			return codec.Amount{}, fmt.Errorf("%w: addr=%s, bal=%s", err, alloc.Address, alloc.Balance)
		}
	}
	return supply, nil
}
