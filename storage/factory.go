// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/keys"
	"github.com/nomadconnection/cryptobears/state"
)

const factoryConfigLen = codec.AddressLen + codec.AmountLen

var factoryConfigChunks = keys.ChunksFor(factoryConfigLen)

type FactoryConfig struct {
	Ledger    codec.Address
	MintPrice codec.Amount
}

func FactoryConfigKey(factory codec.Address) []byte {
	return makeKey(factoryConfigPrefix, factoryConfigChunks, factory[:])
}

func GetFactoryConfig(ctx context.Context, im state.Immutable, factory codec.Address) (*FactoryConfig, bool, error) {
	v, err := im.GetValue(ctx, FactoryConfigKey(factory))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	p := codec.NewReader(v, len(v))
	cfg := &FactoryConfig{}
	p.UnpackAddress(&cfg.Ledger)
	p.UnpackAmount(&cfg.MintPrice)
	if err := p.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: factory config %s: %w", ErrCorruptRecord, factory, err)
	}
	return cfg, true, nil
}

func SetFactoryConfig(ctx context.Context, mu state.Mutable, factory codec.Address, cfg *FactoryConfig) error {
	p := codec.NewWriter(factoryConfigLen, factoryConfigLen)
	p.PackAddress(cfg.Ledger)
	p.PackAmount(cfg.MintPrice)
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, FactoryConfigKey(factory), p.Bytes())
}

func FactoryNonceKey(factory codec.Address) []byte {
	return makeKey(factoryNoncePrefix, Uint64Chunks, factory[:])
}

// NextFactoryNonce returns the current nonce of [factory] and stores its
// successor.
func NextFactoryNonce(ctx context.Context, mu state.Mutable, factory codec.Address) (uint64, error) {
	k := FactoryNonceKey(factory)
	n, _, err := getUint64(ctx, mu, k)
	if err != nil {
		return 0, err
	}
	return n, setUint64(ctx, mu, k, n+1)
}
