// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package factory is the public entry point for minting. It collects the
// mint price, derives the DNA and asks its ledger to mint.
package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/contracts"
	"github.com/nomadconnection/cryptobears/contracts/guard"
	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/storage"
)

var (
	_ chain.Contract = (*Factory)(nil)

	DefaultMintPrice = codec.ICX(1)
)

type Factory struct{}

func New() *Factory {
	return &Factory{}
}

func (*Factory) OnInstall(ctx context.Context, c *chain.CallContext, params chain.Params) error {
	ledger, err := params.Address("_score")
	if err != nil {
		return err
	}
	if !ledger.IsContract() {
		return fmt.Errorf("%w: %s is not a contract", chain.ErrInvalidParameter, ledger)
	}
	price, err := params.OptAmount("_mintPrice", DefaultMintPrice)
	if err != nil {
		return err
	}
	if err := storage.SetFactoryConfig(ctx, c.State(), c.Self, &storage.FactoryConfig{
		Ledger:    ledger,
		MintPrice: price,
	}); err != nil {
		return err
	}
	_, err = c.Call(ctx, ledger, "registerMinter", nil, codec.Amount{})
	return err
}

// OnUpdate keeps the ledger binding. Only the mint price may change.
func (*Factory) OnUpdate(ctx context.Context, c *chain.CallContext, params chain.Params) error {
	if params.Has("_score") {
		return fmt.Errorf("%w: ledger cannot change on update", contracts.ErrUnauthorized)
	}
	cfg, err := config(ctx, c.State(), c.Self)
	if err != nil {
		return err
	}
	cfg.MintPrice, err = params.OptAmount("_mintPrice", cfg.MintPrice)
	if err != nil {
		return err
	}
	return storage.SetFactoryConfig(ctx, c.State(), c.Self, cfg)
}

func config(ctx context.Context, im state.Immutable, factory codec.Address) (*storage.FactoryConfig, error) {
	cfg, ok, err := storage.GetFactoryConfig(ctx, im, factory)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: factory %s", contracts.ErrNotFound, factory)
	}
	return cfg, nil
}

func (f *Factory) Methods() []*chain.Method {
	return []*chain.Method{
		{Name: "createCryptoBear", Output: "bytes", Payable: true, Handler: f.createCryptoBear},
		{Name: "getScore", Output: "Address", ReadOnly: true, Handler: f.getScore},
		{Name: "mintPrice", Output: "int", ReadOnly: true, Handler: f.mintPrice},
		{
			Name:    "setMintPrice",
			Inputs:  []chain.Input{{Name: "_price", Type: "int"}},
			Handler: f.setMintPrice,
		},
		{
			Name:    "withdraw",
			Inputs:  []chain.Input{{Name: "_amount", Type: "int"}},
			Handler: f.withdraw,
		},
	}
}

func (*Factory) createCryptoBear(ctx context.Context, c *chain.CallContext, _ chain.Params) (any, error) {
	cfg, err := config(ctx, c.State(), c.Self)
	if err != nil {
		return nil, err
	}
	if c.Value.Lt(cfg.MintPrice) {
		return nil, fmt.Errorf("%w: paid %s, bears cost %s", contracts.ErrInsufficientPayment, c.Value, cfg.MintPrice)
	}
	nonce, err := storage.NextFactoryNonce(ctx, c.State(), c.Self)
	if err != nil {
		return nil, err
	}
	dna := DNA(c.Caller, c.TxID, nonce)
	out, err := c.Call(ctx, cfg.Ledger, "createCryptoBear", chain.Params{
		"_bearDNA": codec.ToHex(dna),
		"_address": c.Caller.String(),
	}, codec.Amount{})
	if err != nil {
		return nil, err
	}
	c.Log().Info("bear created",
		zap.Stringer("owner", c.Caller),
		zap.Stringer("paid", c.Value),
		zap.Uint64("nonce", nonce),
	)
	return out, nil
}

func (*Factory) getScore(ctx context.Context, c *chain.CallContext, _ chain.Params) (any, error) {
	cfg, err := config(ctx, c.State(), c.Self)
	if err != nil {
		return nil, err
	}
	return cfg.Ledger, nil
}

func (*Factory) mintPrice(ctx context.Context, c *chain.CallContext, _ chain.Params) (any, error) {
	cfg, err := config(ctx, c.State(), c.Self)
	if err != nil {
		return nil, err
	}
	return cfg.MintPrice, nil
}

func (*Factory) setMintPrice(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
	if err := guard.RequireDeployer(ctx, c.State(), c.Self, c.Caller); err != nil {
		return nil, err
	}
	price, err := params.Amount("_price")
	if err != nil {
		return nil, err
	}
	cfg, err := config(ctx, c.State(), c.Self)
	if err != nil {
		return nil, err
	}
	cfg.MintPrice = price
	return nil, storage.SetFactoryConfig(ctx, c.State(), c.Self, cfg)
}

// withdraw pays collected mint fees to the deployer.
func (*Factory) withdraw(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
	if err := guard.RequireDeployer(ctx, c.State(), c.Self, c.Caller); err != nil {
		return nil, err
	}
	amount, err := params.Amount("_amount")
	if err != nil {
		return nil, err
	}
	return nil, c.Transfer(ctx, c.Caller, amount)
}
