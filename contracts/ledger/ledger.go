// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the CryptoBears token ledger. It owns the token records
// and the ownership index and mints only on behalf of its registered minter.
package ledger

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"
	"go.uber.org/zap"

	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/consts"
	"github.com/nomadconnection/cryptobears/contracts"
	"github.com/nomadconnection/cryptobears/contracts/guard"
	"github.com/nomadconnection/cryptobears/contracts/leveling"
	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

const (
	Name   = "CryptoBears"
	Symbol = "CBT"

	TransferEvent  = "Transfer(Address,Address,bytes)"
	HappyMealEvent = "HappyMeal(bytes,int)"
)

var (
	_ chain.Contract = (*Ledger)(nil)

	DefaultMealPrice = codec.ICX(1)
)

type Ledger struct{}

func New() *Ledger {
	return &Ledger{}
}

// TokenID derives the id of the token minted when [ledger] has minted
// [supply] tokens before.
func TokenID(ledger codec.Address, supply uint64) codec.TokenID {
	msg := make([]byte, 0, codec.AddressLen+consts.Uint64Len)
	msg = append(msg, ledger[:]...)
	msg = binary.BigEndian.AppendUint64(msg, supply)
	return codec.TokenID(hashing.ComputeHash256Array(msg))
}

func (*Ledger) OnInstall(ctx context.Context, c *chain.CallContext, params chain.Params) error {
	cfg := &storage.LedgerConfig{}
	if params.Has("_minter") {
		minter, err := params.Address("_minter")
		if err != nil {
			return err
		}
		if !minter.IsContract() {
			return fmt.Errorf("%w: minter %s is not a contract", chain.ErrInvalidParameter, minter)
		}
		cfg.Minter = minter
	}
	if err := applyParams(cfg, params); err != nil {
		return err
	}
	if !params.Has("_mealPrice") {
		cfg.MealPrice = DefaultMealPrice
	}
	if err := storage.SetLedgerConfig(ctx, c.State(), c.Self, cfg); err != nil {
		return err
	}
	return storage.SetSupply(ctx, c.State(), c.Self, 0)
}

// OnUpdate keeps every token and the minter. Only the meal price and level
// cap may change.
func (*Ledger) OnUpdate(ctx context.Context, c *chain.CallContext, params chain.Params) error {
	if params.Has("_minter") {
		return fmt.Errorf("%w: minter cannot change on update", contracts.ErrUnauthorized)
	}
	cfg, err := config(ctx, c.State(), c.Self)
	if err != nil {
		return err
	}
	if err := applyParams(cfg, params); err != nil {
		return err
	}
	return storage.SetLedgerConfig(ctx, c.State(), c.Self, cfg)
}

func applyParams(cfg *storage.LedgerConfig, params chain.Params) error {
	var err error
	cfg.MealPrice, err = params.OptAmount("_mealPrice", cfg.MealPrice)
	if err != nil {
		return err
	}
	cfg.MaxLevel, err = params.OptUint("_maxLevel", cfg.MaxLevel)
	return err
}

func config(ctx context.Context, im state.Immutable, ledger codec.Address) (*storage.LedgerConfig, error) {
	cfg, ok, err := storage.GetLedgerConfig(ctx, im, ledger)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: ledger %s", contracts.ErrNotFound, ledger)
	}
	return cfg, nil
}

func (l *Ledger) Methods() []*chain.Method {
	return []*chain.Method{
		{Name: "name", Output: "str", ReadOnly: true, Handler: constant(Name)},
		{Name: "symbol", Output: "str", ReadOnly: true, Handler: constant(Symbol)},
		{Name: "totalSupply", Output: "int", ReadOnly: true, Handler: l.totalSupply},
		{
			Name:     "balanceOf",
			Inputs:   []chain.Input{{Name: "_owner", Type: "Address"}},
			Output:   "int",
			ReadOnly: true,
			Handler:  l.balanceOf,
		},
		{
			Name:     "getTokenId",
			Inputs:   []chain.Input{{Name: "_address", Type: "Address"}, {Name: "index", Type: "int"}},
			Output:   "bytes",
			ReadOnly: true,
			Handler:  l.getTokenID,
		},
		{
			Name:     "getBearLevel",
			Inputs:   []chain.Input{{Name: "_tokenId", Type: "bytes"}},
			Output:   "int",
			ReadOnly: true,
			Handler:  l.getBearLevel,
		},
		{
			Name:     "getBearDNA",
			Inputs:   []chain.Input{{Name: "_tokenId", Type: "bytes"}},
			Output:   "bytes",
			ReadOnly: true,
			Handler:  l.getBearDNA,
		},
		{
			Name:     "ownerOf",
			Inputs:   []chain.Input{{Name: "_tokenId", Type: "bytes"}},
			Output:   "Address",
			ReadOnly: true,
			Handler:  l.ownerOf,
		},
		{Name: "getMinter", Output: "Address", ReadOnly: true, Handler: l.getMinter},
		{Name: "mealPrice", Output: "int", ReadOnly: true, Handler: l.mealPrice},
		{Name: "registerMinter", Handler: l.registerMinter},
		{
			Name:    "createCryptoBear",
			Inputs:  []chain.Input{{Name: "_bearDNA", Type: "bytes"}, {Name: "_address", Type: "Address"}},
			Output:  "bytes",
			Handler: l.createCryptoBear,
		},
		{
			Name: "happyMeal",
			Inputs: []chain.Input{
				{Name: "_index", Type: "int", Optional: true},
				{Name: "_tokenId", Type: "bytes", Optional: true},
			},
			Output:  "int",
			Payable: true,
			Handler: l.happyMeal,
		},
	}
}

func constant(v string) chain.Handler {
	return func(context.Context, *chain.CallContext, chain.Params) (any, error) {
		return v, nil
	}
}

func (*Ledger) totalSupply(ctx context.Context, c *chain.CallContext, _ chain.Params) (any, error) {
	supply, err := storage.GetSupply(ctx, c.State(), c.Self)
	return codec.Uint(supply), err
}

func (*Ledger) balanceOf(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
	owner, err := params.Address("_owner")
	if err != nil {
		return nil, err
	}
	count, err := storage.GetOwnedCount(ctx, c.State(), c.Self, owner)
	return codec.Uint(count), err
}

// tokenAt resolves the [index]-th entry of the ownership index of [owner].
func tokenAt(ctx context.Context, im state.Immutable, ledger, owner codec.Address, index uint64) (codec.TokenID, error) {
	count, err := storage.GetOwnedCount(ctx, im, ledger, owner)
	if err != nil {
		return codec.EmptyTokenID, err
	}
	if index >= count {
		return codec.EmptyTokenID, fmt.Errorf("%w: index %d, %s owns %d", contracts.ErrOutOfRange, index, owner, count)
	}
	id, ok, err := storage.GetOwnedToken(ctx, im, ledger, owner, index)
	if err != nil {
		return codec.EmptyTokenID, err
	}
	if !ok {
		return codec.EmptyTokenID, fmt.Errorf("%w: index %d of %s", storage.ErrCorruptRecord, index, owner)
	}
	return id, nil
}

func (*Ledger) getTokenID(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
	owner, err := params.Address("_address")
	if err != nil {
		return nil, err
	}
	index, err := params.Uint("index")
	if err != nil {
		return nil, err
	}
	return tokenAt(ctx, c.State(), c.Self, owner, index)
}

func (*Ledger) getBearLevel(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
	id, err := params.TokenID("_tokenId")
	if err != nil {
		return nil, err
	}
	level, err := leveling.Level(ctx, c.State(), c.Self, id)
	if err != nil {
		return nil, err
	}
	return codec.Uint(level), nil
}

func token(ctx context.Context, c *chain.CallContext, params chain.Params) (codec.TokenID, *storage.Token, error) {
	id, err := params.TokenID("_tokenId")
	if err != nil {
		return codec.EmptyTokenID, nil, err
	}
	t, ok, err := storage.GetToken(ctx, c.State(), c.Self, id)
	if err != nil {
		return codec.EmptyTokenID, nil, err
	}
	if !ok {
		return codec.EmptyTokenID, nil, fmt.Errorf("%w: token %s", contracts.ErrNotFound, id)
	}
	return id, t, nil
}

func (*Ledger) getBearDNA(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
	_, t, err := token(ctx, c, params)
	if err != nil {
		return nil, err
	}
	return codec.Bytes(t.DNA), nil
}

func (*Ledger) ownerOf(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
	_, t, err := token(ctx, c, params)
	if err != nil {
		return nil, err
	}
	return t.Owner, nil
}

func (*Ledger) getMinter(ctx context.Context, c *chain.CallContext, _ chain.Params) (any, error) {
	cfg, err := config(ctx, c.State(), c.Self)
	if err != nil {
		return nil, err
	}
	return cfg.Minter, nil
}

func (*Ledger) mealPrice(ctx context.Context, c *chain.CallContext, _ chain.Params) (any, error) {
	cfg, err := config(ctx, c.State(), c.Self)
	if err != nil {
		return nil, err
	}
	return cfg.MealPrice, nil
}

// registerMinter makes the calling contract the minter. It must be called
// from a contract in a transaction signed by the ledger deployer, and only
// while no minter is set.
func (*Ledger) registerMinter(ctx context.Context, c *chain.CallContext, _ chain.Params) (any, error) {
	if !c.Caller.IsContract() {
		return nil, fmt.Errorf("%w: minter %s is not a contract", contracts.ErrUnauthorized, c.Caller)
	}
	if err := guard.RequireDeployer(ctx, c.State(), c.Self, c.Origin); err != nil {
		return nil, err
	}
	cfg, err := config(ctx, c.State(), c.Self)
	if err != nil {
		return nil, err
	}
	if !cfg.Minter.Empty() {
		return nil, fmt.Errorf("%w: minter already set to %s", contracts.ErrUnauthorized, cfg.Minter)
	}
	cfg.Minter = c.Caller
	if err := storage.SetLedgerConfig(ctx, c.State(), c.Self, cfg); err != nil {
		return nil, err
	}
	c.Log().Info("minter registered",
		zap.Stringer("ledger", c.Self),
		zap.Stringer("minter", c.Caller),
	)
	return nil, nil
}

func (*Ledger) createCryptoBear(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
	if err := guard.RequireMinter(ctx, c.State(), c.Self, c.Caller); err != nil {
		return nil, err
	}
	dna, err := params.Bytes("_bearDNA")
	if err != nil {
		return nil, err
	}
	owner, err := params.Address("_address")
	if err != nil {
		return nil, err
	}
	return Mint(ctx, c, owner, dna)
}

// Mint creates a level 0 token owned by [owner]. Authorization is the
// caller's responsibility.
func Mint(ctx context.Context, c *chain.CallContext, owner codec.Address, dna []byte) (codec.TokenID, error) {
	if len(dna) == 0 || len(dna) > storage.MaxDNALen {
		return codec.EmptyTokenID, fmt.Errorf("%w: dna of %d bytes", chain.ErrInvalidParameter, len(dna))
	}
	if owner.Empty() {
		return codec.EmptyTokenID, fmt.Errorf("%w: empty owner", chain.ErrInvalidParameter)
	}
	mu := c.State()
	supply, err := storage.GetSupply(ctx, mu, c.Self)
	if err != nil {
		return codec.EmptyTokenID, err
	}
	next, err := smath.Add64(supply, 1)
	if err != nil {
		return codec.EmptyTokenID, err
	}
	id := TokenID(c.Self, supply)
	if err := storage.SetToken(ctx, mu, c.Self, id, &storage.Token{Owner: owner, DNA: dna}); err != nil {
		return codec.EmptyTokenID, err
	}
	if _, err := storage.AppendOwned(ctx, mu, c.Self, owner, id); err != nil {
		return codec.EmptyTokenID, err
	}
	if err := storage.SetSupply(ctx, mu, c.Self, next); err != nil {
		return codec.EmptyTokenID, err
	}
	c.Emit(TransferEvent, []string{codec.EmptyAddress.String(), owner.String(), id.String()}, nil)
	c.Log().Debug("bear minted",
		zap.Stringer("ledger", c.Self),
		zap.Stringer("owner", owner),
		zap.Stringer("tokenID", id),
	)
	return id, nil
}

func (*Ledger) happyMeal(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
	var (
		id  codec.TokenID
		err error
	)
	switch {
	case params.Has("_tokenId"):
		id, err = params.TokenID("_tokenId")
	case params.Has("_index"):
		var index uint64
		index, err = params.Uint("_index")
		if err == nil {
			id, err = tokenAt(ctx, c.State(), c.Self, c.Caller, index)
		}
	default:
		err = fmt.Errorf("%w: _index or _tokenId required", chain.ErrInvalidParameter)
	}
	if err != nil {
		return nil, err
	}
	level, err := leveling.Feed(ctx, c.State(), c.Self, c.Caller, id, c.Value)
	if err != nil {
		return nil, err
	}
	c.Emit(HappyMealEvent, []string{id.String()}, []string{codec.Uint(level).String()})
	return codec.Uint(level), nil
}
