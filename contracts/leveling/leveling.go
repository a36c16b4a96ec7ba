// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package leveling

import (
	"context"
	"fmt"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/contracts"
	"github.com/nomadconnection/cryptobears/contracts/guard"
	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// Level returns the level of [id] on [ledger].
func Level(ctx context.Context, im state.Immutable, ledger codec.Address, id codec.TokenID) (uint64, error) {
	token, ok, err := storage.GetToken(ctx, im, ledger, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: token %s", contracts.ErrNotFound, id)
	}
	return token.Level, nil
}

// Feed raises the level of [id] by one when [caller] owns it and [payment]
// covers the meal price of [ledger]. It returns the new level.
func Feed(
	ctx context.Context,
	mu state.Mutable,
	ledger codec.Address,
	caller codec.Address,
	id codec.TokenID,
	payment codec.Amount,
) (uint64, error) {
	token, err := guard.RequireOwner(ctx, mu, ledger, caller, id)
	if err != nil {
		return 0, err
	}
	cfg, ok, err := storage.GetLedgerConfig(ctx, mu, ledger)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: ledger %s", contracts.ErrNotFound, ledger)
	}
	if payment.Lt(cfg.MealPrice) {
		return 0, fmt.Errorf("%w: paid %s, meal costs %s", contracts.ErrInsufficientPayment, payment, cfg.MealPrice)
	}
	if cfg.MaxLevel > 0 && token.Level >= cfg.MaxLevel {
		return 0, fmt.Errorf("%w: %s is at level %d", contracts.ErrLevelCapped, id, token.Level)
	}
	next, err := smath.Add64(token.Level, 1)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", contracts.ErrLevelCapped, err)
	}
	token.Level = next
	if err := storage.SetToken(ctx, mu, ledger, id, token); err != nil {
		return 0, err
	}
	return next, nil
}
