// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package guard holds the authorization predicates shared by the contracts.
package guard

import (
	"context"
	"fmt"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/contracts"
	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/storage"
)

// IsRegisteredMinter reports whether [caller] is the minter registered on
// [ledger]. No address is the minter of a ledger without one.
func IsRegisteredMinter(ctx context.Context, im state.Immutable, ledger, caller codec.Address) (bool, error) {
	cfg, ok, err := storage.GetLedgerConfig(ctx, im, ledger)
	if err != nil || !ok {
		return false, err
	}
	return !cfg.Minter.Empty() && cfg.Minter == caller, nil
}

// IsOwner reports whether [caller] owns [id] on [ledger]. A missing token is
// owned by nobody.
func IsOwner(ctx context.Context, im state.Immutable, ledger, caller codec.Address, id codec.TokenID) (bool, error) {
	_, owned, err := ownership(ctx, im, ledger, caller, id)
	return owned, err
}

// ownership returns the record of [id], nil when it was never minted.
func ownership(ctx context.Context, im state.Immutable, ledger, caller codec.Address, id codec.TokenID) (*storage.Token, bool, error) {
	token, ok, err := storage.GetToken(ctx, im, ledger, id)
	if err != nil || !ok {
		return nil, false, err
	}
	return token, token.Owner == caller, nil
}

// IsDeployer reports whether [addr] deployed [contract].
func IsDeployer(ctx context.Context, im state.Immutable, contract, addr codec.Address) (bool, error) {
	record, ok, err := storage.GetContract(ctx, im, contract)
	if err != nil || !ok {
		return false, err
	}
	return record.Deployer == addr, nil
}

func RequireMinter(ctx context.Context, im state.Immutable, ledger, caller codec.Address) error {
	ok, err := IsRegisteredMinter(ctx, im, ledger, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s is not the minter of %s", contracts.ErrUnauthorized, caller, ledger)
	}
	return nil
}

// RequireOwner returns the token record when [caller] owns [id].
func RequireOwner(ctx context.Context, im state.Immutable, ledger, caller codec.Address, id codec.TokenID) (*storage.Token, error) {
	token, owned, err := ownership(ctx, im, ledger, caller, id)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: token %s", contracts.ErrNotFound, id)
	}
	if !owned {
		return nil, fmt.Errorf("%w: %s does not own %s", contracts.ErrUnauthorized, caller, id)
	}
	return token, nil
}

func RequireDeployer(ctx context.Context, im state.Immutable, contract, addr codec.Address) error {
	ok, err := IsDeployer(ctx, im, contract, addr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s did not deploy %s", contracts.ErrUnauthorized, addr, contract)
	}
	return nil
}
