// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/consts"
	"github.com/nomadconnection/cryptobears/keys"
	"github.com/nomadconnection/cryptobears/state"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

const (
	MaxDNALen = 64

	ledgerConfigLen = codec.AddressLen + codec.AmountLen + consts.Uint64Len
)

var (
	ledgerConfigChunks = keys.ChunksFor(ledgerConfigLen)
	tokenChunks        = keys.ChunksFor(codec.AddressLen + consts.Uint64Len + consts.IntLen + MaxDNALen)
	tokenIDChunks      = keys.ChunksFor(codec.TokenIDLen)
)

// LedgerConfig is the per-ledger configuration fixed at install time. The
// minter may be set once afterwards.
type LedgerConfig struct {
	Minter    codec.Address
	MealPrice codec.Amount
	MaxLevel  uint64
}

// Token is the record of a single minted creature.
type Token struct {
	Owner codec.Address
	Level uint64
	DNA   []byte
}

func LedgerConfigKey(ledger codec.Address) []byte {
	return makeKey(ledgerConfigPrefix, ledgerConfigChunks, ledger[:])
}

func GetLedgerConfig(ctx context.Context, im state.Immutable, ledger codec.Address) (*LedgerConfig, bool, error) {
	v, err := im.GetValue(ctx, LedgerConfigKey(ledger))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	p := codec.NewReader(v, len(v))
	cfg := &LedgerConfig{}
	p.UnpackAddress(&cfg.Minter)
	p.UnpackAmount(&cfg.MealPrice)
	cfg.MaxLevel = p.UnpackUint64(false)
	if err := p.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: ledger config %s: %w", ErrCorruptRecord, ledger, err)
	}
	return cfg, true, nil
}

func SetLedgerConfig(ctx context.Context, mu state.Mutable, ledger codec.Address, cfg *LedgerConfig) error {
	p := codec.NewWriter(ledgerConfigLen, ledgerConfigLen)
	p.PackAddress(cfg.Minter)
	p.PackAmount(cfg.MealPrice)
	p.PackUint64(cfg.MaxLevel)
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, LedgerConfigKey(ledger), p.Bytes())
}

func SupplyKey(ledger codec.Address) []byte {
	return makeKey(supplyPrefix, Uint64Chunks, ledger[:])
}

// GetSupply returns the number of tokens ever minted by [ledger].
func GetSupply(ctx context.Context, im state.Immutable, ledger codec.Address) (uint64, error) {
	s, _, err := getUint64(ctx, im, SupplyKey(ledger))
	return s, err
}

func SetSupply(ctx context.Context, mu state.Mutable, ledger codec.Address, supply uint64) error {
	return setUint64(ctx, mu, SupplyKey(ledger), supply)
}

func TokenKey(ledger codec.Address, id codec.TokenID) []byte {
	return makeKey(tokenPrefix, tokenChunks, ledger[:], id[:])
}

func GetToken(ctx context.Context, im state.Immutable, ledger codec.Address, id codec.TokenID) (*Token, bool, error) {
	v, err := im.GetValue(ctx, TokenKey(ledger, id))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	p := codec.NewReader(v, len(v))
	t := &Token{}
	p.UnpackAddress(&t.Owner)
	t.Level = p.UnpackUint64(false)
	p.UnpackBytes(MaxDNALen, false, &t.DNA)
	if err := p.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: token %s: %w", ErrCorruptRecord, id, err)
	}
	return t, true, nil
}

func SetToken(ctx context.Context, mu state.Mutable, ledger codec.Address, id codec.TokenID, t *Token) error {
	if len(t.DNA) > MaxDNALen {
		return fmt.Errorf("%w: %d > %d", ErrDNATooLarge, len(t.DNA), MaxDNALen)
	}
	p := codec.NewWriter(codec.AddressLen+consts.Uint64Len+codec.BytesLen(t.DNA), consts.NetworkSizeLimit)
	p.PackAddress(t.Owner)
	p.PackUint64(t.Level)
	p.PackBytes(t.DNA)
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, TokenKey(ledger, id), p.Bytes())
}

// [ownedCountPrefix] + [ledger] + [owner]
func OwnedCountKey(ledger, owner codec.Address) []byte {
	return makeKey(ownedCountPrefix, Uint64Chunks, ledger[:], owner[:])
}

// GetOwnedCount returns the length of the ownership index of [owner].
func GetOwnedCount(ctx context.Context, im state.Immutable, ledger, owner codec.Address) (uint64, error) {
	c, _, err := getUint64(ctx, im, OwnedCountKey(ledger, owner))
	return c, err
}

// [ownedPrefix] + [ledger] + [owner] + [index]
func OwnedKey(ledger, owner codec.Address, index uint64) []byte {
	return makeKey(ownedPrefix, tokenIDChunks, ledger[:], owner[:], binary.BigEndian.AppendUint64(nil, index))
}

func GetOwnedToken(ctx context.Context, im state.Immutable, ledger, owner codec.Address, index uint64) (codec.TokenID, bool, error) {
	v, err := im.GetValue(ctx, OwnedKey(ledger, owner, index))
	if errors.Is(err, database.ErrNotFound) {
		return codec.EmptyTokenID, false, nil
	}
	if err != nil {
		return codec.EmptyTokenID, false, err
	}
	if len(v) != codec.TokenIDLen {
		return codec.EmptyTokenID, false, fmt.Errorf("%w: owned entry %d of %s", ErrCorruptRecord, index, owner)
	}
	return codec.TokenID(v), true, nil
}

// AppendOwned appends [id] to the ownership index of [owner] and returns the
// new index length. The entry and the count are written together.
func AppendOwned(ctx context.Context, mu state.Mutable, ledger, owner codec.Address, id codec.TokenID) (uint64, error) {
	count, err := GetOwnedCount(ctx, mu, ledger, owner)
	if err != nil {
		return 0, err
	}
	next, err := smath.Add64(count, 1)
	if err != nil {
		return 0, err
	}
	if err := mu.Insert(ctx, OwnedKey(ledger, owner, count), id[:]); err != nil {
		return 0, err
	}
	return next, setUint64(ctx, mu, OwnedCountKey(ledger, owner), next)
}
