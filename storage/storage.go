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
)

// State
// 0x0/ (height)
// 0x1/ (genesis marker)
// 0x2/ (balance)
//   -> [owner] => balance
// 0x3/ (contract)
//   -> [address] => codeID|deployer|txID|height
// 0x4/ (result)
//   -> [txID] => packed result
// 0x5/ (ledger config)
//   -> [ledger] => minter|mealPrice|maxLevel
// 0x6/ (supply)
//   -> [ledger] => minted
// 0x7/ (token)
//   -> [ledger|tokenID] => owner|level|dna
// 0x8/ (owned count)
//   -> [ledger|owner] => count
// 0x9/ (owned)
//   -> [ledger|owner|index] => tokenID
// 0xa/ (factory config)
//   -> [factory] => ledger|mintPrice
// 0xb/ (factory nonce)
//   -> [factory] => nonce

const (
	heightPrefix byte = iota
	genesisPrefix
	balancePrefix
	contractPrefix
	resultPrefix
	ledgerConfigPrefix
	supplyPrefix
	tokenPrefix
	ownedCountPrefix
	ownedPrefix
	factoryConfigPrefix
	factoryNoncePrefix
)

var (
	Uint64Chunks  = keys.ChunksFor(consts.Uint64Len)
	balanceChunks = keys.ChunksFor(codec.AmountLen)
)

// makeKey joins [prefix], [parts] and the chunk suffix.
func makeKey(prefix byte, chunks uint16, parts ...[]byte) []byte {
	size := consts.ByteLen + consts.Uint16Len
	for _, p := range parts {
		size += len(p)
	}
	k := make([]byte, 0, size)
	k = append(k, prefix)
	for _, p := range parts {
		k = append(k, p...)
	}
	return keys.EncodeChunks(k, chunks)
}

func getUint64(ctx context.Context, im state.Immutable, key []byte) (uint64, bool, error) {
	v, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	val, err := database.ParseUInt64(v)
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

func setUint64(ctx context.Context, mu state.Mutable, key []byte, val uint64) error {
	return mu.Insert(ctx, key, binary.BigEndian.AppendUint64(nil, val))
}

func HeightKey() []byte {
	return makeKey(heightPrefix, Uint64Chunks)
}

// GetHeight returns the number of transactions executed so far.
func GetHeight(ctx context.Context, im state.Immutable) (uint64, error) {
	h, _, err := getUint64(ctx, im, HeightKey())
	return h, err
}

func SetHeight(ctx context.Context, mu state.Mutable, height uint64) error {
	return setUint64(ctx, mu, HeightKey(), height)
}

func GenesisKey() []byte {
	return makeKey(genesisPrefix, 1)
}

func HasGenesis(ctx context.Context, im state.Immutable) (bool, error) {
	_, err := im.GetValue(ctx, GenesisKey())
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func SetGenesis(ctx context.Context, mu state.Mutable) error {
	return mu.Insert(ctx, GenesisKey(), []byte{1})
}

// [balancePrefix] + [address]
func BalanceKey(addr codec.Address) []byte {
	return makeKey(balancePrefix, balanceChunks, addr[:])
}

// GetBalance returns 0 for accounts that never held value.
func GetBalance(ctx context.Context, im state.Immutable, addr codec.Address) (codec.Amount, error) {
	v, err := im.GetValue(ctx, BalanceKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return codec.Amount{}, nil
	}
	if err != nil {
		return codec.Amount{}, err
	}
	if len(v) != codec.AmountLen {
		return codec.Amount{}, fmt.Errorf("%w: balance %s", ErrCorruptRecord, addr)
	}
	return codec.AmountFromBytes(v), nil
}

func SetBalance(ctx context.Context, mu state.Mutable, addr codec.Address, balance codec.Amount) error {
	k := BalanceKey(addr)
	if balance.IsZero() {
		return mu.Remove(ctx, k)
	}
	b := balance.Bytes()
	return mu.Insert(ctx, k, b[:])
}

func AddBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount codec.Amount) (codec.Amount, error) {
	bal, err := GetBalance(ctx, mu, addr)
	if err != nil {
		return codec.Amount{}, err
	}
	nbal, overflow := bal.Add(amount)
	if overflow {
		return codec.Amount{}, fmt.Errorf(
			"%w: could not add balance (bal=%s, addr=%s, amount=%s)",
			ErrInvalidBalance,
			bal,
			addr,
			amount,
		)
	}
	return nbal, SetBalance(ctx, mu, addr, nbal)
}

func SubBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount codec.Amount) (codec.Amount, error) {
	bal, err := GetBalance(ctx, mu, addr)
	if err != nil {
		return codec.Amount{}, err
	}
	nbal, underflow := bal.Sub(amount)
	if underflow {
		return codec.Amount{}, fmt.Errorf(
			"%w: could not subtract balance (bal=%s, addr=%s, amount=%s)",
			ErrInsufficientBalance,
			bal,
			addr,
			amount,
		)
	}
	return nbal, SetBalance(ctx, mu, addr, nbal)
}

// Transfer moves [amount] from [from] to [to]. A zero amount is a no-op.
func Transfer(ctx context.Context, mu state.Mutable, from, to codec.Address, amount codec.Amount) error {
	if amount.IsZero() {
		return nil
	}
	if _, err := SubBalance(ctx, mu, from, amount); err != nil {
		return err
	}
	_, err := AddBalance(ctx, mu, to, amount)
	return err
}
