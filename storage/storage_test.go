// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/consts"
	"github.com/nomadconnection/cryptobears/keys"
	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/tstate"
)

var (
	alice  = codec.CreateAddress(codec.EOAType, [codec.AddressIDLen]byte{1})
	bob    = codec.CreateAddress(codec.EOAType, [codec.AddressIDLen]byte{2})
	ledger = codec.CreateAddress(codec.ContractType, [codec.AddressIDLen]byte{3})
)

func newState() *tstate.TState {
	return tstate.New(state.NewReader(memdb.New()))
}

func TestKeysCarryChunks(t *testing.T) {
	require := require.New(t)

	for _, k := range [][]byte{
		HeightKey(),
		GenesisKey(),
		BalanceKey(alice),
		ContractKey(ledger),
		ResultKey(ids.GenerateTestID()),
		LedgerConfigKey(ledger),
		SupplyKey(ledger),
		TokenKey(ledger, codec.TokenID{1}),
		OwnedCountKey(ledger, alice),
		OwnedKey(ledger, alice, 7),
		FactoryConfigKey(ledger),
		FactoryNonceKey(ledger),
	} {
		chunks, ok := keys.MaxChunks(k)
		require.True(ok)
		require.Positive(chunks)
	}
	require.NotEqual(OwnedKey(ledger, alice, 0), OwnedKey(ledger, bob, 0))
	require.NotEqual(OwnedCountKey(ledger, alice), OwnedCountKey(alice, ledger))
}

func TestHeightAndGenesis(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ts := newState()

	h, err := GetHeight(ctx, ts)
	require.NoError(err)
	require.Zero(h)
	require.NoError(SetHeight(ctx, ts, 12))
	h, err = GetHeight(ctx, ts)
	require.NoError(err)
	require.Equal(uint64(12), h)

	done, err := HasGenesis(ctx, ts)
	require.NoError(err)
	require.False(done)
	require.NoError(SetGenesis(ctx, ts))
	done, err = HasGenesis(ctx, ts)
	require.NoError(err)
	require.True(done)
}

func TestBalance(t *testing.T) {
	tests := []struct {
		name      string
		start     codec.Amount
		transfer  codec.Amount
		wantErr   error
		wantAlice codec.Amount
		wantBob   codec.Amount
	}{
		{
			name: "no-op",
		},
		{
			name:      "partial",
			start:     codec.ICX(3),
			transfer:  codec.ICX(1),
			wantAlice: codec.ICX(2),
			wantBob:   codec.ICX(1),
		},
		{
			name:      "everything",
			start:     codec.ICX(1),
			transfer:  codec.ICX(1),
			wantBob:   codec.ICX(1),
		},
		{
			name:      "out of balance",
			start:     codec.NewAmount(consts.ICX - 1),
			transfer:  codec.ICX(1),
			wantErr:   ErrInsufficientBalance,
			wantAlice: codec.NewAmount(consts.ICX - 1),
		},
		{
			name:      "past 64 bits",
			start:     codec.ICX(1_000),
			transfer:  codec.ICX(19),
			wantAlice: codec.ICX(981),
			wantBob:   codec.ICX(19),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()
			ts := newState()

			require.NoError(SetBalance(ctx, ts, alice, tt.start))
			err := Transfer(ctx, ts, alice, bob, tt.transfer)
			require.ErrorIs(err, tt.wantErr)

			bal, err := GetBalance(ctx, ts, alice)
			require.NoError(err)
			require.Equal(tt.wantAlice, bal)
			bal, err = GetBalance(ctx, ts, bob)
			require.NoError(err)
			require.Equal(tt.wantBob, bal)
		})
	}
}

func TestAddBalanceOverflow(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ts := newState()

	top, err := codec.ParseAmount("0x" + strings.Repeat("f", 2*codec.AmountLen))
	require.NoError(err)
	require.NoError(SetBalance(ctx, ts, alice, top))
	_, err = AddBalance(ctx, ts, alice, codec.NewAmount(1))
	require.ErrorIs(err, ErrInvalidBalance)

	bal, err := GetBalance(ctx, ts, alice)
	require.NoError(err)
	require.Equal(top, bal)
}

func TestContractAndResult(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ts := newState()

	_, ok, err := GetContract(ctx, ts, ledger)
	require.NoError(err)
	require.False(ok)

	want := &Contract{CodeID: "cryptobears", Deployer: alice, TxID: ids.GenerateTestID(), Height: 4}
	require.NoError(SetContract(ctx, ts, ledger, want))
	got, ok, err := GetContract(ctx, ts, ledger)
	require.NoError(err)
	require.True(ok)
	require.Equal(want, got)

	txID := ids.GenerateTestID()
	_, ok, err = GetResult(ctx, ts, txID)
	require.NoError(err)
	require.False(ok)
	require.NoError(SetResult(ctx, ts, txID, []byte("result")))
	res, ok, err := GetResult(ctx, ts, txID)
	require.NoError(err)
	require.True(ok)
	require.Equal([]byte("result"), res)
}

func TestLedgerRecords(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ts := newState()

	cfg := &LedgerConfig{Minter: bob, MealPrice: codec.ICX(1), MaxLevel: 10}
	require.NoError(SetLedgerConfig(ctx, ts, ledger, cfg))
	gotCfg, ok, err := GetLedgerConfig(ctx, ts, ledger)
	require.NoError(err)
	require.True(ok)
	require.Equal(cfg, gotCfg)

	id := codec.TokenID{9}
	token := &Token{Owner: alice, Level: 2, DNA: []byte{0xbe, 0xa5}}
	require.NoError(SetToken(ctx, ts, ledger, id, token))
	gotToken, ok, err := GetToken(ctx, ts, ledger, id)
	require.NoError(err)
	require.True(ok)
	require.Equal(token, gotToken)

	_, ok, err = GetToken(ctx, ts, ledger, codec.TokenID{8})
	require.NoError(err)
	require.False(ok)

	err = SetToken(ctx, ts, ledger, id, &Token{Owner: alice, DNA: make([]byte, MaxDNALen+1)})
	require.ErrorIs(err, ErrDNATooLarge)
}

func TestOwnershipIndex(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ts := newState()

	count, err := GetOwnedCount(ctx, ts, ledger, alice)
	require.NoError(err)
	require.Zero(count)

	first, second := codec.TokenID{1}, codec.TokenID{2}
	count, err = AppendOwned(ctx, ts, ledger, alice, first)
	require.NoError(err)
	require.Equal(uint64(1), count)
	count, err = AppendOwned(ctx, ts, ledger, alice, second)
	require.NoError(err)
	require.Equal(uint64(2), count)

	got, ok, err := GetOwnedToken(ctx, ts, ledger, alice, 1)
	require.NoError(err)
	require.True(ok)
	require.Equal(second, got)

	_, ok, err = GetOwnedToken(ctx, ts, ledger, alice, 2)
	require.NoError(err)
	require.False(ok)

	count, err = GetOwnedCount(ctx, ts, ledger, bob)
	require.NoError(err)
	require.Zero(count)
}

func TestFactoryRecords(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ts := newState()
	factory := codec.CreateAddress(codec.ContractType, [codec.AddressIDLen]byte{4})

	cfg := &FactoryConfig{Ledger: ledger, MintPrice: codec.ICX(2)}
	require.NoError(SetFactoryConfig(ctx, ts, factory, cfg))
	got, ok, err := GetFactoryConfig(ctx, ts, factory)
	require.NoError(err)
	require.True(ok)
	require.Equal(cfg, got)

	for i := uint64(0); i < 3; i++ {
		n, err := NextFactoryNonce(ctx, ts, factory)
		require.NoError(err)
		require.Equal(i, n)
	}
}
