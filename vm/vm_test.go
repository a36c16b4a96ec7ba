// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/chain/chaintest"
	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/contracts"
	"github.com/nomadconnection/cryptobears/genesis"
)

var (
	deployer = chaintest.Account(1)
	alice    = chaintest.Account(2)
)

func newTestVM(t *testing.T) *VM {
	require := require.New(t)

	vm, err := New(logging.NoLog{}, memdb.New(), NewConfig())
	require.NoError(err)
	vm.Clock.Set(time.Unix(1_700_000_000, 0))
	require.NoError(vm.Initialize(context.Background(), genesis.NewDefaultGenesis([]*genesis.CustomAllocation{
		{Address: deployer.String(), Balance: codec.ICX(10)},
		{Address: alice.String(), Balance: codec.ICX(10)},
	})))
	return vm
}

func deployTx(from codec.Address, codeID string, params chain.Params, nonce uint64) *chain.Transaction {
	return &chain.Transaction{
		From:     from,
		To:       codec.InstallAddress,
		Nonce:    codec.Uint(nonce),
		DataType: chain.DataTypeDeploy,
		Data: &chain.Data{
			ContentType: chain.ContentTypeCode,
			Content:     codeID,
			Params:      params,
		},
	}
}

func callTx(from, to codec.Address, method string, params chain.Params, value codec.Amount, nonce uint64) *chain.Transaction {
	return &chain.Transaction{
		From:     from,
		To:       to,
		Value:    value,
		Nonce:    codec.Uint(nonce),
		DataType: chain.DataTypeCall,
		Data:     &chain.Data{Method: method, Params: params},
	}
}

func TestInitialize(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := memdb.New()
	g := genesis.NewDefaultGenesis([]*genesis.CustomAllocation{
		{Address: alice.String(), Balance: codec.ICX(1)},
	})

	vm, err := New(logging.NoLog{}, db, NewConfig())
	require.NoError(err)
	_, err = vm.GetBalance(ctx, alice)
	require.ErrorIs(err, ErrNotReady)

	require.NoError(vm.Initialize(ctx, g))
	bal, err := vm.GetBalance(ctx, alice)
	require.NoError(err)
	require.Equal(codec.ICX(1), bal)

	// Genesis is applied once per database.
	vm2, err := New(logging.NoLog{}, db, NewConfig())
	require.NoError(err)
	require.NoError(vm2.Initialize(ctx, g))
	bal, err = vm2.GetBalance(ctx, alice)
	require.NoError(err)
	require.Equal(codec.ICX(1), bal)
}

func TestSubmitFlow(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	vm := newTestVM(t)

	results, cancel := vm.Subscribe()
	defer cancel()

	res, err := vm.Submit(ctx, deployTx(deployer, contracts.LedgerCode, nil, 1))
	require.NoError(err)
	require.True(res.Success(), "%+v", res.Failure)
	require.Equal(uint64(1), vm.Height())
	require.Equal(codec.Uint(1), res.Height)
	require.Equal(codec.Uint(time.Unix(1_700_000_000, 0).UnixMicro()), res.Timestamp)
	ledgerAddr := *res.ScoreAddress
	require.Equal(res, <-results)

	res, err = vm.Submit(ctx, deployTx(deployer, contracts.FactoryCode, chain.Params{"_score": ledgerAddr.String()}, 2))
	require.NoError(err)
	require.True(res.Success(), "%+v", res.Failure)
	factoryAddr := *res.ScoreAddress
	<-results

	res, err = vm.Submit(ctx, callTx(alice, factoryAddr, "createCryptoBear", nil, codec.ICX(1), 3))
	require.NoError(err)
	require.True(res.Success(), "%+v", res.Failure)
	require.Len(res.EventLogs, 1)
	<-results

	out, err := vm.Call(ctx, codec.EmptyAddress, ledgerAddr, "balanceOf", chain.Params{"_owner": alice.String()})
	require.NoError(err)
	require.Equal("0x1", out)

	res, err = vm.Submit(ctx, callTx(alice, ledgerAddr, "happyMeal", chain.Params{"_index": "0x0"}, codec.ICX(1), 4))
	require.NoError(err)
	require.True(res.Success(), "%+v", res.Failure)
	<-results

	bal, err := vm.GetBalance(ctx, alice)
	require.NoError(err)
	require.Equal(codec.ICX(8), bal)

	methods, err := vm.Methods(ctx, ledgerAddr)
	require.NoError(err)
	require.NotEmpty(methods)

	stored, err := vm.GetTransactionResult(ctx, ids.ID(res.TxHash))
	require.NoError(err)
	require.Equal(res.TxHash, stored.TxHash)
}

func TestSubmitFailureIsCommitted(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	vm := newTestVM(t)

	res, err := vm.Submit(ctx, deployTx(deployer, contracts.LedgerCode, nil, 1))
	require.NoError(err)
	ledgerAddr := *res.ScoreAddress

	// Direct mint from an account is refused but still recorded.
	res, err = vm.Submit(ctx, callTx(alice, ledgerAddr, "createCryptoBear", chain.Params{
		"_bearDNA": "0x01",
		"_address": alice.String(),
	}, codec.Amount{}, 2))
	require.NoError(err)
	require.False(res.Success())
	require.Equal(uint64(2), vm.Height())

	// Drop the cache to read from storage.
	vm.results.Flush()
	stored, err := vm.GetTransactionResult(ctx, ids.ID(res.TxHash))
	require.NoError(err)
	require.Equal(chain.StatusFailure, stored.Status)
	require.Equal(res.Failure.Code, stored.Failure.Code)
}

func TestSubmitRejected(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	vm := newTestVM(t)

	tx := callTx(deployer, alice, "", nil, codec.ICX(1), 1)
	tx.DataType = ""
	tx.Data = nil
	_, err := vm.Submit(ctx, tx)
	require.NoError(err)

	// Replaying the same tx does not execute twice.
	_, err = vm.Submit(ctx, tx)
	require.ErrorIs(err, chain.ErrDuplicateTx)
	require.Equal(uint64(1), vm.Height())

	// Malformed txs leave no trace.
	_, err = vm.Submit(ctx, callTx(deployer, alice, "name", nil, codec.Amount{}, 2))
	require.ErrorIs(err, chain.ErrIllegalFormat)
	require.Equal(uint64(1), vm.Height())

	_, err = vm.GetTransactionResult(ctx, ids.GenerateTestID())
	require.ErrorIs(err, ErrTxNotFound)
}

func TestShutdown(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	vm := newTestVM(t)

	results, _ := vm.Subscribe()
	require.NoError(vm.Shutdown(ctx))
	_, ok := <-results
	require.False(ok)

	_, err := vm.Submit(ctx, deployTx(deployer, contracts.LedgerCode, nil, 1))
	require.ErrorIs(err, ErrShutdown)
	require.NoError(vm.Shutdown(ctx))

	late, _ := vm.Subscribe()
	_, ok = <-late
	require.False(ok)
}

func TestSlowSubscriberDropped(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	cfg := NewConfig()
	cfg.SubscriberBuffer = 1
	vm, err := New(logging.NoLog{}, memdb.New(), cfg)
	require.NoError(err)
	require.NoError(vm.Initialize(ctx, genesis.NewDefaultGenesis([]*genesis.CustomAllocation{
		{Address: deployer.String(), Balance: codec.ICX(1)},
	})))

	results, cancel := vm.Subscribe()
	for i := uint64(0); i < 2; i++ {
		tx := &chain.Transaction{From: deployer, To: alice, Value: codec.NewAmount(1), Nonce: codec.Uint(i)}
		_, err := vm.Submit(ctx, tx)
		require.NoError(err)
	}
	_, ok := <-results
	require.True(ok)
	_, ok = <-results
	require.False(ok)
	cancel()
}

func TestConcurrentSubmitsPublishInOrder(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	vm := newTestVM(t)

	const submits = 64
	results, cancel := vm.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, submits)
	for i := uint64(0); i < submits; i++ {
		wg.Add(1)
		go func(nonce uint64) {
			defer wg.Done()
			tx := &chain.Transaction{From: deployer, To: alice, Value: codec.NewAmount(1), Nonce: codec.Uint(nonce)}
			_, err := vm.Submit(ctx, tx)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(err)
	}

	for height := uint64(1); height <= submits; height++ {
		res := <-results
		require.Equal(codec.Uint(height), res.Height)
	}
}
