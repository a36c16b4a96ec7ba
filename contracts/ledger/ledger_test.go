// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/chain/chaintest"
	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/consts"
	"github.com/nomadconnection/cryptobears/contracts"
)

const proxyCode = "proxy"

var (
	deployer = chaintest.Account(1)
	alice    = chaintest.Account(2)
	bob      = chaintest.Account(3)
)

// proxy registers itself as minter of [_score] on install and forwards
// mints to it.
type proxy struct{}

func (proxy) OnInstall(ctx context.Context, c *chain.CallContext, params chain.Params) error {
	if !params.Has("_score") {
		return nil
	}
	score, err := params.Address("_score")
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, score, "registerMinter", nil, codec.Amount{})
	return err
}

func (proxy) OnUpdate(context.Context, *chain.CallContext, chain.Params) error {
	return nil
}

func (proxy) Methods() []*chain.Method {
	return []*chain.Method{{
		Name:   "mint",
		Inputs: []chain.Input{{Name: "_score", Type: "Address"}, {Name: "_address", Type: "Address"}},
		Handler: func(ctx context.Context, c *chain.CallContext, params chain.Params) (any, error) {
			score, err := params.Address("_score")
			if err != nil {
				return nil, err
			}
			return c.Call(ctx, score, "createCryptoBear", chain.Params{
				"_bearDNA": "0x3132333435",
				"_address": params["_address"],
			}, codec.Amount{})
		},
	}}
}

func newEnv(t *testing.T) *chaintest.Env {
	e := chaintest.NewEnv(t, map[string]chain.Contract{
		contracts.LedgerCode: New(),
		proxyCode:            proxy{},
	})
	for _, a := range []codec.Address{deployer, alice, bob} {
		e.Fund(a, codec.ICX(10))
	}
	return e
}

// requireMeal checks the event and the payment of a successful happyMeal.
func requireMeal(ledger codec.Address, id codec.TokenID, level string, paid codec.Amount) func(context.Context, *testing.T, *chaintest.Env, *chain.Result) {
	return func(_ context.Context, t *testing.T, e *chaintest.Env, res *chain.Result) {
		require := require.New(t)
		require.Len(res.EventLogs, 1)
		require.Equal(ledger, res.EventLogs[0].ScoreAddress)
		require.Equal([]string{HappyMealEvent, id.String()}, res.EventLogs[0].Indexed)
		require.Equal([]string{level}, res.EventLogs[0].Data)
		require.Equal(paid, e.Balance(ledger))
	}
}

func TestTokenIDIsDeterministic(t *testing.T) {
	require := require.New(t)
	ledger := codec.CreateAddress(codec.ContractType, [codec.AddressIDLen]byte{1})
	other := codec.CreateAddress(codec.ContractType, [codec.AddressIDLen]byte{2})

	require.Equal(TokenID(ledger, 0), TokenID(ledger, 0))
	require.NotEqual(TokenID(ledger, 0), TokenID(ledger, 1))
	require.NotEqual(TokenID(ledger, 0), TokenID(other, 0))
	require.Len(TokenID(ledger, 0).String(), codec.TokenIDTextLen)
}

func TestMinterRegistration(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)
	ledger := e.MustDeploy(deployer, contracts.LedgerCode, nil)

	require.Equal(codec.EmptyAddress.String(), e.MustQuery(ledger, "getMinter", nil))
	require.Equal("CryptoBears", e.MustQuery(ledger, "name", nil))
	require.Equal("CBT", e.MustQuery(ledger, "symbol", nil))
	require.Equal("0xde0b6b3a7640000", e.MustQuery(ledger, "mealPrice", nil))

	// Only a contract may register.
	res := e.Call(deployer, ledger, "registerMinter", nil, codec.Amount{})
	require.False(res.Success())
	require.Equal(codec.Uint(chain.CodeAccessDenied), res.Failure.Code)

	// The deploy must be signed by the ledger deployer.
	res = e.Deploy(alice, proxyCode, chain.Params{"_score": ledger.String()})
	require.False(res.Success())
	require.Equal(codec.Uint(chain.CodeAccessDenied), res.Failure.Code)
	require.Equal(codec.EmptyAddress.String(), e.MustQuery(ledger, "getMinter", nil))

	minter := e.MustDeploy(deployer, proxyCode, chain.Params{"_score": ledger.String()})
	require.Equal(minter.String(), e.MustQuery(ledger, "getMinter", nil))

	// The minter never changes afterwards.
	res = e.Deploy(deployer, proxyCode, chain.Params{"_score": ledger.String()})
	require.False(res.Success())
	require.Equal(codec.Uint(chain.CodeAccessDenied), res.Failure.Code)
	require.Equal(minter.String(), e.MustQuery(ledger, "getMinter", nil))
}

func TestMinterInstallParam(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)
	minter := e.MustDeploy(deployer, proxyCode, nil)

	ledger := e.MustDeploy(deployer, contracts.LedgerCode, chain.Params{
		"_minter":    minter.String(),
		"_mealPrice": "0x2",
	})
	require.Equal(minter.String(), e.MustQuery(ledger, "getMinter", nil))
	require.Equal("0x2", e.MustQuery(ledger, "mealPrice", nil))

	pricey := e.MustDeploy(deployer, contracts.LedgerCode, chain.Params{"_mealPrice": codec.ICX(20).Dec()})
	require.Equal("0x1158e460913d00000", e.MustQuery(pricey, "mealPrice", nil))

	res := e.Deploy(deployer, contracts.LedgerCode, chain.Params{"_minter": alice.String()})
	require.False(res.Success())
	require.Equal(codec.Uint(chain.CodeInvalidParameter), res.Failure.Code)
}

func TestMintAndFeed(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)
	ledger := e.MustDeploy(deployer, contracts.LedgerCode, nil)
	minter := e.MustDeploy(deployer, proxyCode, chain.Params{"_score": ledger.String()})

	require.Equal("0x0", e.MustQuery(ledger, "balanceOf", chain.Params{"_owner": alice.String()}))

	direct := &chaintest.CallTest{
		Name:   "direct mint from account",
		From:   alice,
		To:     ledger,
		Method: "createCryptoBear",
		Params: chain.Params{
			"_bearDNA": "0x3132333435",
			"_address": alice.String(),
		},
		ExpectedCode: chain.CodeAccessDenied,
	}
	direct.Run(e)
	require.Equal("0x0", e.MustQuery(ledger, "totalSupply", nil))

	res := e.MustCall(alice, minter, "mint", chain.Params{"_score": ledger.String(), "_address": alice.String()}, codec.Amount{})
	id := TokenID(ledger, 0)
	require.Equal(id.String(), res.Output)
	require.Len(res.EventLogs, 1)
	require.Equal(ledger, res.EventLogs[0].ScoreAddress)
	require.Equal([]string{TransferEvent, codec.EmptyAddress.String(), alice.String(), id.String()}, res.EventLogs[0].Indexed)

	require.Equal("0x1", e.MustQuery(ledger, "balanceOf", chain.Params{"_owner": alice.String()}))
	require.Equal("0x1", e.MustQuery(ledger, "totalSupply", nil))
	require.Equal(id.String(), e.MustQuery(ledger, "getTokenId", chain.Params{"_address": alice.String(), "index": "0"}))
	require.Equal("0x0", e.MustQuery(ledger, "getBearLevel", chain.Params{"_tokenId": id.String()}))
	require.Equal("0x3132333435", e.MustQuery(ledger, "getBearDNA", chain.Params{"_tokenId": id.String()}))
	require.Equal(alice.String(), e.MustQuery(ledger, "ownerOf", chain.Params{"_tokenId": id.String()}))

	_, err := e.Query(ledger, "getTokenId", chain.Params{"_address": alice.String(), "index": "1"})
	require.ErrorIs(err, contracts.ErrOutOfRange)
	_, err = e.Query(ledger, "getBearLevel", chain.Params{"_tokenId": codec.TokenID{1}.String()})
	require.ErrorIs(err, contracts.ErrNotFound)

	tests := []*chaintest.CallTest{
		{
			Name:         "underpaid",
			From:         alice,
			To:           ledger,
			Method:       "happyMeal",
			Params:       chain.Params{"_index": "0"},
			Value:        codec.NewAmount(consts.ICX - 1),
			ExpectedCode: chain.CodeRevert + 3,
		},
		{
			Name:         "no token at index",
			From:         bob,
			To:           ledger,
			Method:       "happyMeal",
			Params:       chain.Params{"_index": "0"},
			Value:        codec.ICX(1),
			ExpectedCode: chain.CodeRevert + 2,
		},
		{
			Name:         "not the owner",
			From:         bob,
			To:           ledger,
			Method:       "happyMeal",
			Params:       chain.Params{"_tokenId": id.String()},
			Value:        codec.ICX(1),
			ExpectedCode: chain.CodeAccessDenied,
		},
		{
			Name:         "missing token",
			From:         alice,
			To:           ledger,
			Method:       "happyMeal",
			Params:       chain.Params{"_tokenId": codec.TokenID{1}.String()},
			Value:        codec.ICX(1),
			ExpectedCode: chain.CodeRevert + 1,
		},
		{
			Name:         "no selector",
			From:         alice,
			To:           ledger,
			Method:       "happyMeal",
			Value:        codec.ICX(1),
			ExpectedCode: chain.CodeInvalidParameter,
		},
		{
			Name:           "by index",
			From:           alice,
			To:             ledger,
			Method:         "happyMeal",
			Params:         chain.Params{"_index": "0"},
			Value:          codec.ICX(1),
			ExpectedOutput: "0x1",
			Assertion:      requireMeal(ledger, id, "0x1", codec.ICX(1)),
		},
		{
			Name:           "by token id",
			From:           alice,
			To:             ledger,
			Method:         "happyMeal",
			Params:         chain.Params{"_tokenId": id.String()},
			Value:          codec.ICX(1),
			ExpectedOutput: "0x2",
			Assertion:      requireMeal(ledger, id, "0x2", codec.ICX(2)),
		},
	}
	for _, tt := range tests {
		tt.Run(e)
	}
	require.Equal("0x2", e.MustQuery(ledger, "getBearLevel", chain.Params{"_tokenId": id.String()}))
	require.Equal(codec.ICX(8), e.Balance(alice))
	require.Equal(codec.ICX(10), e.Balance(bob))
	require.Equal(codec.ICX(2), e.Balance(ledger))
}

func TestLevelCapAndUpdate(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)
	ledger := e.MustDeploy(deployer, contracts.LedgerCode, chain.Params{"_maxLevel": "1"})
	minter := e.MustDeploy(deployer, proxyCode, chain.Params{"_score": ledger.String()})
	e.MustCall(alice, minter, "mint", chain.Params{"_score": ledger.String(), "_address": alice.String()}, codec.Amount{})

	e.MustCall(alice, ledger, "happyMeal", chain.Params{"_index": "0"}, codec.ICX(1))
	res := e.Call(alice, ledger, "happyMeal", chain.Params{"_index": "0"}, codec.ICX(1))
	require.False(res.Success())
	require.Equal(codec.Uint(chain.CodeRevert+4), res.Failure.Code)

	res = e.Update(alice, ledger, "", chain.Params{"_maxLevel": "0"})
	require.False(res.Success())
	require.Equal(codec.Uint(chain.CodeAccessDenied), res.Failure.Code)

	res = e.Update(deployer, ledger, "", chain.Params{"_maxLevel": "0"})
	require.True(res.Success(), res.Failure)
	require.Equal(ledger, *res.ScoreAddress)

	// Tokens and the minter survive the update.
	require.Equal(minter.String(), e.MustQuery(ledger, "getMinter", nil))
	require.Equal("0x1", e.MustQuery(ledger, "balanceOf", chain.Params{"_owner": alice.String()}))
	res = e.MustCall(alice, ledger, "happyMeal", chain.Params{"_index": "0"}, codec.ICX(1))
	require.Equal("0x2", res.Output)
}
