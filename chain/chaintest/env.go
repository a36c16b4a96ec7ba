// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/storage"
	"github.com/nomadconnection/cryptobears/tstate"
)

// Account returns a deterministic EOA for tests.
func Account(i byte) codec.Address {
	return codec.CreateAddress(codec.EOAType, [codec.AddressIDLen]byte{0xac, i})
}

// Env executes transactions against an in-memory database with the given
// contracts registered.
type Env struct {
	T         *testing.T
	Ctx       context.Context
	State     *tstate.TState
	Processor *chain.Processor
	Height    uint64
	Timestamp uint64

	nonce uint64
}

func NewEnv(t *testing.T, contracts map[string]chain.Contract) *Env {
	r := chain.NewRegistry()
	for id, c := range contracts {
		require.NoError(t, r.Register(id, c))
	}
	return &Env{
		T:         t,
		Ctx:       context.Background(),
		State:     tstate.New(state.NewReader(memdb.New())),
		Processor: chain.NewProcessor(logging.NoLog{}, r, 0),
		Timestamp: 1_700_000_000_000_000,
	}
}

func (e *Env) Fund(addr codec.Address, amount codec.Amount) {
	_, err := storage.AddBalance(e.Ctx, e.State, addr, amount)
	require.NoError(e.T, err)
}

func (e *Env) Balance(addr codec.Address) codec.Amount {
	bal, err := storage.GetBalance(e.Ctx, e.State, addr)
	require.NoError(e.T, err)
	return bal
}

// Execute runs [tx] at the next height with a fresh nonce.
func (e *Env) Execute(tx *chain.Transaction) *chain.Result {
	e.Height++
	e.Timestamp++
	e.nonce++
	tx.Nonce = codec.Uint(e.nonce)
	tx.Timestamp = codec.Uint(e.Timestamp)
	res, err := e.Processor.Execute(e.Ctx, e.State, tx, e.Height, e.Timestamp)
	require.NoError(e.T, err)
	return res
}

func (e *Env) Deploy(from codec.Address, codeID string, params chain.Params) *chain.Result {
	return e.Update(from, codec.InstallAddress, codeID, params)
}

// Update redeploys at [to]. An empty [codeID] keeps the current code.
func (e *Env) Update(from, to codec.Address, codeID string, params chain.Params) *chain.Result {
	return e.Execute(&chain.Transaction{
		From:     from,
		To:       to,
		DataType: chain.DataTypeDeploy,
		Data: &chain.Data{
			ContentType: chain.ContentTypeCode,
			Content:     codeID,
			Params:      params,
		},
	})
}

func (e *Env) MustDeploy(from codec.Address, codeID string, params chain.Params) codec.Address {
	res := e.Deploy(from, codeID, params)
	require.True(e.T, res.Success(), "deploy %s failed: %+v", codeID, res.Failure)
	require.NotNil(e.T, res.ScoreAddress)
	return *res.ScoreAddress
}

func (e *Env) Call(from, to codec.Address, method string, params chain.Params, value codec.Amount) *chain.Result {
	return e.Execute(&chain.Transaction{
		From:     from,
		To:       to,
		Value:    value,
		DataType: chain.DataTypeCall,
		Data:     &chain.Data{Method: method, Params: params},
	})
}

func (e *Env) MustCall(from, to codec.Address, method string, params chain.Params, value codec.Amount) *chain.Result {
	res := e.Call(from, to, method, params, value)
	require.True(e.T, res.Success(), "%s failed: %+v", method, res.Failure)
	return res
}

func (e *Env) Query(to codec.Address, method string, params chain.Params) (string, error) {
	return e.Processor.Query(e.Ctx, e.State, codec.EmptyAddress, to, method, params, e.Height)
}

func (e *Env) MustQuery(to codec.Address, method string, params chain.Params) string {
	out, err := e.Query(to, method, params)
	require.NoError(e.T, err)
	return out
}

// CallTest is a single parameterized call. It executes the call as a
// transaction and checks the outcome. Tests sharing an [Env] run in order.
type CallTest struct {
	Name string

	From   codec.Address
	To     codec.Address
	Method string
	Params chain.Params
	Value  codec.Amount

	ExpectedOutput string
	// ExpectedCode is the failure code, or 0 if the call must succeed.
	ExpectedCode int

	Assertion func(context.Context, *testing.T, *Env, *chain.Result)
}

// Run executes the [CallTest] and make sure all assertions pass.
func (test *CallTest) Run(e *Env) {
	e.T.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		res := e.Call(test.From, test.To, test.Method, test.Params, test.Value)
		if test.ExpectedCode == 0 {
			require.True(res.Success(), "%+v", res.Failure)
			require.Equal(test.ExpectedOutput, res.Output)
		} else {
			require.False(res.Success())
			require.Equal(codec.Uint(test.ExpectedCode), res.Failure.Code, res.Failure.Message)
			require.Empty(res.EventLogs)
		}

		if test.Assertion != nil {
			test.Assertion(e.Ctx, t, e, res)
		}
	})
}
