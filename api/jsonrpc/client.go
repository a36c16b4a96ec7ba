// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"strings"

	"github.com/nomadconnection/cryptobears/api"
	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/requester"
)

type JSONRPCClient struct {
	requester *requester.EndpointRequester
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += Endpoint
	return &JSONRPCClient{requester: newRequester(uri)}
}

func newRequester(uri string) *requester.EndpointRequester {
	return requester.New(uri, api.Name)
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Height(ctx context.Context) (uint64, error) {
	resp := new(HeightReply)
	err := cli.requester.SendRequest(ctx,
		"height",
		nil,
		resp,
	)
	return uint64(resp.Height), err
}

// SendTransaction submits [tx] and returns its result.
func (cli *JSONRPCClient) SendTransaction(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	resp := new(SendTransactionReply)
	err := cli.requester.SendRequest(
		ctx,
		"sendTransaction",
		tx,
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (cli *JSONRPCClient) GetTransactionResult(ctx context.Context, txHash codec.Hash) (*chain.Result, error) {
	resp := new(chain.Result)
	err := cli.requester.SendRequest(
		ctx,
		"getTransactionResult",
		&TxHashArgs{TxHash: txHash},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Call runs a read-only method. [from] may be empty.
func (cli *JSONRPCClient) Call(
	ctx context.Context,
	from codec.Address,
	to codec.Address,
	method string,
	params chain.Params,
) (string, error) {
	resp := new(CallReply)
	err := cli.requester.SendRequest(
		ctx,
		"call",
		&CallArgs{From: from, To: to, Method: method, Params: params},
		resp,
	)
	return resp.Output, err
}

func (cli *JSONRPCClient) GetBalance(ctx context.Context, addr codec.Address) (codec.Amount, error) {
	resp := new(BalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"getBalance",
		&AddressArgs{Address: addr},
		resp,
	)
	return resp.Balance, err
}

func (cli *JSONRPCClient) GetScoreAPI(ctx context.Context, addr codec.Address) ([]*MethodAPI, error) {
	resp := new(ScoreAPIReply)
	err := cli.requester.SendRequest(
		ctx,
		"getScoreAPI",
		&AddressArgs{Address: addr},
		resp,
	)
	return resp.Methods, err
}
