// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/rpc/v2"

	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/codec"
)

//go:generate go run go.uber.org/mock/mockgen -package=api -destination=mock_vm.go . VM

const Name = "bears"

// VM is the runtime surface that API handlers are built on.
type VM interface {
	Logger() logging.Logger
	Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error)
	GetTransactionResult(ctx context.Context, txID ids.ID) (*chain.Result, error)
	Call(
		ctx context.Context,
		from codec.Address,
		to codec.Address,
		method string,
		params chain.Params,
	) (string, error)
	GetBalance(ctx context.Context, addr codec.Address) (codec.Amount, error)
	Methods(ctx context.Context, to codec.Address) ([]*chain.Method, error)
	Height() uint64
	Subscribe() (<-chan *chain.Result, func())
}

type Handler struct {
	Path    string
	Handler http.Handler
}

type HandlerFactory[T any] interface {
	New(t T) (Handler, error)
}

func NewJSONRPCHandler(name string, service any) (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	return server, server.RegisterService(service, name)
}
