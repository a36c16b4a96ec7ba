// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/nomadconnection/cryptobears/api"
	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/codec"
)

const Endpoint = "/bearapi"

var _ api.HandlerFactory[api.VM] = (*JSONRPCServerFactory)(nil)

type JSONRPCServerFactory struct{}

func (JSONRPCServerFactory) New(vm api.VM) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(api.Name, NewJSONRPCServer(vm))
	if err != nil {
		return api.Handler{}, err
	}
	return api.Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

type JSONRPCServer struct {
	vm api.VM
}

func NewJSONRPCServer(vm api.VM) *JSONRPCServer {
	return &JSONRPCServer{vm}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	j.vm.Logger().Info("ping")
	reply.Success = true
	return nil
}

type HeightReply struct {
	Height codec.Uint `json:"height"`
}

func (j *JSONRPCServer) Height(_ *http.Request, _ *struct{}, reply *HeightReply) error {
	reply.Height = codec.Uint(j.vm.Height())
	return nil
}

type SendTransactionReply struct {
	TxHash codec.Hash    `json:"txHash"`
	Result *chain.Result `json:"result"`
}

// SendTransaction executes [args] and waits for its result. A tx that fails
// during execution still returns a result with a failure status.
func (j *JSONRPCServer) SendTransaction(
	req *http.Request,
	args *chain.Transaction,
	reply *SendTransactionReply,
) error {
	result, err := j.vm.Submit(req.Context(), args)
	if err != nil {
		return err
	}
	reply.TxHash = result.TxHash
	reply.Result = result
	return nil
}

type TxHashArgs struct {
	TxHash codec.Hash `json:"txHash"`
}

func (j *JSONRPCServer) GetTransactionResult(
	req *http.Request,
	args *TxHashArgs,
	reply *chain.Result,
) error {
	result, err := j.vm.GetTransactionResult(req.Context(), ids.ID(args.TxHash))
	if err != nil {
		return err
	}
	*reply = *result
	return nil
}

type CallArgs struct {
	From   codec.Address `json:"from"`
	To     codec.Address `json:"to"`
	Method string        `json:"method"`
	Params chain.Params  `json:"params,omitempty"`
}

type CallReply struct {
	Output string `json:"output"`
}

func (j *JSONRPCServer) Call(req *http.Request, args *CallArgs, reply *CallReply) error {
	output, err := j.vm.Call(req.Context(), args.From, args.To, args.Method, args.Params)
	if err != nil {
		j.vm.Logger().Debug("call failed",
			zap.Stringer("to", args.To),
			zap.String("method", args.Method),
			zap.Error(err),
		)
		return err
	}
	reply.Output = output
	return nil
}

type AddressArgs struct {
	Address codec.Address `json:"address"`
}

type BalanceReply struct {
	Balance codec.Amount `json:"balance"`
}

func (j *JSONRPCServer) GetBalance(req *http.Request, args *AddressArgs, reply *BalanceReply) error {
	balance, err := j.vm.GetBalance(req.Context(), args.Address)
	if err != nil {
		return err
	}
	reply.Balance = balance
	return nil
}

// MethodAPI describes one method of a deployed contract.
type MethodAPI struct {
	Type     string        `json:"type"`
	Name     string        `json:"name"`
	Inputs   []chain.Input `json:"inputs"`
	Outputs  []string      `json:"outputs"`
	ReadOnly bool          `json:"readonly,omitempty"`
	Payable  bool          `json:"payable,omitempty"`
}

type ScoreAPIReply struct {
	Methods []*MethodAPI `json:"methods"`
}

func (j *JSONRPCServer) GetScoreAPI(req *http.Request, args *AddressArgs, reply *ScoreAPIReply) error {
	methods, err := j.vm.Methods(req.Context(), args.Address)
	if err != nil {
		return err
	}
	reply.Methods = make([]*MethodAPI, 0, len(methods))
	for _, m := range methods {
		outputs := []string{}
		if len(m.Output) > 0 {
			outputs = append(outputs, m.Output)
		}
		inputs := m.Inputs
		if inputs == nil {
			inputs = []chain.Input{}
		}
		reply.Methods = append(reply.Methods, &MethodAPI{
			Type:     "function",
			Name:     m.Name,
			Inputs:   inputs,
			Outputs:  outputs,
			ReadOnly: m.ReadOnly,
			Payable:  m.Payable,
		})
	}
	return nil
}
