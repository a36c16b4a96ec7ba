// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/nomadconnection/cryptobears/api"
	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/pubsub"
)

const Endpoint = "/bearws"

var _ api.HandlerFactory[api.VM] = (*WebSocketServerFactory)(nil)

// WebSocketServerFactory streams every committed result to connected
// clients as JSON text messages.
type WebSocketServerFactory struct {
	Config pubsub.ServerConfig
}

func NewWebSocketServerFactory() WebSocketServerFactory {
	return WebSocketServerFactory{Config: pubsub.NewDefaultServerConfig()}
}

func (w WebSocketServerFactory) New(vm api.VM) (api.Handler, error) {
	s := pubsub.New(vm.Logger(), w.Config)
	results, _ := vm.Subscribe()
	go forward(vm, s, results)
	return api.Handler{
		Path:    Endpoint,
		Handler: s,
	}, nil
}

// forward runs until the VM closes [results].
func forward(vm api.VM, s *pubsub.Server, results <-chan *chain.Result) {
	log := vm.Logger()
	defer func() {
		_ = s.Close()
	}()
	for result := range results {
		msg, err := json.Marshal(result)
		if err != nil {
			log.Error("unable to marshal result",
				zap.Stringer("txID", result.TxHash),
				zap.Error(err),
			)
			continue
		}
		s.Publish(msg)
	}
	log.Info("result stream closed")
}
