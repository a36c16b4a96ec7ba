// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"
	"sync"
)

// Handler runs a method. The returned value must be nil, a string, or
// implement encoding.TextMarshaler.
type Handler func(ctx context.Context, c *CallContext, params Params) (any, error)

type Input struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

type Method struct {
	Name     string
	Inputs   []Input
	Output   string
	ReadOnly bool
	Payable  bool
	Handler  Handler
}

// Contract is the code behind a deployed address. State lives in the
// [CallContext], never in the Contract itself, so one Contract value serves
// every address deployed with its code id.
type Contract interface {
	// OnInstall runs once when the contract is deployed.
	OnInstall(ctx context.Context, c *CallContext, params Params) error
	// OnUpdate runs when the deployer redeploys at an existing address.
	OnUpdate(ctx context.Context, c *CallContext, params Params) error
	Methods() []*Method
}

type code struct {
	contract Contract
	methods  map[string]*Method
	ordered  []*Method
}

// Registry maps code ids to contracts.
type Registry struct {
	l     sync.RWMutex
	codes map[string]*code
}

func NewRegistry() *Registry {
	return &Registry{codes: map[string]*code{}}
}

func (r *Registry) Register(codeID string, c Contract) error {
	r.l.Lock()
	defer r.l.Unlock()

	if _, ok := r.codes[codeID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCode, codeID)
	}
	methods := c.Methods()
	entry := &code{contract: c, methods: make(map[string]*Method, len(methods)), ordered: methods}
	for _, m := range methods {
		if _, ok := entry.methods[m.Name]; ok {
			return fmt.Errorf("%w: %s.%s declared twice", ErrDuplicateCode, codeID, m.Name)
		}
		entry.methods[m.Name] = m
	}
	r.codes[codeID] = entry
	return nil
}

func (r *Registry) Contract(codeID string) (Contract, bool) {
	r.l.RLock()
	defer r.l.RUnlock()

	c, ok := r.codes[codeID]
	if !ok {
		return nil, false
	}
	return c.contract, true
}

func (r *Registry) Method(codeID string, name string) (*Method, error) {
	r.l.RLock()
	defer r.l.RUnlock()

	c, ok := r.codes[codeID]
	if !ok {
		return nil, fmt.Errorf("%w: code %s", ErrContractNotFound, codeID)
	}
	m, ok := c.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, name)
	}
	return m, nil
}

// Methods returns the methods of [codeID] in declaration order.
func (r *Registry) Methods(codeID string) ([]*Method, error) {
	r.l.RLock()
	defer r.l.RUnlock()

	c, ok := r.codes[codeID]
	if !ok {
		return nil, fmt.Errorf("%w: code %s", ErrContractNotFound, codeID)
	}
	return c.ordered, nil
}
