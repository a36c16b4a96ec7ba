// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/nomadconnection/cryptobears/codec"
)

// Params are the named arguments of a call or deploy. Values use the text
// forms of their types.
type Params map[string]string

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := maps.Keys(p)
	slices.Sort(keys)
	return keys
}

func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

func (p Params) get(name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidParameter, name)
	}
	return v, nil
}

func (p Params) Address(name string) (codec.Address, error) {
	v, err := p.get(name)
	if err != nil {
		return codec.EmptyAddress, err
	}
	addr, err := codec.ParseAddress(v)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("%w: %s: %w", ErrInvalidParameter, name, err)
	}
	return addr, nil
}

func (p Params) Uint(name string) (uint64, error) {
	v, err := p.get(name)
	if err != nil {
		return 0, err
	}
	u, err := codec.ParseUint(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidParameter, name, err)
	}
	return u, nil
}

// OptUint returns [def] when [name] is absent.
func (p Params) OptUint(name string, def uint64) (uint64, error) {
	if !p.Has(name) {
		return def, nil
	}
	return p.Uint(name)
}

func (p Params) Amount(name string) (codec.Amount, error) {
	v, err := p.get(name)
	if err != nil {
		return codec.Amount{}, err
	}
	a, err := codec.ParseAmount(v)
	if err != nil {
		return codec.Amount{}, fmt.Errorf("%w: %s: %w", ErrInvalidParameter, name, err)
	}
	return a, nil
}

// OptAmount returns [def] when [name] is absent.
func (p Params) OptAmount(name string, def codec.Amount) (codec.Amount, error) {
	if !p.Has(name) {
		return def, nil
	}
	return p.Amount(name)
}

func (p Params) TokenID(name string) (codec.TokenID, error) {
	v, err := p.get(name)
	if err != nil {
		return codec.EmptyTokenID, err
	}
	id, err := codec.ParseTokenID(v)
	if err != nil {
		return codec.EmptyTokenID, fmt.Errorf("%w: %s: %w", ErrInvalidParameter, name, err)
	}
	return id, nil
}

func (p Params) Bytes(name string) ([]byte, error) {
	v, err := p.get(name)
	if err != nil {
		return nil, err
	}
	b, err := codec.LoadHex(v, -1)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParameter, name, err)
	}
	return b, nil
}

func (p Params) String(name string) (string, error) {
	return p.get(name)
}

// Verify checks that every parameter is declared by [inputs] and that every
// required input is present.
func (p Params) Verify(inputs []Input) error {
	declared := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		declared[in.Name] = struct{}{}
		if !in.Optional && !p.Has(in.Name) {
			return fmt.Errorf("%w: missing %s", ErrInvalidParameter, in.Name)
		}
	}
	for k := range p {
		if _, ok := declared[k]; !ok {
			return fmt.Errorf("%w: unexpected %s", ErrInvalidParameter, k)
		}
	}
	return nil
}
