// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contracts

import "github.com/nomadconnection/cryptobears/chain"

var (
	ErrUnauthorized        = chain.NewError(chain.CodeAccessDenied, "unauthorized")
	ErrNotFound            = chain.Revert(1, "not found")
	ErrOutOfRange          = chain.Revert(2, "out of range")
	ErrInsufficientPayment = chain.Revert(3, "insufficient payment")
	ErrLevelCapped         = chain.Revert(4, "level capped")
)

// Code ids of the contracts in this module.
const (
	LedgerCode  = "cryptobears"
	FactoryCode = "bearfactory"
)
