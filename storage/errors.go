// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrInvalidBalance      = errors.New("invalid balance")
	ErrInsufficientBalance = errors.New("out of balance")
	ErrCorruptRecord       = errors.New("corrupt record")
	ErrDNATooLarge         = errors.New("dna too large")
)
