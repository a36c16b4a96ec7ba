// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "errors"

var (
	ErrNotReady   = errors.New("vm not ready")
	ErrShutdown   = errors.New("vm is shut down")
	ErrTxNotFound = errors.New("transaction not found")
)
