// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrInvalidSize    = errors.New("invalid size")
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidTokenID = errors.New("invalid token id")
	ErrInvalidUint    = errors.New("invalid integer")
	ErrInvalidHash    = errors.New("invalid hash")
)

var (
	ErrFieldNotPopulated = errors.New("field is not populated")
	ErrExtraBytes        = errors.New("extra bytes")
)
