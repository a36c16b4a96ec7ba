// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen   = 1
	BoolLen   = 1
	IDLen     = 32
	IntLen    = 4
	Uint16Len = 2
	Uint64Len = 8

	MaxUint8  = ^uint8(0)
	MaxUint16 = ^uint16(0)
	MaxUint   = ^uint(0)
	MaxInt    = int(MaxUint >> 1)
	MaxUint64 = ^uint64(0)

	// NetworkSizeLimit bounds any request body we decode.
	NetworkSizeLimit = 2_044_723 // 1.95 MiB

	MillisecondsPerSecond = 1000
)

const (
	// Loop is the smallest unit of value. 1 ICX = 10^18 loop.
	Loop     uint64 = 1
	ICX      uint64 = 1_000_000_000_000_000_000
	Decimals        = 18
)
