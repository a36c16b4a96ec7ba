// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"strings"
)

const HexPrefix = "0x"

// ToHex returns the 0x-prefixed hex encoding of b.
func ToHex(b []byte) string {
	return HexPrefix + hex.EncodeToString(b)
}

// LoadHex converts a hex encoded string (with or without 0x prefix)
// into bytes. Returns an error if [expectedSize] is not -1 and the
// decoded length differs.
func LoadHex(s string, expectedSize int) ([]byte, error) {
	s = strings.TrimPrefix(s, HexPrefix)
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if expectedSize != -1 && len(bytes) != expectedSize {
		return nil, ErrInvalidSize
	}
	return bytes, nil
}

type Bytes []byte

func (b Bytes) String() string {
	return ToHex(b)
}

// MarshalText returns the hex representation of b.
func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText sets b to the bytes represented by text.
func (b *Bytes) UnmarshalText(text []byte) error {
	bytes, err := LoadHex(string(text), -1)
	if err != nil {
		return err
	}
	*b = bytes
	return nil
}
