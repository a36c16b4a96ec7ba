// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

// Hash is a 32 byte digest that travels as 0x-prefixed hex, such as a
// transaction hash.
type Hash ids.ID

func (h Hash) String() string {
	return ToHex(h[:])
}

func ParseHash(s string) (Hash, error) {
	b, err := LoadHex(s, ids.IDLen)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	return Hash(b), nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(input []byte) error {
	parsed, err := ParseHash(string(input))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
