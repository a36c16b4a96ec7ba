// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// Uint is an integer that travels as a 0x-prefixed hex string.
type Uint uint64

func (u Uint) String() string {
	return HexPrefix + strconv.FormatUint(uint64(u), 16)
}

// ParseUint accepts either 0x-prefixed hex or plain decimal.
func ParseUint(s string) (uint64, error) {
	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(s, HexPrefix) {
		v, err = strconv.ParseUint(s[len(HexPrefix):], 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUint, s)
	}
	return v, nil
}

func (u Uint) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Uint) UnmarshalText(input []byte) error {
	v, err := ParseUint(string(input))
	if err != nil {
		return err
	}
	*u = Uint(v)
	return nil
}
