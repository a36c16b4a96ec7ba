// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/nomadconnection/cryptobears/consts"
)

const AmountLen = 32

// Amount is a native value in loop. It is 256 bits wide and travels as a
// 0x-prefixed hex string, the same text form as [Uint].
type Amount struct {
	v uint256.Int
}

func NewAmount(loop uint64) Amount {
	var a Amount
	a.v.SetUint64(loop)
	return a
}

// ICX returns [n] whole ICX in loop.
func ICX(n uint64) Amount {
	var a Amount
	a.v.Mul(uint256.NewInt(n), uint256.NewInt(consts.ICX))
	return a
}

// AmountFromBytes decodes the big-endian encoding written by [Amount.Bytes].
func AmountFromBytes(b []byte) Amount {
	var a Amount
	a.v.SetBytes(b)
	return a
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) Lt(b Amount) bool {
	return a.v.Lt(&b.v)
}

// Add returns a+b and whether the sum overflowed.
func (a Amount) Add(b Amount) (Amount, bool) {
	var z Amount
	_, overflow := z.v.AddOverflow(&a.v, &b.v)
	return z, overflow
}

// Sub returns a-b and whether it underflowed.
func (a Amount) Sub(b Amount) (Amount, bool) {
	var z Amount
	_, underflow := z.v.SubOverflow(&a.v, &b.v)
	return z, underflow
}

// Uint64 returns the low 64 bits and whether they hold the whole value.
func (a Amount) Uint64() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

// Bytes returns the fixed-width big-endian encoding.
func (a Amount) Bytes() [AmountLen]byte {
	return a.v.Bytes32()
}

// Dec renders the amount in decimal.
func (a Amount) Dec() string {
	return a.v.ToBig().String()
}

func (a Amount) String() string {
	digits := strings.TrimLeft(hex.EncodeToString(a.v.Bytes()), "0")
	if len(digits) == 0 {
		digits = "0"
	}
	return HexPrefix + digits
}

// ParseAmount accepts either 0x-prefixed hex or plain decimal.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if rest, ok := strings.CutPrefix(s, HexPrefix); ok {
		digits := strings.TrimLeft(rest, "0")
		if len(rest) == 0 || len(digits) > 2*AmountLen {
			return Amount{}, fmt.Errorf("%w: %q", ErrInvalidUint, s)
		}
		if len(digits)%2 == 1 {
			digits = "0" + digits
		}
		b, err := hex.DecodeString(digits)
		if err != nil {
			return Amount{}, fmt.Errorf("%w: %q", ErrInvalidUint, s)
		}
		a.v.SetBytes(b)
		return a, nil
	}
	if len(s) == 0 || strings.TrimLeft(s, "0123456789") != "" {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidUint, s)
	}
	digits := strings.TrimLeft(s, "0")
	if len(digits) == 0 {
		return a, nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidUint, s)
	}
	a.v = *v
	return a, nil
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(input []byte) error {
	v, err := ParseAmount(string(input))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
