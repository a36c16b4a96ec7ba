// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"
)

const (
	AddressIDLen = 20
	AddressLen   = 1 + AddressIDLen

	EOAType      uint8 = 0
	ContractType uint8 = 1

	EOAPrefix      = "hx"
	ContractPrefix = "cx"

	addressTextLen = 2 + 2*AddressIDLen
)

// Address is a 21 byte account identifier. The first byte tells whether the
// account is externally owned or a deployed contract.
type Address [AddressLen]byte

var (
	EmptyAddress = Address{}

	// InstallAddress is the target of transactions that deploy new contracts.
	InstallAddress = CreateAddress(ContractType, [AddressIDLen]byte{})
)

// CreateAddress returns [Address] made from concatenating [typeID] with [id].
func CreateAddress(typeID uint8, id [AddressIDLen]byte) Address {
	var a Address
	a[0] = typeID
	copy(a[1:], id[:])
	return a
}

// CreateAddressFromBytes uses the trailing [AddressIDLen] bytes of [b] as the
// account id.
func CreateAddressFromBytes(typeID uint8, b []byte) Address {
	var id [AddressIDLen]byte
	if len(b) >= AddressIDLen {
		copy(id[:], b[len(b)-AddressIDLen:])
	} else {
		copy(id[AddressIDLen-len(b):], b)
	}
	return CreateAddress(typeID, id)
}

func (a Address) Type() uint8 {
	return a[0]
}

func (a Address) IsContract() bool {
	return a[0] == ContractType
}

func (a Address) IsEOA() bool {
	return a[0] == EOAType
}

func (a Address) Empty() bool {
	return a == EmptyAddress
}

// String implements fmt.Stringer.
func (a Address) String() string {
	prefix := EOAPrefix
	if a.IsContract() {
		prefix = ContractPrefix
	}
	return prefix + hex.EncodeToString(a[1:])
}

// ParseAddress decodes the hx/cx text form of an address.
func ParseAddress(s string) (Address, error) {
	if len(s) != addressTextLen {
		return EmptyAddress, fmt.Errorf("%w: %q has length %d", ErrInvalidAddress, s, len(s))
	}
	var typeID uint8
	switch s[:2] {
	case EOAPrefix:
		typeID = EOAType
	case ContractPrefix:
		typeID = ContractType
	default:
		return EmptyAddress, fmt.Errorf("%w: unknown prefix %q", ErrInvalidAddress, s[:2])
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return EmptyAddress, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return CreateAddressFromBytes(typeID, b), nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// MarshalText returns the hx/cx representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the hx/cx representation of an address.
func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
