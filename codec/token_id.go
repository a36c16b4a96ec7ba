// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

const (
	TokenIDLen = ids.IDLen

	// TokenIDTextLen is the length of the 0x-prefixed hex form.
	TokenIDTextLen = len(HexPrefix) + 2*TokenIDLen
)

// TokenID is the 32 byte identity of a minted token.
type TokenID ids.ID

var EmptyTokenID = TokenID{}

func (t TokenID) String() string {
	return HexPrefix + hex.EncodeToString(t[:])
}

func (t TokenID) Bytes() []byte {
	return t[:]
}

func ParseTokenID(s string) (TokenID, error) {
	if len(s) != TokenIDTextLen {
		return EmptyTokenID, fmt.Errorf("%w: %q has length %d", ErrInvalidTokenID, s, len(s))
	}
	b, err := LoadHex(s, TokenIDLen)
	if err != nil {
		return EmptyTokenID, fmt.Errorf("%w: %w", ErrInvalidTokenID, err)
	}
	return TokenID(b), nil
}

func (t TokenID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TokenID) UnmarshalText(input []byte) error {
	parsed, err := ParseTokenID(string(input))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
