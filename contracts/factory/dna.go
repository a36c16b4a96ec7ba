// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package factory

import (
	"encoding/binary"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/consts"
)

const DNALen = 32

// DNA derives the attributes of a new bear from the minting account, the
// transaction and the factory nonce. The nonce keeps several mints in one
// transaction distinct.
func DNA(caller codec.Address, txID ids.ID, nonce uint64) []byte {
	msg := make([]byte, 0, codec.AddressLen+consts.IDLen+consts.Uint64Len)
	msg = append(msg, caller[:]...)
	msg = append(msg, txID[:]...)
	msg = binary.BigEndian.AppendUint64(msg, nonce)
	return hashing.ComputeHash256(msg)[:DNALen]
}
