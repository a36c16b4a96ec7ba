// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "github.com/nomadconnection/cryptobears/consts"

// BytesLen is the packed size of [msg] including its length prefix.
func BytesLen(msg []byte) int {
	return consts.IntLen + len(msg)
}

// StringLen is the packed size of [msg] including its 2 byte length prefix.
func StringLen(msg string) int {
	return consts.Uint16Len + len(msg)
}
