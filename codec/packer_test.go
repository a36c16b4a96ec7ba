// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/nomadconnection/cryptobears/consts"
)

func TestPackerRoundTrip(t *testing.T) {
	require := require.New(t)

	addr := MustParseAddress("cx1b97c1abfd001d5cd0b5a3f93f22cccfea77e34e")
	token := TokenID(ids.GenerateTestID())
	txID := ids.GenerateTestID()
	amount := ICX(100)

	wp := NewWriter(128, consts.MaxInt)
	wp.PackAddress(addr)
	wp.PackTokenID(token)
	wp.PackID(txID)
	wp.PackAmount(amount)
	wp.PackUint64(42)
	wp.PackString("happyMeal")
	wp.PackBytes([]byte{1, 2, 3})
	wp.PackBool(true)
	require.NoError(wp.Err())

	rp := NewReader(wp.Bytes(), consts.MaxInt)
	var (
		gotAddr  Address
		gotToken TokenID
		gotTxID  ids.ID
		gotAmt   Amount
		gotBytes []byte
	)
	rp.UnpackAddress(&gotAddr)
	rp.UnpackTokenID(&gotToken)
	rp.UnpackID(true, &gotTxID)
	rp.UnpackAmount(&gotAmt)
	gotUint := rp.UnpackUint64(true)
	gotString := rp.UnpackString(true)
	rp.UnpackBytes(16, true, &gotBytes)
	gotBool := rp.UnpackBool()
	require.NoError(rp.Err())
	require.True(rp.Empty())

	require.Equal(addr, gotAddr)
	require.Equal(token, gotToken)
	require.Equal(txID, gotTxID)
	require.Equal(amount, gotAmt)
	require.Equal(uint64(42), gotUint)
	require.Equal("happyMeal", gotString)
	require.Equal([]byte{1, 2, 3}, gotBytes)
	require.True(gotBool)
}

func TestPackerRequiredUnpack(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(consts.Uint64Len, consts.MaxInt)
	wp.PackUint64(0)
	rp := NewReader(wp.Bytes(), consts.MaxInt)
	require.Zero(rp.UnpackUint64(true))
	require.ErrorIs(rp.Err(), ErrFieldNotPopulated)
}
