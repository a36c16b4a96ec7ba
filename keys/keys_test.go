// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyValue(t *testing.T) {
	tests := []struct {
		name     string
		chunks   uint16
		valueLen int
		ok       bool
	}{
		{name: "empty value", chunks: 0, valueLen: 0, ok: true},
		{name: "one chunk", chunks: 1, valueLen: 8, ok: true},
		{name: "boundary", chunks: 1, valueLen: 63, ok: true},
		{name: "overflow", chunks: 1, valueLen: 64, ok: false},
		{name: "two chunks", chunks: 2, valueLen: 100, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := EncodeChunks([]byte{0x1, 0x2}, tt.chunks)
			require.Equal(t, tt.ok, VerifyValue(key, make([]byte, tt.valueLen)))
		})
	}
}

func TestMaxChunks(t *testing.T) {
	require := require.New(t)

	_, ok := MaxChunks([]byte{1})
	require.False(ok)
	require.False(Valid([]byte{1}))

	chunks, ok := MaxChunks(EncodeChunks(nil, 7))
	require.True(ok)
	require.Equal(uint16(7), chunks)
	require.Equal(uint16(2), ChunksFor(100))
}
