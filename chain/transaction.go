// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/consts"
)

const (
	DataTypeCall   = "call"
	DataTypeDeploy = "deploy"

	// ContentTypeCode marks deploy content that names a registered code id.
	ContentTypeCode = "application/x-bear-code"

	MaxParams = 32
)

// Data is the payload of a call or deploy.
type Data struct {
	Method      string `json:"method,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content,omitempty"`
	Params      Params `json:"params,omitempty"`
}

type Transaction struct {
	From      codec.Address `json:"from"`
	To        codec.Address `json:"to"`
	Value     codec.Amount  `json:"value"`
	Nonce     codec.Uint    `json:"nonce,omitempty"`
	Timestamp codec.Uint    `json:"timestamp"`
	DataType  string        `json:"dataType,omitempty"`
	Data      *Data         `json:"data,omitempty"`
}

// Verify checks the shape of the transaction. It does not read state.
func (t *Transaction) Verify() error {
	if !t.From.IsEOA() {
		return fmt.Errorf("%w: sender %s is not an account", ErrIllegalFormat, t.From)
	}
	switch t.DataType {
	case "":
		if t.To.IsContract() {
			return fmt.Errorf("%w: transfer to contract %s needs a call", ErrIllegalFormat, t.To)
		}
		if t.Data != nil {
			return fmt.Errorf("%w: transfer carries data", ErrIllegalFormat)
		}
	case DataTypeCall:
		if !t.To.IsContract() || t.To == codec.InstallAddress {
			return fmt.Errorf("%w: call target %s is not a contract", ErrIllegalFormat, t.To)
		}
		if t.Data == nil || len(t.Data.Method) == 0 {
			return fmt.Errorf("%w: call without method", ErrIllegalFormat)
		}
	case DataTypeDeploy:
		if !t.To.IsContract() {
			return fmt.Errorf("%w: deploy target %s is not a contract", ErrIllegalFormat, t.To)
		}
		if t.Data == nil || t.Data.ContentType != ContentTypeCode {
			return fmt.Errorf("%w: deploy needs %s content", ErrIllegalFormat, ContentTypeCode)
		}
		if t.To == codec.InstallAddress && len(t.Data.Content) == 0 {
			return fmt.Errorf("%w: install without content", ErrIllegalFormat)
		}
	default:
		return fmt.Errorf("%w: unknown data type %q", ErrIllegalFormat, t.DataType)
	}
	if t.Data != nil && len(t.Data.Params) > MaxParams {
		return fmt.Errorf("%w: %d params exceeds %d", ErrIllegalFormat, len(t.Data.Params), MaxParams)
	}
	return nil
}

func (t *Transaction) Size() int {
	size := 2*codec.AddressLen + codec.AmountLen + 2*consts.Uint64Len + codec.StringLen(t.DataType) + consts.BoolLen
	if t.Data != nil {
		size += codec.StringLen(t.Data.Method) + codec.StringLen(t.Data.ContentType) +
			codec.StringLen(t.Data.Content) + consts.ByteLen
		for k, v := range t.Data.Params {
			size += codec.StringLen(k) + codec.StringLen(v)
		}
	}
	return size
}

func (t *Transaction) Marshal(p *codec.Packer) {
	p.PackAddress(t.From)
	p.PackAddress(t.To)
	p.PackAmount(t.Value)
	p.PackUint64(uint64(t.Nonce))
	p.PackUint64(uint64(t.Timestamp))
	p.PackString(t.DataType)
	p.PackBool(t.Data != nil)
	if t.Data == nil {
		return
	}
	p.PackString(t.Data.Method)
	p.PackString(t.Data.ContentType)
	p.PackString(t.Data.Content)
	p.PackByte(uint8(len(t.Data.Params)))
	for _, k := range t.Data.Params.Keys() {
		p.PackString(k)
		p.PackString(t.Data.Params[k])
	}
}

func (t *Transaction) Bytes() ([]byte, error) {
	if t.Data != nil && len(t.Data.Params) > MaxParams {
		return nil, fmt.Errorf("%w: too many params", ErrIllegalFormat)
	}
	p := codec.NewWriter(t.Size(), consts.NetworkSizeLimit)
	t.Marshal(p)
	return p.Bytes(), p.Err()
}

// ID is the sha256 of the packed transaction. Params are packed in sorted
// order so the id does not depend on map iteration.
func (t *Transaction) ID() (ids.ID, error) {
	b, err := t.Bytes()
	if err != nil {
		return ids.Empty, err
	}
	return hashing.ComputeHash256Array(b), nil
}

func UnmarshalTransaction(b []byte) (*Transaction, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	t := &Transaction{}
	p.UnpackAddress(&t.From)
	p.UnpackAddress(&t.To)
	p.UnpackAmount(&t.Value)
	t.Nonce = codec.Uint(p.UnpackUint64(false))
	t.Timestamp = codec.Uint(p.UnpackUint64(false))
	t.DataType = p.UnpackString(false)
	if p.UnpackBool() {
		t.Data = &Data{
			Method:      p.UnpackString(false),
			ContentType: p.UnpackString(false),
			Content:     p.UnpackString(false),
		}
		if n := p.UnpackByte(); n > 0 {
			t.Data.Params = make(Params, n)
			for i := uint8(0); i < n; i++ {
				k := p.UnpackString(true)
				t.Data.Params[k] = p.UnpackString(false)
			}
		}
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: transaction", ErrInvalidObject)
	}
	return t, nil
}
