// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/consts"
)

const (
	StatusFailure codec.Uint = 0
	StatusSuccess codec.Uint = 1

	maxLogs      = 255
	maxLogFields = 255
)

type Failure struct {
	Code    codec.Uint `json:"code"`
	Message string     `json:"message"`
}

// EventLog is emitted by a contract. Indexed[0] is the event signature.
type EventLog struct {
	ScoreAddress codec.Address `json:"scoreAddress"`
	Indexed      []string      `json:"indexed"`
	Data         []string      `json:"data"`
}

type Result struct {
	TxHash       codec.Hash     `json:"txHash"`
	Height       codec.Uint     `json:"blockHeight"`
	Timestamp    codec.Uint     `json:"timestamp"`
	From         codec.Address  `json:"from"`
	To           codec.Address  `json:"to"`
	Status       codec.Uint     `json:"status"`
	ScoreAddress *codec.Address `json:"scoreAddress,omitempty"`
	Output       string         `json:"output,omitempty"`
	Failure      *Failure       `json:"failure,omitempty"`
	EventLogs    []*EventLog    `json:"eventLogs"`
}

func (r *Result) Success() bool {
	return r.Status == StatusSuccess
}

func (r *Result) Size() int {
	size := consts.IDLen + 2*consts.Uint64Len + 2*codec.AddressLen + consts.ByteLen +
		2*consts.BoolLen + codec.AddressLen + codec.StringLen(r.Output) + consts.ByteLen
	if r.Failure != nil {
		size += consts.Uint64Len + codec.StringLen(r.Failure.Message)
	}
	for _, l := range r.EventLogs {
		size += codec.AddressLen + 2*consts.ByteLen
		for _, s := range l.Indexed {
			size += codec.StringLen(s)
		}
		for _, s := range l.Data {
			size += codec.StringLen(s)
		}
	}
	return size
}

func packStrings(p *codec.Packer, ss []string) {
	p.PackByte(uint8(len(ss)))
	for _, s := range ss {
		p.PackString(s)
	}
}

func unpackStrings(p *codec.Packer) []string {
	n := p.UnpackByte()
	ss := make([]string, n)
	for i := range ss {
		ss[i] = p.UnpackString(false)
	}
	return ss
}

func (r *Result) Marshal(p *codec.Packer) error {
	if len(r.EventLogs) > maxLogs {
		return fmt.Errorf("%w: %d event logs", ErrInvalidObject, len(r.EventLogs))
	}
	p.PackFixedBytes(r.TxHash[:])
	p.PackUint64(uint64(r.Height))
	p.PackUint64(uint64(r.Timestamp))
	p.PackAddress(r.From)
	p.PackAddress(r.To)
	p.PackByte(uint8(r.Status))
	p.PackBool(r.ScoreAddress != nil)
	if r.ScoreAddress != nil {
		p.PackAddress(*r.ScoreAddress)
	}
	p.PackString(r.Output)
	p.PackBool(r.Failure != nil)
	if r.Failure != nil {
		p.PackUint64(uint64(r.Failure.Code))
		p.PackString(r.Failure.Message)
	}
	p.PackByte(uint8(len(r.EventLogs)))
	for _, l := range r.EventLogs {
		if len(l.Indexed) > maxLogFields || len(l.Data) > maxLogFields {
			return fmt.Errorf("%w: event log too large", ErrInvalidObject)
		}
		p.PackAddress(l.ScoreAddress)
		packStrings(p, l.Indexed)
		packStrings(p, l.Data)
	}
	return nil
}

func (r *Result) Bytes() ([]byte, error) {
	p := codec.NewWriter(r.Size(), consts.NetworkSizeLimit)
	if err := r.Marshal(p); err != nil {
		return nil, err
	}
	return p.Bytes(), p.Err()
}

func UnmarshalResult(b []byte) (*Result, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	r := &Result{}
	hash := make([]byte, consts.IDLen)
	p.UnpackFixedBytes(consts.IDLen, &hash)
	copy(r.TxHash[:], hash)
	r.Height = codec.Uint(p.UnpackUint64(false))
	r.Timestamp = codec.Uint(p.UnpackUint64(false))
	p.UnpackAddress(&r.From)
	p.UnpackAddress(&r.To)
	r.Status = codec.Uint(p.UnpackByte())
	if p.UnpackBool() {
		var addr codec.Address
		p.UnpackAddress(&addr)
		r.ScoreAddress = &addr
	}
	r.Output = p.UnpackString(false)
	if p.UnpackBool() {
		r.Failure = &Failure{
			Code:    codec.Uint(p.UnpackUint64(false)),
			Message: p.UnpackString(false),
		}
	}
	n := p.UnpackByte()
	r.EventLogs = make([]*EventLog, 0, n)
	for i := uint8(0); i < n; i++ {
		l := &EventLog{}
		p.UnpackAddress(&l.ScoreAddress)
		l.Indexed = unpackStrings(p)
		l.Data = unpackStrings(p)
		r.EventLogs = append(r.EventLogs, l)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: result", ErrInvalidObject)
	}
	return r, nil
}
