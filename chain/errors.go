// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"errors"

	"github.com/nomadconnection/cryptobears/storage"
)

// Failure codes reported in [Failure.Code].
const (
	CodeUnknown          = 1
	CodeContractNotFound = 2
	CodeMethodNotFound   = 3
	CodeMethodNotPayable = 4
	CodeIllegalFormat    = 5
	CodeInvalidParameter = 6
	CodeAccessDenied     = 9
	CodeOutOfBalance     = 11

	// CodeRevert is the base of contract defined failures.
	CodeRevert = 32
)

// Error is a failure kind that carries the code reported to callers. Wrap
// it with fmt.Errorf to add detail; [CodeOf] recovers the code.
type Error struct {
	Code    int
	Message string
}

func NewError(code int, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Revert declares a contract failure with code [CodeRevert]+[offset].
func Revert(offset int, msg string) *Error {
	return NewError(CodeRevert+offset, msg)
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrUnknown          = NewError(CodeUnknown, "unknown failure")
	ErrContractNotFound = NewError(CodeContractNotFound, "contract not found")
	ErrMethodNotFound   = NewError(CodeMethodNotFound, "method not found")
	ErrMethodNotPayable = NewError(CodeMethodNotPayable, "method not payable")
	ErrIllegalFormat    = NewError(CodeIllegalFormat, "illegal format")
	ErrInvalidParameter = NewError(CodeInvalidParameter, "invalid parameter")
	ErrAccessDenied     = NewError(CodeAccessDenied, "access denied")
	ErrOutOfBalance     = NewError(CodeOutOfBalance, "out of balance")
)

var (
	ErrDuplicateTx   = errors.New("duplicate transaction")
	ErrCallDepth     = errors.New("call depth exceeded")
	ErrDuplicateCode = errors.New("duplicate code id")
	ErrInvalidObject = errors.New("invalid object")
)

// CodeOf returns the failure code carried by [err].
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, storage.ErrInsufficientBalance) {
		return CodeOutOfBalance
	}
	return CodeUnknown
}
