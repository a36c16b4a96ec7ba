// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/onsi/ginkgo/v2/formatter"

	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/consts"
)

var ErrInvalidBalance = errors.New("invalid balance")

// Outf writes colored output to stdout.
//
// e.g.,
//
//	Outf("{{green}}{{bold}}minted %s{{/}}\n", id)
func Outf(format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(formatter.ColorableStdOut, s)
}

// FormatBalance renders loop as ICX with every decimal kept.
func FormatBalance(bal codec.Amount) string {
	digits := bal.Dec()
	if len(digits) <= consts.Decimals {
		digits = strings.Repeat("0", consts.Decimals-len(digits)+1) + digits
	}
	split := len(digits) - consts.Decimals
	whole, frac := digits[:split], strings.TrimRight(digits[split:], "0")
	if len(frac) == 0 {
		return whole
	}
	return whole + "." + frac
}

// ParseBalance converts an ICX amount such as "1.5" to loop.
func ParseBalance(bal string) (codec.Amount, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(bal), ".")
	if len(whole) == 0 && len(frac) == 0 {
		return codec.Amount{}, fmt.Errorf("%w: %q", ErrInvalidBalance, bal)
	}
	if len(frac) > consts.Decimals {
		return codec.Amount{}, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidBalance, bal, consts.Decimals)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return codec.Amount{}, fmt.Errorf("%w: %q", ErrInvalidBalance, bal)
	}
	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", consts.Decimals-len(frac)), "0")
	if len(digits) == 0 {
		return codec.Amount{}, nil
	}
	v, err := codec.ParseAmount(digits)
	if err != nil {
		return codec.Amount{}, fmt.Errorf("%w: %q overflows", ErrInvalidBalance, bal)
	}
	return v, nil
}

func isDigits(s string) bool {
	return strings.Trim(s, "0123456789") == ""
}
