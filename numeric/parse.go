package numeric

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("invalid number")

// stripSeparators removes digit-group underscores ("1_000").
func stripSeparators(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	return strings.ReplaceAll(s, "_", "")
}

// ParseInt parses a decimal integer, trying int64 first and falling back to
// arbitrary precision when the text is out of range.
func ParseInt(s string) (Int, error) {
	return parseInt(s, 10)
}

// ParseHexInt parses a hexadecimal integer with an optional sign and an
// optional 0x prefix, using the same two-tier strategy as ParseInt.
func ParseHexInt(s string) (Int, error) {
	return parseInt(s, 16)
}

func parseInt(text string, base int) (Int, error) {
	s := stripSeparators(text)
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if base == 16 {
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s = s[2:]
		}
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return Int{}, fmt.Errorf("%w: %q", ErrSyntax, text)
	}
	if neg {
		s = "-" + s
	}

	n, err := strconv.ParseInt(s, base, 64)
	if err == nil {
		return IntFrom(n), nil
	}
	if !errors.Is(err, strconv.ErrRange) {
		return Int{}, fmt.Errorf("%w: %q", ErrSyntax, text)
	}
	b, ok := new(big.Int).SetString(s, base)
	if !ok {
		return Int{}, fmt.Errorf("%w: %q", ErrSyntax, text)
	}
	return narrow(b), nil
}

// ParseFloat parses a float literal. Values that overflow float64 or fall
// outside the small band are parsed as arbitrary-precision decimals.
func ParseFloat(text string) (Float, error) {
	s := stripSeparators(text)
	f, err := strconv.ParseFloat(s, 64)
	if err == nil && IsSmallFloat(f) {
		return Float{small: f}, nil
	}
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Float{}, fmt.Errorf("%w: %q", ErrSyntax, text)
	}
	d, _, derr := apd.NewFromString(s)
	if derr != nil {
		return Float{}, fmt.Errorf("%w: %q", ErrSyntax, text)
	}
	return narrowDecimal(d), nil
}
