// Package numeric implements the integer and float tower used by the
// runtime. Each number holds either a fixed-width machine value or an
// arbitrary-precision one, never both. Results that fit the "small" band
// are always returned in fixed-width form, and results outside it are always
// arbitrary precision, so the representation is canonical and never visible
// through arithmetic.
package numeric

import (
	"errors"
	"math"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// SmallInt band. Anything strictly inside [-2^62, 2^62] is kept as an int64;
// the sum or difference of two band members cannot wrap an int64.
const (
	MaxSmallInt int64 = 1<<62 - 1
	MinSmallInt int64 = -(1<<62 - 1)
)

// ErrZeroDivision is returned by integer division and modulo by zero.
var ErrZeroDivision = errors.New("divided by 0")

var (
	bigMaxSmall = big.NewInt(MaxSmallInt)
	bigMinSmall = big.NewInt(MinSmallInt)
)

// Int is a dynamically sized integer.
type Int struct {
	small int64
	big   *big.Int // non-nil only when the value is outside the small band
}

// IsSmallInt reports whether n lies inside the fixed-width band.
func IsSmallInt(n int64) bool {
	return n >= MinSmallInt && n <= MaxSmallInt
}

// IntFrom returns n in canonical form.
func IntFrom(n int64) Int {
	if IsSmallInt(n) {
		return Int{small: n}
	}
	return Int{big: big.NewInt(n)}
}

// IntFromBig returns b in canonical form. b is copied.
func IntFromBig(b *big.Int) Int {
	if b.Cmp(bigMinSmall) >= 0 && b.Cmp(bigMaxSmall) <= 0 {
		return Int{small: b.Int64()}
	}
	return Int{big: new(big.Int).Set(b)}
}

// narrow takes ownership of b.
func narrow(b *big.Int) Int {
	if b.Cmp(bigMinSmall) >= 0 && b.Cmp(bigMaxSmall) <= 0 {
		return Int{small: b.Int64()}
	}
	return Int{big: b}
}

// IsBig reports whether the arbitrary-precision representation is active.
func (i Int) IsBig() bool { return i.big != nil }

// Int64 returns the fixed-width value. ok is false for big integers.
func (i Int) Int64() (n int64, ok bool) {
	if i.big != nil {
		return 0, false
	}
	return i.small, true
}

// Big returns a fresh *big.Int holding the value.
func (i Int) Big() *big.Int {
	if i.big != nil {
		return new(big.Int).Set(i.big)
	}
	return big.NewInt(i.small)
}

// widen returns the value as a *big.Int that the caller must not mutate.
func (i Int) widen() *big.Int {
	if i.big != nil {
		return i.big
	}
	return big.NewInt(i.small)
}

// Sign returns -1, 0 or +1.
func (i Int) Sign() int {
	if i.big != nil {
		return i.big.Sign()
	}
	switch {
	case i.small < 0:
		return -1
	case i.small > 0:
		return 1
	}
	return 0
}

// IsZero reports whether the value is 0.
func (i Int) IsZero() bool { return i.big == nil && i.small == 0 }

func (i Int) String() string {
	if i.big != nil {
		return i.big.String()
	}
	return big.NewInt(i.small).String()
}

// Neg returns -i.
func (i Int) Neg() Int {
	if i.big == nil {
		return IntFrom(-i.small)
	}
	return narrow(new(big.Int).Neg(i.big))
}

// Add returns i + j.
func (i Int) Add(j Int) Int {
	if i.big == nil && j.big == nil {
		if r := i.small + j.small; IsSmallInt(r) {
			return Int{small: r}
		}
	}
	return narrow(new(big.Int).Add(i.widen(), j.widen()))
}

// Sub returns i - j.
func (i Int) Sub(j Int) Int {
	if i.big == nil && j.big == nil {
		if r := i.small - j.small; IsSmallInt(r) {
			return Int{small: r}
		}
	}
	return narrow(new(big.Int).Sub(i.widen(), j.widen()))
}

// Mul returns i * j.
func (i Int) Mul(j Int) Int {
	if i.big == nil && j.big == nil {
		a, b := i.small, j.small
		r := a * b
		if (a == 0 || r/a == b) && IsSmallInt(r) {
			return Int{small: r}
		}
	}
	return narrow(new(big.Int).Mul(i.widen(), j.widen()))
}

// Div returns the floored quotient i / j.
func (i Int) Div(j Int) (Int, error) {
	q, _, err := i.divMod(j)
	return q, err
}

// Mod returns the floored remainder; the result takes the sign of j.
func (i Int) Mod(j Int) (Int, error) {
	_, m, err := i.divMod(j)
	return m, err
}

// DivMod returns the floored quotient and remainder together.
func (i Int) DivMod(j Int) (Int, Int, error) {
	return i.divMod(j)
}

func (i Int) divMod(j Int) (Int, Int, error) {
	if j.IsZero() {
		return Int{}, Int{}, ErrZeroDivision
	}
	if i.big == nil && j.big == nil {
		a, b := i.small, j.small
		q, r := a/b, a%b
		if r != 0 && (r < 0) != (b < 0) {
			q--
			r += b
		}
		return IntFrom(q), IntFrom(r), nil
	}
	b := j.widen()
	q, r := new(big.Int).QuoRem(i.widen(), b, new(big.Int))
	if r.Sign() != 0 && r.Sign() != b.Sign() {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}
	return narrow(q), narrow(r), nil
}

// Cmp compares i and j. Fixed-width pairs are compared directly; a big
// operand is outside the small band, so against a small one its sign decides.
func (i Int) Cmp(j Int) int {
	switch {
	case i.big == nil && j.big == nil:
		switch {
		case i.small < j.small:
			return -1
		case i.small > j.small:
			return 1
		}
		return 0
	case i.big != nil && j.big != nil:
		return i.big.Cmp(j.big)
	case i.big != nil:
		return i.big.Sign()
	default:
		return -j.big.Sign()
	}
}

// Equal reports whether i == j.
func (i Int) Equal(j Int) bool { return i.Cmp(j) == 0 }

// EqualInts compares two optional integers: both absent are equal, exactly
// one absent is unequal.
func EqualInts(a, b *Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// ToFloat converts i to a Float. Big integers convert exactly to an
// arbitrary-precision float before canonicalization, so a result inside the
// float band is rounded to a float64. Use CmpFloat to compare an integer
// with a float.
func (i Int) ToFloat() Float {
	if i.big == nil {
		return FloatFrom(float64(i.small))
	}
	return floatFromIntString(i.big.String())
}

// CmpFloat compares i with f without rounding either side. ok is false when
// f is NaN.
func (i Int) CmpFloat(f Float) (c int, ok bool) {
	switch {
	case f.IsNaN():
		return 0, false
	case f.IsInf():
		return -int(math.Copysign(1, f.small)), true
	case f.big != nil:
		d, _, err := apd.NewFromString(i.String())
		if err != nil {
			panic("numeric: " + err.Error())
		}
		return d.Cmp(f.big), true
	}
	var x *big.Float
	if i.big != nil {
		x = new(big.Float).SetInt(i.big)
	} else {
		x = new(big.Float).SetInt64(i.small)
	}
	return x.Cmp(new(big.Float).SetFloat64(f.small)), true
}
