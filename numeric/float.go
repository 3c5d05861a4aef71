package numeric

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// decimalPrecision is the number of significant digits kept by big floats.
const decimalPrecision = 100

var (
	decimalContext = apd.BaseContext.WithPrecision(decimalPrecision)

	// floatBand is 2^511: the product of two band members stays finite.
	floatBand        = math.Ldexp(1, 511)
	decimalFloatBand = mustDecimal(floatBand)
)

func mustDecimal(f float64) *apd.Decimal {
	d, err := new(apd.Decimal).SetFloat64(f)
	if err != nil {
		panic("numeric: " + err.Error())
	}
	return d
}

// Float is a dynamically sized float.
type Float struct {
	small float64
	big   *apd.Decimal // non-nil only when the value is finite and outside the band
}

// IsSmallFloat reports whether f lies in the fixed-width band. Infinities
// and NaN always count as small.
func IsSmallFloat(f float64) bool {
	return math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) < floatBand
}

// FloatFrom returns f in canonical form.
func FloatFrom(f float64) Float {
	if IsSmallFloat(f) {
		return Float{small: f}
	}
	return Float{big: mustDecimal(f)}
}

// narrowDecimal takes ownership of d.
func narrowDecimal(d *apd.Decimal) Float {
	if d.Form != apd.Finite {
		f, _ := d.Float64()
		return Float{small: f}
	}
	abs := new(apd.Decimal).Abs(d)
	if abs.Cmp(decimalFloatBand) < 0 {
		f, _ := d.Float64()
		return Float{small: f}
	}
	return Float{big: d}
}

func floatFromIntString(s string) Float {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		// Integer text always parses.
		panic("numeric: " + err.Error())
	}
	return narrowDecimal(d)
}

// IsBig reports whether the arbitrary-precision representation is active.
func (f Float) IsBig() bool { return f.big != nil }

// Float64 returns the nearest float64. Big values beyond float64 range
// become ±Inf.
func (f Float) Float64() float64 {
	if f.big == nil {
		return f.small
	}
	v, _ := f.big.Float64()
	return v
}

func (f Float) widen() *apd.Decimal {
	if f.big != nil {
		return f.big
	}
	return mustDecimal(f.small)
}

// IsNaN reports whether f is NaN.
func (f Float) IsNaN() bool { return f.big == nil && math.IsNaN(f.small) }

// IsInf reports whether f is an infinity.
func (f Float) IsInf() bool { return f.big == nil && math.IsInf(f.small, 0) }

// finite reports whether both operands can take the decimal path.
func finite(f, g Float) bool {
	return !f.IsNaN() && !f.IsInf() && !g.IsNaN() && !g.IsInf()
}

// Sign returns -1, 0 or +1 (0 for NaN).
func (f Float) Sign() int {
	if f.big != nil {
		return f.big.Sign()
	}
	switch {
	case f.small < 0:
		return -1
	case f.small > 0:
		return 1
	}
	return 0
}

type floatOp struct {
	fixed   func(a, b float64) float64
	decimal func(d, x, y *apd.Decimal) (apd.Condition, error)
}

func (f Float) apply(g Float, op floatOp) Float {
	if f.big == nil && g.big == nil {
		if r := op.fixed(f.small, g.small); IsSmallFloat(r) {
			return Float{small: r}
		}
	}
	if !finite(f, g) {
		return FloatFrom(op.fixed(f.Float64(), g.Float64()))
	}
	d := new(apd.Decimal)
	if _, err := op.decimal(d, f.widen(), g.widen()); err != nil {
		return FloatFrom(op.fixed(f.Float64(), g.Float64()))
	}
	return narrowDecimal(d)
}

// Add returns f + g.
func (f Float) Add(g Float) Float {
	return f.apply(g, floatOp{
		fixed:   func(a, b float64) float64 { return a + b },
		decimal: decimalContext.Add,
	})
}

// Sub returns f - g.
func (f Float) Sub(g Float) Float {
	return f.apply(g, floatOp{
		fixed:   func(a, b float64) float64 { return a - b },
		decimal: decimalContext.Sub,
	})
}

// Mul returns f * g.
func (f Float) Mul(g Float) Float {
	return f.apply(g, floatOp{
		fixed:   func(a, b float64) float64 { return a * b },
		decimal: decimalContext.Mul,
	})
}

// Div returns f / g. Division by zero follows IEEE 754.
func (f Float) Div(g Float) Float {
	if g.Sign() == 0 {
		return Float{small: f.Float64() / g.small}
	}
	return f.apply(g, floatOp{
		fixed:   func(a, b float64) float64 { return a / b },
		decimal: decimalContext.Quo,
	})
}

// Mod returns the floored remainder, taking the sign of g.
func (f Float) Mod(g Float) Float {
	if g.Sign() == 0 {
		return Float{small: math.NaN()}
	}
	return f.apply(g, floatOp{
		fixed: floorMod,
		decimal: func(d, x, y *apd.Decimal) (apd.Condition, error) {
			c, err := decimalContext.Rem(d, x, y)
			if err != nil {
				return c, err
			}
			if d.Sign() != 0 && d.Sign() != y.Sign() {
				return decimalContext.Add(d, d, y)
			}
			return c, nil
		},
	})
}

func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// Neg returns -f.
func (f Float) Neg() Float {
	if f.big == nil {
		return Float{small: -f.small}
	}
	return Float{big: new(apd.Decimal).Neg(f.big)}
}

// Compare orders f and g. ok is false when either side is NaN.
func (f Float) Compare(g Float) (c int, ok bool) {
	if f.IsNaN() || g.IsNaN() {
		return 0, false
	}
	switch {
	case f.big == nil && g.big == nil:
		switch {
		case f.small < g.small:
			return -1, true
		case f.small > g.small:
			return 1, true
		}
		return 0, true
	case f.big != nil && g.big != nil:
		return f.big.Cmp(g.big), true
	case f.big != nil:
		if math.IsInf(g.small, 0) {
			return -int(math.Copysign(1, g.small)), true
		}
		return f.big.Sign(), true
	default:
		if math.IsInf(f.small, 0) {
			return int(math.Copysign(1, f.small)), true
		}
		return -g.big.Sign(), true
	}
}

// Equal reports whether f == g. NaN is unequal to everything.
func (f Float) Equal(g Float) bool {
	c, ok := f.Compare(g)
	return ok && c == 0
}

// EqualFloats compares two optional floats: both absent are equal, exactly
// one absent is unequal.
func EqualFloats(a, b *Float) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// String renders f the way the language prints floats: always with a
// decimal point, exponent form outside [1e-4, 1e16), and Infinity/NaN
// spelled out.
func (f Float) String() string {
	if f.big != nil {
		return formatExponent(f.big.Text('e'))
	}
	return FormatFloat(f.small)
}

// FormatFloat formats a float64 with the rules of Float.String.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	abs := math.Abs(v)
	if v == 0 || (abs >= 1e-4 && abs < 1e16) {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return formatExponent(strconv.FormatFloat(v, 'e', -1, 64))
}

// formatExponent rewrites "1e+20" / "1.500E+600" as "1.0e+20" / "1.5e+600".
func formatExponent(s string) string {
	s = strings.ToLower(s)
	mant, exp, found := strings.Cut(s, "e")
	if !found {
		if !strings.Contains(mant, ".") {
			mant += ".0"
		}
		return mant
	}
	if strings.Contains(mant, ".") {
		mant = strings.TrimRight(mant, "0")
		if strings.HasSuffix(mant, ".") {
			mant += "0"
		}
	} else {
		mant += ".0"
	}
	if exp != "" && exp[0] != '+' && exp[0] != '-' {
		exp = "+" + exp
	}
	return mant + "e" + exp
}
