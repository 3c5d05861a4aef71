package vm

import (
	"sort"
	"strconv"
	"strings"

	"github.com/chazu/garnet/numeric"
)

// Equal implements ==. Numbers compare by value across integer and float;
// strings, symbols, arrays, hashes, ranges and times compare by content;
// everything else by identity.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	switch x := a.(type) {
	case *NilValue, *Boolean:
		return a.Kind() == b.Kind()
	case *Integer:
		switch y := b.(type) {
		case *Integer:
			return x.N.Equal(y.N)
		case *Float:
			c, ok := x.N.CmpFloat(y.F)
			return ok && c == 0
		}
	case *Float:
		switch y := b.(type) {
		case *Float:
			return x.F.Equal(y.F)
		case *Integer:
			c, ok := y.N.CmpFloat(x.F)
			return ok && c == 0
		}
	case *String:
		if y, ok := b.(*String); ok {
			return x.Text == y.Text
		}
	case *Symbol:
		if y, ok := b.(*Symbol); ok {
			return x.Name == y.Name
		}
	case *Array:
		if y, ok := b.(*Array); ok {
			return equalSlices(x.Elems, y.Elems, Equal)
		}
	case *Hash:
		if y, ok := b.(*Hash); ok {
			return equalHashes(x, y, Equal)
		}
	case *Range:
		if y, ok := b.(*Range); ok {
			return x.Exclusive == y.Exclusive && Equal(x.Start, y.Start) && Equal(x.End, y.End)
		}
	case *Time:
		if y, ok := b.(*Time); ok {
			return x.T.Equal(y.T)
		}
	}
	return false
}

// Eql is hash-key equality: like Equal, but integers and floats never match
// each other.
func Eql(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Array:
		return equalSlices(x.Elems, b.(*Array).Elems, Eql)
	case *Hash:
		return equalHashes(x, b.(*Hash), Eql)
	case *Range:
		y := b.(*Range)
		return x.Exclusive == y.Exclusive && Eql(x.Start, y.Start) && Eql(x.End, y.End)
	}
	return Equal(a, b)
}

func equalSlices(a, b []Value, eq func(a, b Value) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalHashes(a, b *Hash, eq func(a, b Value) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	same := true
	a.Each(func(k, v Value) bool {
		w, ok := b.Get(k)
		same = ok && eq(v, w)
		return same
	})
	return same
}

// ---------------------------------------------------------------------------
// Hash keys
// ---------------------------------------------------------------------------

// HashKey returns a string that is equal for two values exactly when Eql
// holds between them. Values compared by identity are keyed by their ID.
func HashKey(v Value) string {
	var b strings.Builder
	writeKey(&b, v)
	return b.String()
}

func writeKey(b *strings.Builder, v Value) {
	writeText := func(tag byte, s string) {
		b.WriteByte(tag)
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	switch x := v.(type) {
	case nil, *NilValue:
		b.WriteByte('n')
	case *Boolean:
		if x.Value {
			b.WriteByte('t')
		} else {
			b.WriteByte('f')
		}
	case *String:
		writeText('s', x.Text)
	case *Symbol:
		writeText('y', x.Name)
	case *Integer:
		writeText('i', x.N.String())
	case *Float:
		writeText('d', floatKey(x.F))
	case *Time:
		writeText('T', strconv.FormatInt(x.T.UnixNano(), 10))
	case *Array:
		b.WriteString("a" + strconv.Itoa(len(x.Elems)) + "[")
		for _, e := range x.Elems {
			writeKey(b, e)
		}
		b.WriteByte(']')
	case *Range:
		b.WriteString("r[")
		writeKey(b, x.Start)
		writeKey(b, x.End)
		if x.Exclusive {
			b.WriteByte('x')
		}
		b.WriteByte(']')
	case *Hash:
		keys := make([]string, 0, x.Len())
		x.Each(func(k, v Value) bool {
			keys = append(keys, HashKey(k)+"="+HashKey(v))
			return true
		})
		sort.Strings(keys)
		b.WriteString("h" + strconv.Itoa(len(keys)) + "{")
		for _, k := range keys {
			writeText('e', k)
		}
		b.WriteByte('}')
	default:
		b.WriteString("#" + strconv.FormatUint(v.ID(), 10))
	}
}

// floatKey keys -0.0 with 0.0.
func floatKey(f numeric.Float) string {
	if f.Sign() == 0 && !f.IsNaN() {
		return "0.0"
	}
	return f.String()
}

// ---------------------------------------------------------------------------
// Ordering
// ---------------------------------------------------------------------------

// Compare implements <=>. It fails with a RuntimeError when the values are
// not mutually comparable.
func Compare(a, b Value) (int, error) {
	switch x := a.(type) {
	case *Integer:
		switch y := b.(type) {
		case *Integer:
			return x.N.Cmp(y.N), nil
		case *Float:
			if c, ok := x.N.CmpFloat(y.F); ok {
				return c, nil
			}
			return 0, comparisonFailed(a, b)
		}
	case *Float:
		switch y := b.(type) {
		case *Float:
			return compareFloats(a, b, x.F, y.F)
		case *Integer:
			if c, ok := y.N.CmpFloat(x.F); ok {
				return -c, nil
			}
			return 0, comparisonFailed(a, b)
		}
	case *String:
		if y, ok := b.(*String); ok {
			return strings.Compare(x.Text, y.Text), nil
		}
	case *Symbol:
		if y, ok := b.(*Symbol); ok {
			return strings.Compare(x.Name, y.Name), nil
		}
	case *Time:
		if y, ok := b.(*Time); ok {
			return x.T.Compare(y.T), nil
		}
	case *Array:
		if y, ok := b.(*Array); ok {
			for i := 0; i < len(x.Elems) && i < len(y.Elems); i++ {
				c, err := Compare(x.Elems[i], y.Elems[i])
				if err != nil || c != 0 {
					return c, err
				}
			}
			return cmpInt(len(x.Elems), len(y.Elems)), nil
		}
	}
	return 0, comparisonFailed(a, b)
}

func compareFloats(a, b Value, x, y numeric.Float) (int, error) {
	c, ok := x.Compare(y)
	if !ok {
		return 0, comparisonFailed(a, b)
	}
	return c, nil
}

func comparisonFailed(a, b Value) error {
	return &Error{
		Kind:    RuntimeError,
		Class:   "ArgumentError",
		Message: "comparison of " + kindName(a) + " with " + inspectForError(b) + " failed",
	}
}

func inspectForError(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Inspect()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
