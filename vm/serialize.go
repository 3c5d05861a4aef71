package vm

import (
	"fmt"
	"strings"
)

// Serialize renders v as source text that evaluates to an equivalent value.
// Values without a source form (procs, threads, weak references, pseudo
// variants) fall back to Inspect.
func Serialize(v Value) string {
	var b strings.Builder
	serialize(&b, v)
	return b.String()
}

func serialize(b *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil:
		b.WriteString("nil")
	case *String:
		b.WriteString(quoteString(x.Text))
	case *Float:
		switch {
		case x.F.IsNaN():
			b.WriteString("Float::NAN")
		case x.F.IsInf() && x.F.Sign() > 0:
			b.WriteString("Float::INFINITY")
		case x.F.IsInf():
			b.WriteString("-Float::INFINITY")
		default:
			b.WriteString(x.F.String())
		}
	case *Array:
		b.WriteString("Array[")
		for i, e := range x.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			serialize(b, e)
		}
		b.WriteByte(']')
	case *Hash:
		b.WriteString("Hash[")
		first := true
		x.Each(func(k, val Value) bool {
			if !first {
				b.WriteString(", ")
			}
			first = false
			serialize(b, k)
			b.WriteString(" => ")
			serialize(b, val)
			return true
		})
		b.WriteByte(']')
	case *Range:
		b.WriteString("Range.new(")
		serialize(b, x.Start)
		b.WriteString(", ")
		serialize(b, x.End)
		fmt.Fprintf(b, ", %t)", x.Exclusive)
	case *Time:
		fmt.Fprintf(b, "Time.at(%d, %d, :nsec)", x.T.Unix(), x.T.Nanosecond())
	case *Exception:
		fmt.Fprintf(b, "%s.new(%s)", x.ClassName(), quoteString(x.Message))
	default:
		b.WriteString(v.Inspect())
	}
}
