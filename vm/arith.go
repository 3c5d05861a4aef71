package vm

import (
	"fmt"

	"github.com/chazu/garnet/numeric"
)

// Arith applies a binary arithmetic operator: + - * / % on numbers through
// the numeric tower, + on strings and arrays as concatenation and * on a
// string or array and an integer as repetition. Integer op float promotes
// the integer first.
func (rt *Runtime) Arith(op string, a, b Value) (Value, error) {
	switch x := a.(type) {
	case *Integer:
		switch y := b.(type) {
		case *Integer:
			n, err := intOp(op, x.N, y.N)
			if err != nil {
				return nil, err
			}
			return rt.NewInteger(n), nil
		case *Float:
			return rt.floatArith(op, x.N.ToFloat(), y.F)
		}
	case *Float:
		switch y := b.(type) {
		case *Float:
			return rt.floatArith(op, x.F, y.F)
		case *Integer:
			return rt.floatArith(op, x.F, y.N.ToFloat())
		}
	case *String:
		switch y := b.(type) {
		case *String:
			if op == "+" {
				return rt.NewString(x.Text + y.Text), nil
			}
		case *Integer:
			if op == "*" {
				n, err := repeatCount(y)
				if err != nil {
					return nil, err
				}
				out := make([]byte, 0, len(x.Text)*n)
				for range n {
					out = append(out, x.Text...)
				}
				return rt.NewString(string(out)), nil
			}
		}
	case *Array:
		switch y := b.(type) {
		case *Array:
			if op == "+" {
				elems := make([]Value, 0, len(x.Elems)+len(y.Elems))
				elems = append(elems, x.Elems...)
				elems = append(elems, y.Elems...)
				return rt.NewArray(elems...), nil
			}
			if op == "-" {
				var elems []Value
				for _, e := range x.Elems {
					if !containsEql(y.Elems, e) {
						elems = append(elems, e)
					}
				}
				return rt.NewArray(elems...), nil
			}
		case *Integer:
			if op == "*" {
				n, err := repeatCount(y)
				if err != nil {
					return nil, err
				}
				elems := make([]Value, 0, len(x.Elems)*n)
				for range n {
					elems = append(elems, x.Elems...)
				}
				return rt.NewArray(elems...), nil
			}
		}
	}
	if !isNumeric(a) {
		return nil, &Error{
			Kind:    RuntimeError,
			Class:   "NoMethodError",
			Message: fmt.Sprintf("undefined method '%s' for %s", op, describe(rt, a)),
		}
	}
	return nil, &Error{
		Kind:    RuntimeError,
		Class:   "TypeError",
		Message: fmt.Sprintf("%s can't be coerced into %s", describeShort(b), describeShort(a)),
	}
}

func intOp(op string, a, b numeric.Int) (numeric.Int, error) {
	switch op {
	case "+":
		return a.Add(b), nil
	case "-":
		return a.Sub(b), nil
	case "*":
		return a.Mul(b), nil
	case "/":
		n, err := a.Div(b)
		return n, wrapNumeric(err)
	case "%":
		n, err := a.Mod(b)
		return n, wrapNumeric(err)
	}
	return numeric.Int{}, Errorf(InternalError, "unknown operator %q", op)
}

func (rt *Runtime) floatArith(op string, a, b numeric.Float) (Value, error) {
	var f numeric.Float
	switch op {
	case "+":
		f = a.Add(b)
	case "-":
		f = a.Sub(b)
	case "*":
		f = a.Mul(b)
	case "/":
		f = a.Div(b)
	case "%":
		f = a.Mod(b)
	default:
		return nil, Errorf(InternalError, "unknown operator %q", op)
	}
	return rt.NewFloat(f), nil
}

func repeatCount(v *Integer) (int, error) {
	n, ok := v.N.Int64()
	if !ok || n < 0 || n > 1<<31 {
		return 0, &Error{Kind: RuntimeError, Class: "ArgumentError", Message: "invalid repeat count " + v.N.String()}
	}
	return int(n), nil
}

func containsEql(elems []Value, v Value) bool {
	for _, e := range elems {
		if Eql(e, v) {
			return true
		}
	}
	return false
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case *Integer, *Float:
		return true
	}
	return false
}

func describeShort(v Value) string {
	switch v.Kind() {
	case KindNil, KindTrue, KindFalse:
		return v.Inspect()
	}
	return v.Kind().String()
}
