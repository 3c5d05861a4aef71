package vm

import (
	"context"
	"strings"

	"github.com/chazu/garnet/numeric"
)

// LiteralKind tags a literal token produced by the parser.
type LiteralKind uint8

const (
	LitNil LiteralKind = iota
	LitTrue
	LitFalse
	LitString
	LitSymbol
	LitInteger
	LitFloat
)

func (k LiteralKind) String() string {
	switch k {
	case LitNil:
		return "nil"
	case LitTrue:
		return "true"
	case LitFalse:
		return "false"
	case LitString:
		return "string"
	case LitSymbol:
		return "symbol"
	case LitInteger:
		return "integer"
	case LitFloat:
		return "float"
	}
	return "unknown"
}

// Literal is a literal token. Interpolated applies to strings and symbols
// whose Text contains #{...} regions.
type Literal struct {
	Kind         LiteralKind
	Text         string
	Interpolated bool
}

// Materialize turns a literal token into a value. ev is only consulted for
// interpolated literals and may be nil otherwise.
func (rt *Runtime) Materialize(ctx context.Context, lit Literal, ev Evaluator) (Value, error) {
	switch lit.Kind {
	case LitNil:
		return rt.Nil, nil
	case LitTrue:
		return rt.True, nil
	case LitFalse:
		return rt.False, nil
	case LitString, LitSymbol:
		text := lit.Text
		if lit.Interpolated {
			if ev == nil {
				return nil, Errorf(InternalError, "interpolated literal without an evaluator")
			}
			v, err := rt.Interpolate(ctx, text, ev)
			if err != nil || IsSignal(v) {
				return v, err
			}
			text = v.(*String).Text
		}
		if lit.Kind == LitSymbol {
			return rt.Symbol(text), nil
		}
		return rt.NewString(text), nil
	case LitInteger:
		var n numeric.Int
		var err error
		if isHexLiteral(lit.Text) {
			n, err = numeric.ParseHexInt(lit.Text)
		} else {
			n, err = numeric.ParseInt(lit.Text)
		}
		if err != nil {
			return nil, wrapNumeric(err)
		}
		return rt.NewInteger(n), nil
	case LitFloat:
		f, err := numeric.ParseFloat(lit.Text)
		if err != nil {
			return nil, wrapNumeric(err)
		}
		return rt.NewFloat(f), nil
	}
	return nil, Errorf(InternalError, "unknown literal kind %d", lit.Kind)
}

func isHexLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}
