package vm

import (
	"context"
	"fmt"
	"strings"
)

// Expr is a parsed expression. Its structure belongs to the evaluator.
type Expr any

// Evaluator is the capability to parse and evaluate expression text in the
// current scope. Eval may return a Signal.
type Evaluator interface {
	Parse(src string) (Expr, error)
	Eval(ctx context.Context, expr Expr) (Value, error)
}

// opener is the offset of a #{ on the scan stack.
type opener struct {
	offset  int
	escaped bool
}

// Interpolate builds the string for an interpolated literal. Every #{...}
// region is evaluated and replaced by its LightInspect rendering. The scan
// keeps a stack of open #{ offsets and each } closes the most recent one, so
// inner regions are spliced before the regions that enclose them. Scanning
// resumes right after each splice. A } with no open #{ is kept verbatim, as
// is an unterminated #{. A backslash escapes the byte after it. Outside a
// region \#{ becomes a literal #{; inside one it is left for the nested
// literal to unescape, and its } closes it without evaluating anything.
// Other escapes are left as written. If a region evaluates to a Signal, that
// signal is returned instead of a string.
func (rt *Runtime) Interpolate(ctx context.Context, raw string, ev Evaluator) (Value, error) {
	text := raw
	var open []opener
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			if strings.HasPrefix(text[i+1:], "#{") {
				if len(open) == 0 {
					text = text[:i] + text[i+1:]
				} else {
					open = append(open, opener{offset: i + 1, escaped: true})
					i++
				}
			}
			i++
		case '#':
			if i+1 < len(text) && text[i+1] == '{' {
				open = append(open, opener{offset: i})
				i++
			}
		case '}':
			if len(open) == 0 {
				continue
			}
			top := open[len(open)-1]
			open = open[:len(open)-1]
			if top.escaped {
				continue
			}
			start := top.offset
			v, err := rt.evalFragment(ctx, text[start+2:i], ev)
			if err != nil {
				return nil, err
			}
			if IsSignal(v) {
				return v, nil
			}
			rendered := v.LightInspect()
			text = text[:start] + rendered + text[i+1:]
			i = start + len(rendered) - 1
		}
	}
	return rt.NewString(text), nil
}

func (rt *Runtime) evalFragment(ctx context.Context, src string, ev Evaluator) (Value, error) {
	expr, ok := rt.exprs.Load(src)
	if !ok {
		var err error
		expr, err = ev.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("interpolating #{%s}: %w", src, err)
		}
		rt.exprs.Store(src, expr)
	}
	v, err := ev.Eval(ctx, expr)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return rt.Nil, nil
	}
	return v, nil
}
