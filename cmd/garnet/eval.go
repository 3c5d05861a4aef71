package main

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/chazu/garnet/vm"
)

var (
	intLiteral   = regexp.MustCompile(`^[+-]?(0[xX][0-9a-fA-F_]+|[0-9][0-9_]*)$`)
	floatLiteral = regexp.MustCompile(`^[+-]?[0-9][0-9_]*(\.[0-9][0-9_]*)?([eE][+-]?[0-9]+)?$`)
	// precedence lists operator levels from loosest to tightest binding.
	precedence = [][]string{{"+", "-"}, {"*", "/", "%"}}
)

// classify maps command-line text to a literal token. Text that is not a
// recognizable literal is taken as a plain string.
func classify(text string) vm.Literal {
	switch {
	case text == "nil":
		return vm.Literal{Kind: vm.LitNil}
	case text == "true":
		return vm.Literal{Kind: vm.LitTrue}
	case text == "false":
		return vm.Literal{Kind: vm.LitFalse}
	case len(text) > 1 && text[0] == ':':
		name := text[1:]
		if len(name) > 1 && name[0] == '"' && name[len(name)-1] == '"' {
			return vm.Literal{Kind: vm.LitSymbol, Text: name[1 : len(name)-1], Interpolated: true}
		}
		return vm.Literal{Kind: vm.LitSymbol, Text: name}
	case len(text) > 1 && text[0] == '"' && text[len(text)-1] == '"':
		return vm.Literal{Kind: vm.LitString, Text: text[1 : len(text)-1], Interpolated: true}
	case intLiteral.MatchString(text):
		return vm.Literal{Kind: vm.LitInteger, Text: text}
	case floatLiteral.MatchString(text):
		return vm.Literal{Kind: vm.LitFloat, Text: text}
	}
	return vm.Literal{Kind: vm.LitString, Text: text}
}

// evaluator understands literals, $globals and a single binary arithmetic
// operator between two operands separated by spaces ("1 + 2", "$n * 3").
// Double-quoted strings are interpolated through the evaluator itself.
type evaluator struct {
	rt *vm.Runtime
}

type (
	literalExpr struct{ lit vm.Literal }
	globalExpr  struct{ name string }
	binaryExpr  struct {
		op          string
		left, right vm.Expr
	}
)

func (e *evaluator) Parse(src string) (vm.Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, vm.Errorf(vm.SyntaxError, "empty expression")
	}
	outside := outsideStrings(src)
	for _, level := range precedence {
		op, at := lastOperator(src, outside, level)
		if at < 0 {
			continue
		}
		left, err := e.Parse(src[:at])
		if err != nil {
			return nil, err
		}
		right, err := e.Parse(src[at+len(op)+2:])
		if err != nil {
			return nil, err
		}
		return binaryExpr{op: op, left: left, right: right}, nil
	}
	if strings.HasPrefix(src, "$") {
		if len(src) == 1 {
			return nil, vm.Errorf(vm.SyntaxError, "missing global name after $")
		}
		return globalExpr{name: src}, nil
	}
	return literalExpr{lit: classify(src)}, nil
}

// outsideStrings marks the bytes of src that lie outside every string
// literal. A #{...} region inside a string holds code of its own, which is
// still inside the enclosing literal.
func outsideStrings(src string) []bool {
	outside := make([]bool, len(src))
	inString := []bool{false}
	for i := 0; i < len(src); i++ {
		top := inString[len(inString)-1]
		switch {
		case top && src[i] == '\\':
			i++
		case top && src[i] == '"':
			inString = inString[:len(inString)-1]
		case top && src[i] == '#' && i+1 < len(src) && src[i+1] == '{':
			inString = append(inString, false)
			i++
		case top:
		case src[i] == '"':
			inString = append(inString, true)
		case src[i] == '}' && len(inString) > 1:
			inString = inString[:len(inString)-1]
		default:
			outside[i] = len(inString) == 1
		}
	}
	return outside
}

// lastOperator finds the rightmost space-delimited operator of a level that
// lies outside string literals, so operators of equal precedence associate
// to the left.
func lastOperator(src string, outside []bool, level []string) (string, int) {
	op, at := "", -1
	for _, candidate := range level {
		token := " " + candidate + " "
		for end := len(src); end > at; {
			i := strings.LastIndex(src[:end], token)
			if i <= at {
				break
			}
			if outside[i] && outside[i+len(token)-1] {
				op, at = candidate, i
				break
			}
			end = i + len(token) - 1
		}
	}
	return op, at
}

func (e *evaluator) Eval(ctx context.Context, expr vm.Expr) (vm.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch x := expr.(type) {
	case literalExpr:
		return e.rt.Materialize(ctx, x.lit, e)
	case globalExpr:
		return e.rt.Global(x.name), nil
	case binaryExpr:
		l, err := e.Eval(ctx, x.left)
		if err != nil || vm.IsSignal(l) {
			return l, err
		}
		r, err := e.Eval(ctx, x.right)
		if err != nil || vm.IsSignal(r) {
			return r, err
		}
		return e.rt.Arith(x.op, l, r)
	}
	return nil, vm.Errorf(vm.InternalError, "unknown expression %T", expr)
}

// evalText parses and evaluates src.
func (e *evaluator) evalText(ctx context.Context, src string) (vm.Value, error) {
	expr, err := e.Parse(src)
	if err != nil {
		return nil, err
	}
	v, err := e.Eval(ctx, expr)
	if err != nil {
		return nil, err
	}
	if vm.IsSignal(v) {
		// An uncaught stop ends evaluation quietly with nil.
		if err := vm.Uncaught(v); err != nil {
			return nil, err
		}
		return e.rt.Nil, nil
	}
	return v, nil
}

// parseValue materializes a single command-line literal.
func parseValue(ctx context.Context, rt *vm.Runtime, text string) (vm.Value, error) {
	v, err := rt.Materialize(ctx, classify(text), &evaluator{rt: rt})
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", text, err)
	}
	return v, nil
}
