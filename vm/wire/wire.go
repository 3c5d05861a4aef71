// Package wire encodes plain-data runtime values as canonical CBOR.
//
// Only values that are pure data travel: nil, booleans, strings, symbols,
// integers, floats, arrays, hashes, ranges and times. Numbers outside the
// fixed-width tier are carried as decimal text and reparsed on decode.
// Decoded values get fresh identities from the target runtime.
package wire

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/garnet/numeric"
	"github.com/chazu/garnet/vm"
	"github.com/fxamacker/cbor/v2"
)

// ErrUnencodable is returned for values with no plain-data form.
var ErrUnencodable = errors.New("wire: value cannot be encoded")

// maxDepth bounds container nesting on both encode and decode.
const maxDepth = 512

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
	dm, err := cbor.DecOptions{MaxNestedLevels: maxDepth * 2}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

type tag uint8

const (
	tagNil tag = iota + 1
	tagTrue
	tagFalse
	tagString
	tagSymbol
	tagInt
	tagBigInt
	tagFloat
	tagBigFloat
	tagArray
	tagHash
	tagRange
	tagTime
)

// node is the on-wire shape of a value. Hash entries are flattened into
// Elems as alternating keys and values.
type node struct {
	Tag       tag     `cbor:"1,keyasint"`
	Text      string  `cbor:"2,keyasint,omitempty"`
	Int       int64   `cbor:"3,keyasint,omitempty"`
	Float     float64 `cbor:"4,keyasint"` // kept when zero so -0.0 keeps its sign
	Elems     []node  `cbor:"5,keyasint,omitempty"`
	Default   *node   `cbor:"6,keyasint,omitempty"`
	Exclusive bool    `cbor:"7,keyasint,omitempty"`
	Nanos     int64   `cbor:"8,keyasint,omitempty"`
}

// Encode serializes v.
func Encode(v vm.Value) ([]byte, error) {
	n, err := toNode(v, 0)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(n)
}

// Encodable reports whether v (and everything it contains) has a wire form.
func Encodable(v vm.Value) bool {
	_, err := toNode(v, 0)
	return err == nil
}

func toNode(v vm.Value, depth int) (node, error) {
	if depth > maxDepth {
		return node{}, fmt.Errorf("%w: nesting deeper than %d", ErrUnencodable, maxDepth)
	}
	switch x := v.(type) {
	case nil, *vm.NilValue:
		return node{Tag: tagNil}, nil
	case *vm.Boolean:
		if x.Value {
			return node{Tag: tagTrue}, nil
		}
		return node{Tag: tagFalse}, nil
	case *vm.String:
		return node{Tag: tagString, Text: x.Text}, nil
	case *vm.Symbol:
		return node{Tag: tagSymbol, Text: x.Name}, nil
	case *vm.Integer:
		if n, ok := x.N.Int64(); ok {
			return node{Tag: tagInt, Int: n}, nil
		}
		return node{Tag: tagBigInt, Text: x.N.String()}, nil
	case *vm.Float:
		if x.F.IsBig() {
			return node{Tag: tagBigFloat, Text: x.F.String()}, nil
		}
		return node{Tag: tagFloat, Float: x.F.Float64()}, nil
	case *vm.Array:
		elems, err := toNodes(x.Elems, depth)
		if err != nil {
			return node{}, err
		}
		return node{Tag: tagArray, Elems: elems}, nil
	case *vm.Hash:
		n := node{Tag: tagHash, Elems: make([]node, 0, 2*x.Len())}
		var err error
		x.Each(func(k, val vm.Value) bool {
			var kn, vn node
			if kn, err = toNode(k, depth+1); err != nil {
				return false
			}
			if vn, err = toNode(val, depth+1); err != nil {
				return false
			}
			n.Elems = append(n.Elems, kn, vn)
			return true
		})
		if err != nil {
			return node{}, err
		}
		if !vm.IsNil(x.Default) {
			d, err := toNode(x.Default, depth+1)
			if err != nil {
				return node{}, err
			}
			n.Default = &d
		}
		return n, nil
	case *vm.Range:
		elems, err := toNodes([]vm.Value{x.Start, x.End}, depth)
		if err != nil {
			return node{}, err
		}
		return node{Tag: tagRange, Elems: elems, Exclusive: x.Exclusive}, nil
	case *vm.Time:
		return node{Tag: tagTime, Int: x.T.Unix(), Nanos: int64(x.T.Nanosecond())}, nil
	}
	return node{}, fmt.Errorf("%w: %s", ErrUnencodable, v.Kind())
}

func toNodes(vals []vm.Value, depth int) ([]node, error) {
	out := make([]node, len(vals))
	for i, e := range vals {
		n, err := toNode(e, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// Decode reconstructs a value in rt from data produced by Encode.
func Decode(rt *vm.Runtime, data []byte) (vm.Value, error) {
	var n node
	if err := decMode.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("wire: unmarshal value: %w", err)
	}
	return fromNode(rt, n)
}

func fromNode(rt *vm.Runtime, n node) (vm.Value, error) {
	switch n.Tag {
	case tagNil:
		return rt.Nil, nil
	case tagTrue:
		return rt.True, nil
	case tagFalse:
		return rt.False, nil
	case tagString:
		return rt.NewString(n.Text), nil
	case tagSymbol:
		return rt.Symbol(n.Text), nil
	case tagInt:
		return rt.Int(n.Int), nil
	case tagBigInt:
		i, err := numeric.ParseInt(n.Text)
		if err != nil {
			return nil, fmt.Errorf("wire: big integer: %w", err)
		}
		return rt.NewInteger(i), nil
	case tagFloat:
		return rt.Float(n.Float), nil
	case tagBigFloat:
		f, err := numeric.ParseFloat(n.Text)
		if err != nil {
			return nil, fmt.Errorf("wire: big float: %w", err)
		}
		return rt.NewFloat(f), nil
	case tagArray:
		elems, err := fromNodes(rt, n.Elems)
		if err != nil {
			return nil, err
		}
		return rt.NewArray(elems...), nil
	case tagHash:
		if len(n.Elems)%2 != 0 {
			return nil, fmt.Errorf("wire: odd number of hash elements (%d)", len(n.Elems))
		}
		elems, err := fromNodes(rt, n.Elems)
		if err != nil {
			return nil, err
		}
		h := rt.NewHash()
		for i := 0; i < len(elems); i += 2 {
			h.Set(elems[i], elems[i+1])
		}
		if n.Default != nil {
			if h.Default, err = fromNode(rt, *n.Default); err != nil {
				return nil, err
			}
		}
		return h, nil
	case tagRange:
		if len(n.Elems) != 2 {
			return nil, fmt.Errorf("wire: range with %d bounds", len(n.Elems))
		}
		bounds, err := fromNodes(rt, n.Elems)
		if err != nil {
			return nil, err
		}
		return rt.NewRange(bounds[0], bounds[1], n.Exclusive), nil
	case tagTime:
		return rt.NewTime(time.Unix(n.Int, n.Nanos)), nil
	}
	return nil, fmt.Errorf("wire: unknown tag %d", n.Tag)
}

func fromNodes(rt *vm.Runtime, nodes []node) ([]vm.Value, error) {
	out := make([]vm.Value, len(nodes))
	for i, n := range nodes {
		v, err := fromNode(rt, n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
