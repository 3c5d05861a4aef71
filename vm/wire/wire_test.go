package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/chazu/garnet/numeric"
	"github.com/chazu/garnet/vm"
)

func roundTrip(t *testing.T, rt *vm.Runtime, v vm.Value) vm.Value {
	t.Helper()
	data, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode(%s): %v", v.Inspect(), err)
	}
	got, err := Decode(rt, data)
	if err != nil {
		t.Fatalf("Decode(%s): %v", v.Inspect(), err)
	}
	return got
}

func TestRoundTrip(t *testing.T) {
	src := vm.NewRuntime()
	big, _ := numeric.ParseInt("123456789012345678901234567890")
	huge, _ := numeric.ParseFloat("1.5e400")

	h := src.NewHash()
	h.Set(src.Symbol("b"), src.Int(2))
	h.Set(src.NewString("a"), src.NewArray(src.True, src.Nil))
	h.Default = src.Int(-1)

	tests := []struct {
		name string
		v    vm.Value
	}{
		{"nil", src.Nil},
		{"true", src.True},
		{"false", src.False},
		{"string", src.NewString("héllo\n")},
		{"empty string", src.NewString("")},
		{"symbol", src.Symbol("key")},
		{"int", src.Int(-42)},
		{"zero", src.Int(0)},
		{"max int", src.Int(math.MaxInt64)},
		{"big int", src.NewInteger(big)},
		{"float", src.Float(2.5)},
		{"infinity", src.Float(math.Inf(-1))},
		{"big float", src.NewFloat(huge)},
		{"array", src.NewArray(src.Int(1), src.NewArray(src.NewString("x")))},
		{"hash", h},
		{"range", src.NewRange(src.Int(1), src.Int(10), true)},
		{"time", src.NewTime(time.Unix(1700000000, 123456789))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := vm.NewRuntime()
			got := roundTrip(t, dst, tt.v)
			if !vm.Eql(got, tt.v) {
				t.Errorf("round trip = %s, want %s", got.Inspect(), tt.v.Inspect())
			}
			if got.Inspect() != tt.v.Inspect() {
				t.Errorf("Inspect = %s, want %s", got.Inspect(), tt.v.Inspect())
			}
		})
	}
}

func TestRoundTripPreservesHashShape(t *testing.T) {
	rt := vm.NewRuntime()
	h := rt.NewHash()
	for _, k := range []string{"z", "a", "m"} {
		h.Set(rt.Symbol(k), rt.NewString(k))
	}
	h.Default = rt.NewString("none")

	got := roundTrip(t, rt, h).(*vm.Hash)
	if got.Inspect() != `{:z => "z", :a => "a", :m => "m"}` {
		t.Errorf("order = %s", got.Inspect())
	}
	if got.Fetch(rt.Symbol("q")).Inspect() != `"none"` {
		t.Error("default should survive the round trip")
	}
	if got.ID() == h.ID() {
		t.Error("decoded values get fresh identities")
	}
}

func TestNaNRoundTrip(t *testing.T) {
	rt := vm.NewRuntime()
	got := roundTrip(t, rt, rt.Float(math.NaN()))
	f, ok := got.(*vm.Float)
	if !ok || !f.F.IsNaN() {
		t.Errorf("got %s, want NaN", got.Inspect())
	}
}

func TestNegativeZeroRoundTrip(t *testing.T) {
	rt := vm.NewRuntime()
	got := roundTrip(t, rt, rt.Float(math.Copysign(0, -1)))
	f, ok := got.(*vm.Float)
	if !ok || f.F.Float64() != 0 || !math.Signbit(f.F.Float64()) {
		t.Errorf("got %s, want -0.0", got.Inspect())
	}
}

func TestDecodedSymbolsAreInterned(t *testing.T) {
	rt := vm.NewRuntime()
	sym := rt.Symbol("shared")
	got := roundTrip(t, rt, sym)
	if got != vm.Value(sym) {
		t.Error("decoding into the same runtime should return the interned symbol")
	}
}

func TestCanonicalEncoding(t *testing.T) {
	rt := vm.NewRuntime()
	a := rt.NewArray(rt.Int(1), rt.NewString("x"))
	b := rt.NewArray(rt.Int(1), rt.NewString("x"))
	da, err := Encode(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := Encode(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(da, db) {
		t.Error("equal values should encode identically")
	}
}

func TestUnencodable(t *testing.T) {
	rt := vm.NewRuntime()
	mod, _ := rt.DefineModule("Tools")
	tests := []struct {
		name string
		v    vm.Value
	}{
		{"proc", rt.NewProc("", nil)},
		{"thread", rt.NewThread("t")},
		{"module", mod},
		{"exception", rt.NewException("TypeError", "x")},
		{"pseudo", &vm.VariableRef{Name: "x"}},
		{"nested proc", rt.NewArray(rt.Int(1), rt.NewProc("", nil))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Encodable(tt.v) {
				t.Error("Encodable = true")
			}
			if _, err := Encode(tt.v); !errors.Is(err, ErrUnencodable) {
				t.Errorf("err = %v, want ErrUnencodable", err)
			}
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	rt := vm.NewRuntime()
	if _, err := Decode(rt, []byte{0xff, 0x00}); err == nil {
		t.Error("garbage should fail to decode")
	}
	if _, err := Decode(rt, []byte{0xa1, 0x01, 0x18, 0x63}); err == nil {
		t.Error("unknown tag should fail to decode")
	}
}
