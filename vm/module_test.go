package vm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func constProc(rt *Runtime, v Value) *Proc {
	return rt.NewProc("", func(context.Context, Value, []Value) (Value, error) { return v, nil })
}

func TestModuleChainLookup(t *testing.T) {
	rt := NewRuntime()
	animal, err := rt.DefineClass("Animal", nil)
	if err != nil {
		t.Fatal(err)
	}
	dog, err := rt.DefineClass("Dog", animal)
	if err != nil {
		t.Fatal(err)
	}
	animal.DefineMethod("speak", constProc(rt, rt.NewString("...")))

	p, ok := dog.FindMethod("speak")
	if !ok {
		t.Fatal("Dog should inherit speak")
	}
	if p.DisplayName() != "speak" {
		t.Errorf("display name = %q", p.DisplayName())
	}
	if got := dog.Ancestors(); len(got) != 3 || got[2] != rt.ObjectClass {
		t.Errorf("ancestors = %v", got)
	}
	if !dog.IsA(animal) || animal.IsA(dog) {
		t.Error("IsA should follow the superclass chain only upwards")
	}
}

func TestModuleCacheInvalidation(t *testing.T) {
	rt := NewRuntime()
	base, _ := rt.DefineClass("Base", nil)
	mid, _ := rt.DefineClass("Mid", base)
	leaf, _ := rt.DefineClass("Leaf", mid)

	if _, ok := leaf.FindMethod("greet"); ok {
		t.Fatal("greet should not exist yet")
	}
	base.DefineMethod("greet", constProc(rt, rt.Int(1)))
	p, ok := leaf.FindMethod("greet")
	if !ok {
		t.Fatal("a cached miss should be invalidated by a definition up the chain")
	}

	override := constProc(rt, rt.Int(2))
	mid.DefineMethod("greet", override)
	if p2, _ := leaf.FindMethod("greet"); p2 != override || p2 == p {
		t.Error("an override in the middle of the chain should win")
	}

	mid.RemoveMethod("greet")
	if p3, _ := leaf.FindMethod("greet"); p3 != p {
		t.Error("removing the override should expose the base method again")
	}
	if mid.RemoveMethod("greet") {
		t.Error("removing an absent method reports false")
	}
}

func TestDefineClassMismatch(t *testing.T) {
	rt := NewRuntime()
	a, _ := rt.DefineClass("A", nil)
	b, _ := rt.DefineClass("B", nil)
	if _, err := rt.DefineClass("C", a); err != nil {
		t.Fatal(err)
	}
	if again, err := rt.DefineClass("C", a); err != nil || again.Superclass() != a {
		t.Errorf("reopening with the same superclass = (%v, %v)", again, err)
	}
	if _, err := rt.DefineClass("C", b); !errors.Is(err, ErrAPI) {
		t.Errorf("superclass mismatch err = %v", err)
	}
	if _, err := rt.DefineModule("C"); !errors.Is(err, ErrAPI) {
		t.Errorf("reopening a class as a module err = %v", err)
	}
	rt.DefineModule("M")
	if _, err := rt.DefineClass("M", nil); !errors.Is(err, ErrAPI) {
		t.Errorf("reopening a module as a class err = %v", err)
	}
}

func TestSendAndMethodMissing(t *testing.T) {
	rt := NewRuntime()
	cls, _ := rt.DefineClass("Echo", nil)
	cls.DefineMethod("twice", rt.NewProc("", func(_ context.Context, self Value, args []Value) (Value, error) {
		return rt.Arith("*", args[0], rt.Int(2))
	}))

	obj := rt.NewArray()
	obj.SetClass(cls)

	got, err := rt.Send(context.Background(), obj, "twice", rt.Int(21))
	if err != nil || got.Inspect() != "42" {
		t.Fatalf("twice = (%v, %v)", got, err)
	}

	_, err = rt.Send(context.Background(), obj, "nope")
	var ve *Error
	if !errors.As(err, &ve) || ve.ClassName() != "NoMethodError" {
		t.Fatalf("missing method err = %v", err)
	}
	if !strings.Contains(ve.Message, "'nope'") || !strings.Contains(ve.Message, "Echo") {
		t.Errorf("message = %q", ve.Message)
	}

	var seen []Value
	cls.DefineMethod("method_missing", rt.NewProc("", func(_ context.Context, _ Value, args []Value) (Value, error) {
		seen = args
		return rt.Nil, nil
	}))
	if _, err := rt.Send(context.Background(), obj, "nope", rt.Int(1)); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != rt.Symbol("nope") || seen[1].Inspect() != "1" {
		t.Errorf("method_missing args = %v", seen)
	}
}

func TestSingletonMethodsTakePrecedence(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewString("x")
	other := rt.NewString("y")
	rt.ClassOf(s).DefineMethod("who", constProc(rt, rt.Symbol("class")))
	s.SingletonMethods().Set("who", constProc(rt, rt.Symbol("singleton")))

	got, err := rt.Send(context.Background(), s, "who")
	if err != nil || got.Inspect() != ":singleton" {
		t.Errorf("singleton dispatch = (%v, %v)", got, err)
	}
	got, err = rt.Send(context.Background(), other, "who")
	if err != nil || got.Inspect() != ":class" {
		t.Errorf("class dispatch = (%v, %v)", got, err)
	}
}

func TestNoMethodOnNil(t *testing.T) {
	rt := NewRuntime()
	_, err := rt.Send(context.Background(), rt.Nil, "upcase")
	if err == nil || !strings.Contains(err.Error(), "for nil") {
		t.Errorf("err = %v", err)
	}
}

func TestProcWithoutNativeBody(t *testing.T) {
	rt := NewRuntime()
	p := rt.NewProc("block", nil)
	if _, err := p.Call(context.Background(), rt.Nil, nil); !errors.Is(err, ErrAPI) {
		t.Errorf("err = %v, want ApiError", err)
	}
}

func TestModuleConstants(t *testing.T) {
	rt := NewRuntime()
	base, _ := rt.DefineClass("Shape", nil)
	sq, _ := rt.DefineClass("Square", base)
	base.Constants.Set("SIDES", rt.Int(4))
	if v, ok := sq.Const("SIDES"); !ok || v.Inspect() != "4" {
		t.Errorf("inherited constant = (%v, %v)", v, ok)
	}
	if _, ok := sq.Const("MISSING"); ok {
		t.Error("missing constant should not resolve")
	}
}
