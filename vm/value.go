package vm

import (
	"fmt"

	"github.com/chazu/garnet/shared"
)

// Kind tags each variant of the Value union.
type Kind uint8

const (
	KindNil Kind = iota
	KindTrue
	KindFalse
	KindString
	KindSymbol
	KindInteger
	KindFloat
	KindProc
	KindThread
	KindRange
	KindArray
	KindHash
	KindException
	KindTime
	KindWeakRef
	KindResponse
	KindModule

	// Internal-only pseudo-variants. They never receive an identity.
	KindVariableRef
	KindScopeRef
	KindProcRef
	KindSignal

	kindCount
)

var kindNames = [kindCount]string{
	KindNil:         "NilClass",
	KindTrue:        "TrueClass",
	KindFalse:       "FalseClass",
	KindString:      "String",
	KindSymbol:      "Symbol",
	KindInteger:     "Integer",
	KindFloat:       "Float",
	KindProc:        "Proc",
	KindThread:      "Thread",
	KindRange:       "Range",
	KindArray:       "Array",
	KindHash:        "Hash",
	KindException:   "Exception",
	KindTime:        "Time",
	KindWeakRef:     "WeakRef",
	KindResponse:    "Response",
	KindModule:      "Module",
	KindVariableRef: "VariableRef",
	KindScopeRef:    "ScopeRef",
	KindProcRef:     "ProcRef",
	KindSignal:      "Signal",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsPseudo reports whether k is an internal pseudo-variant.
func (k Kind) IsPseudo() bool { return k >= KindVariableRef && k < kindCount }

// Value is a runtime datum of the interpreted language.
//
// Inspect renders a literal-like form for debugging; LightInspect renders
// the human form used by string interpolation.
type Value interface {
	Kind() Kind
	ID() uint64
	Header() *Object
	Inspect() string
	LightInspect() string
}

// ---------------------------------------------------------------------------
// Object header
// ---------------------------------------------------------------------------

// Object is the header every non-pseudo value carries: its identity, owning
// class, instance attributes and singleton methods. Attribute and singleton
// tables are synchronized per operation; the value's own payload is not.
type Object struct {
	id         uint64
	class      *Module
	attrs      *shared.LockedMap[string, Value]
	singletons *shared.ReactiveMap[string, *Proc]
}

func sameProc(a, b *Proc) bool { return a == b }

func newObject(id uint64, class *Module) *Object {
	return &Object{
		id:         id,
		class:      class,
		attrs:      shared.NewLockedMap[string, Value](),
		singletons: shared.NewReactiveMap[string, *Proc](sameProc),
	}
}

// copyObject returns a header with a new identity and independent copies of
// o's tables.
func copyObject(id uint64, o *Object) *Object {
	return &Object{
		id:         id,
		class:      o.class,
		attrs:      o.attrs.Copy(),
		singletons: o.singletons.Copy(),
	}
}

// ID returns the value's identity.
func (o *Object) ID() uint64 { return o.id }

// Header returns o itself; it lets every variant satisfy Value.
func (o *Object) Header() *Object { return o }

// Class returns the owning class or module, if any.
func (o *Object) Class() *Module { return o.class }

// SetClass changes the owning class.
func (o *Object) SetClass(m *Module) { o.class = m }

// Attributes returns the instance attribute table.
func (o *Object) Attributes() *shared.LockedMap[string, Value] { return o.attrs }

// SingletonMethods returns the per-instance method table.
func (o *Object) SingletonMethods() *shared.ReactiveMap[string, *Proc] { return o.singletons }

// GetAttr returns the named instance attribute.
func (o *Object) GetAttr(name string) (Value, bool) { return o.attrs.Get(name) }

// SetAttr sets the named instance attribute.
func (o *Object) SetAttr(name string, v Value) { o.attrs.Set(name, v) }

// pseudo is embedded by the internal-only variants, which have no header.
type pseudo struct{}

func (pseudo) ID() uint64 { return 0 }
func (pseudo) Header() *Object { return nil }

// ---------------------------------------------------------------------------
// Truthiness
// ---------------------------------------------------------------------------

// Truthy reports whether v counts as true in a condition. Only nil and false
// are falsy; 0, "" and [] are truthy.
func Truthy(v Value) bool {
	if v == nil {
		return false
	}
	k := v.Kind()
	return k != KindNil && k != KindFalse
}

// IsNil reports whether v is the nil value (or a Go nil).
func IsNil(v Value) bool {
	return v == nil || v.Kind() == KindNil
}
