package vm

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/garnet/numeric"
	"github.com/chazu/garnet/shared"
)

func logger() commonlog.Logger { return commonlog.GetLogger("garnet.vm") }

// DefaultExprCacheCapacity bounds the parsed-fragment cache used by string
// interpolation when Options leaves it unset.
const DefaultExprCacheCapacity = 4096

// Options configures a Runtime.
type Options struct {
	ExprCacheCapacity int
}

// Runtime is one interpreter instance. It owns the identity counter, the
// global variable table, the symbol table and the class hierarchy. Values
// from different runtimes must not be mixed.
type Runtime struct {
	// Instance distinguishes runtimes in logs and persisted data.
	Instance uuid.UUID

	ids atomic.Uint64

	Nil   *NilValue
	True  *Boolean
	False *Boolean

	Symbols *SymbolTable
	Globals *shared.ReactiveMap[string, Value]
	Modules *shared.LockedMap[string, *Module]

	exprs *shared.Cache[string, Expr]

	ObjectClass    *Module
	ModuleClass    *Module
	ExceptionClass *Module
	kindClasses    [kindCount]*Module
}

// NewRuntime creates a runtime with default options.
func NewRuntime() *Runtime {
	return NewRuntimeWithOptions(Options{})
}

// NewRuntimeWithOptions creates a runtime.
func NewRuntimeWithOptions(opts Options) *Runtime {
	if opts.ExprCacheCapacity <= 0 {
		opts.ExprCacheCapacity = DefaultExprCacheCapacity
	}
	rt := &Runtime{
		Instance: uuid.New(),
		Globals:  shared.NewReactiveMap[string, Value](globalUnchanged),
		Modules:  shared.NewLockedMap[string, *Module](),
		exprs:    shared.NewCache[string, Expr](opts.ExprCacheCapacity),
	}
	rt.bootstrap()
	rt.Symbols = newSymbolTable(rt)
	rt.Nil = &NilValue{Object: rt.newHeader(KindNil)}
	rt.True = &Boolean{Object: rt.newHeader(KindTrue), Value: true}
	rt.False = &Boolean{Object: rt.newHeader(KindFalse)}
	logger().Debugf("runtime %s started", rt.Instance)
	return rt
}

// bootstrap builds the core class hierarchy. Object and Module are created
// before any header can name its class, so their headers are patched after.
func (rt *Runtime) bootstrap() {
	rt.ObjectClass = rt.newModule("Object", nil, true)
	rt.ModuleClass = rt.newModule("Module", rt.ObjectClass, true)
	rt.ObjectClass.class = rt.ModuleClass
	rt.ModuleClass.class = rt.ModuleClass

	for k := KindNil; k < KindVariableRef; k++ {
		switch k {
		case KindModule:
			rt.kindClasses[k] = rt.ModuleClass
		default:
			rt.kindClasses[k] = rt.newModule(k.String(), rt.ObjectClass, true)
		}
	}
	rt.ExceptionClass = rt.kindClasses[KindException]
	for _, name := range []string{"StandardError", "ScriptError"} {
		rt.newModule(name, rt.ExceptionClass, true)
	}
	standard, _ := rt.Modules.Get("StandardError")
	script, _ := rt.Modules.Get("ScriptError")
	rt.newModule("SyntaxError", script, true)
	for _, name := range []string{"RuntimeError", "InternalError", "ApiError", "ZeroDivisionError", "NoMethodError", "TypeError", "ArgumentError"} {
		rt.newModule(name, standard, true)
	}
}

func (rt *Runtime) nextID() uint64 { return rt.ids.Add(1) }

// newHeader allocates a header with a fresh identity owned by the core
// class for kind.
func (rt *Runtime) newHeader(kind Kind) *Object {
	return newObject(rt.nextID(), rt.kindClasses[kind])
}

// LastID returns the most recently assigned identity.
func (rt *Runtime) LastID() uint64 { return rt.ids.Load() }

// ClassOf returns the class of v; nil for pseudo-variants.
func (rt *Runtime) ClassOf(v Value) *Module {
	if h := v.Header(); h != nil && h.class != nil {
		return h.class
	}
	if k := v.Kind(); !k.IsPseudo() {
		return rt.kindClasses[k]
	}
	return nil
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// Bool returns the true or false singleton.
func (rt *Runtime) Bool(b bool) *Boolean {
	if b {
		return rt.True
	}
	return rt.False
}

// NewString creates a string value.
func (rt *Runtime) NewString(s string) *String {
	return &String{Object: rt.newHeader(KindString), Text: s}
}

// Symbol interns name.
func (rt *Runtime) Symbol(name string) *Symbol { return rt.Symbols.Intern(name) }

// NewInteger creates an integer value.
func (rt *Runtime) NewInteger(n numeric.Int) *Integer {
	return &Integer{Object: rt.newHeader(KindInteger), N: n}
}

// Int creates an integer value from an int64.
func (rt *Runtime) Int(n int64) *Integer { return rt.NewInteger(numeric.IntFrom(n)) }

// NewFloat creates a float value.
func (rt *Runtime) NewFloat(f numeric.Float) *Float {
	return &Float{Object: rt.newHeader(KindFloat), F: f}
}

// Float creates a float value from a float64.
func (rt *Runtime) Float(f float64) *Float { return rt.NewFloat(numeric.FloatFrom(f)) }

// NewArray creates an array holding elems. The slice is not copied.
func (rt *Runtime) NewArray(elems ...Value) *Array {
	return &Array{Object: rt.newHeader(KindArray), Elems: elems}
}

// NewRange creates a range.
func (rt *Runtime) NewRange(start, end Value, exclusive bool) *Range {
	return &Range{Object: rt.newHeader(KindRange), Start: start, End: end, Exclusive: exclusive}
}

// NewProc creates a callable. fn may be nil for procs whose body is run by
// the evaluator.
func (rt *Runtime) NewProc(name string, fn NativeFunc) *Proc {
	p := &Proc{Object: rt.newHeader(KindProc), Native: fn}
	p.name = name
	return p
}

// NewThread creates a handle for a logical thread.
func (rt *Runtime) NewThread(name string) *Thread {
	t := &Thread{Object: rt.newHeader(KindThread), Handle: uuid.New(), Name: name}
	t.status.Store(int32(ThreadRunnable))
	return t
}

// NewException creates an exception of the named class. Unknown class names
// fall back to RuntimeError.
func (rt *Runtime) NewException(class, message string) *Exception {
	e := &Exception{Object: rt.newHeader(KindException), Message: message}
	if m, ok := rt.Modules.Get(class); ok && m.IsA(rt.ExceptionClass) {
		e.class = m
	} else {
		e.class, _ = rt.Modules.Get("RuntimeError")
	}
	return e
}

// ExceptionFromError converts err into an exception value so a language-level
// handler can rescue it.
func (rt *Runtime) ExceptionFromError(err error) *Exception {
	var ve *Error
	if !errors.As(err, &ve) {
		ve = &Error{Kind: RuntimeError, Message: err.Error(), Cause: err}
	}
	exc := rt.NewException(ve.ClassName(), ve.Message)
	exc.Err = ve
	return exc
}

// NewTime creates a timestamp.
func (rt *Runtime) NewTime(t time.Time) *Time {
	return &Time{Object: rt.newHeader(KindTime), T: t}
}

// NewResponse wraps the result of an external request.
func (rt *Runtime) NewResponse(status int, header http.Header, body string) *Response {
	if header == nil {
		header = http.Header{}
	}
	return &Response{Object: rt.newHeader(KindResponse), Status: status, Headers: header, Body: body}
}

// ---------------------------------------------------------------------------
// Globals
// ---------------------------------------------------------------------------

// GlobalName normalizes a global variable name to its $-prefixed form.
func GlobalName(name string) string {
	if strings.HasPrefix(name, "$") {
		return name
	}
	return "$" + name
}

// Global reads a global variable; unset globals read as nil.
func (rt *Runtime) Global(name string) Value {
	if v, ok := rt.Globals.Get(GlobalName(name)); ok {
		return v
	}
	return rt.Nil
}

// SetGlobal assigns a global variable. Signals and other pseudo-variants
// cannot be stored.
func (rt *Runtime) SetGlobal(name string, v Value) error {
	if v == nil || v.Kind().IsPseudo() {
		return Errorf(InternalError, "cannot assign %s to a global", kindName(v))
	}
	rt.Globals.Set(GlobalName(name), v)
	return nil
}

// globalUnchanged elides reassignment of an equal immutable value. Mutable
// values always fire so observers see in-place changes on reassignment.
func globalUnchanged(a, b Value) bool {
	switch a.Kind() {
	case KindString, KindArray, KindHash, KindRange:
		return false
	}
	return Eql(a, b)
}

func kindName(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Kind().String()
}
