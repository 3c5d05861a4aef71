package vm

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/chazu/garnet/shared"
)

// Module is a class or module. Its method table is reactive: defining or
// removing a method anywhere up the superclass chain invalidates the lookup
// caches of every descendant.
type Module struct {
	*Object
	Name      string
	IsClass   bool
	Methods   *shared.ReactiveMap[string, *Proc]
	Constants *shared.LockedMap[string, Value]

	super  *Module
	lookup *shared.LockedMap[string, cachedMethod]
	epoch  atomic.Uint64
}

// cachedMethod is a lookup result, valid while its epoch matches the
// module's. A nil proc caches a miss.
type cachedMethod struct {
	proc  *Proc
	epoch uint64
}

// newModule creates a module and registers it under name when name is not
// empty.
func (rt *Runtime) newModule(name string, super *Module, isClass bool) *Module {
	m := &Module{
		Object:    newObject(rt.nextID(), rt.ModuleClass),
		Name:      name,
		IsClass:   isClass,
		Methods:   shared.NewReactiveMap[string, *Proc](sameProc),
		Constants: shared.NewLockedMap[string, Value](),
		super:     super,
		lookup:    shared.NewLockedMap[string, cachedMethod](),
	}
	for anc := m; anc != nil; anc = anc.super {
		shared.Subscribe(anc.Methods.OnSet, m, func(m *Module, _ shared.EntrySet[string, *Proc]) {
			m.invalidate()
		})
		shared.Subscribe(anc.Methods.OnRemove, m, func(m *Module, _ string) {
			m.invalidate()
		})
	}
	if name != "" {
		rt.Modules.Set(name, m)
	}
	return m
}

// DefineClass returns the class registered under name, creating it with the
// given superclass (Object when nil) if absent. Reopening a class with a
// different superclass is an ApiError.
func (rt *Runtime) DefineClass(name string, super *Module) (*Module, error) {
	if super == nil {
		super = rt.ObjectClass
	}
	if existing, ok := rt.Modules.Get(name); ok {
		if !existing.IsClass {
			return nil, Errorf(ApiError, "%s is not a class", name)
		}
		if existing.super != super {
			return nil, Errorf(ApiError, "superclass mismatch for class %s", name)
		}
		return existing, nil
	}
	return rt.newModule(name, super, true), nil
}

// DefineModule returns the module registered under name, creating it if
// absent.
func (rt *Runtime) DefineModule(name string) (*Module, error) {
	if existing, ok := rt.Modules.Get(name); ok {
		if existing.IsClass {
			return nil, Errorf(ApiError, "%s is not a module", name)
		}
		return existing, nil
	}
	return rt.newModule(name, nil, false), nil
}

func (m *Module) Kind() Kind { return KindModule }

// Superclass returns the parent in the lookup chain, or nil.
func (m *Module) Superclass() *Module { return m.super }

// Ancestors returns m followed by its superclass chain.
func (m *Module) Ancestors() []*Module {
	var out []*Module
	for anc := m; anc != nil; anc = anc.super {
		out = append(out, anc)
	}
	return out
}

// IsA reports whether other is m or one of its ancestors.
func (m *Module) IsA(other *Module) bool {
	for anc := m; anc != nil; anc = anc.super {
		if anc == other {
			return true
		}
	}
	return false
}

// DefineMethod files p under name; p's display name becomes name.
func (m *Module) DefineMethod(name string, p *Proc) {
	m.Methods.Set(name, p)
}

// RemoveMethod removes a method defined directly on m.
func (m *Module) RemoveMethod(name string) bool {
	_, ok := m.Methods.Remove(name)
	return ok
}

// FindMethod looks name up along the superclass chain.
func (m *Module) FindMethod(name string) (*Proc, bool) {
	epoch := m.epoch.Load()
	if c, ok := m.lookup.Get(name); ok && c.epoch == epoch {
		return c.proc, c.proc != nil
	}
	var found *Proc
	for anc := m; anc != nil; anc = anc.super {
		if p, ok := anc.Methods.Get(name); ok {
			found = p
			break
		}
	}
	m.lookup.Set(name, cachedMethod{proc: found, epoch: epoch})
	return found, found != nil
}

func (m *Module) invalidate() {
	m.epoch.Add(1)
	m.lookup.Clear()
	logger().Debugf("method cache of %s invalidated", m.Inspect())
}

// Const looks up a constant along the superclass chain.
func (m *Module) Const(name string) (Value, bool) {
	for anc := m; anc != nil; anc = anc.super {
		if v, ok := anc.Constants.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (m *Module) Inspect() string {
	if m.Name != "" {
		return m.Name
	}
	if m.IsClass {
		return fmt.Sprintf("#<Class:0x%016x>", m.id)
	}
	return fmt.Sprintf("#<Module:0x%016x>", m.id)
}

func (m *Module) LightInspect() string { return m.Inspect() }

// ---------------------------------------------------------------------------
// Method resolution
// ---------------------------------------------------------------------------

// Resolve finds the method a call of name on recv dispatches to: singleton
// methods first, then the class chain. When nothing matches, method_missing
// is tried and the requested name is prepended to args as a symbol. The
// returned args are the ones to invoke the proc with.
func (rt *Runtime) Resolve(recv Value, name string, args []Value) (*Proc, []Value, error) {
	if p, ok := rt.findMethod(recv, name); ok {
		return p, args, nil
	}
	if p, ok := rt.findMethod(recv, "method_missing"); ok {
		out := make([]Value, 0, len(args)+1)
		out = append(out, rt.Symbol(name))
		out = append(out, args...)
		return p, out, nil
	}
	return nil, nil, &Error{
		Kind:    RuntimeError,
		Class:   "NoMethodError",
		Message: fmt.Sprintf("undefined method '%s' for %s", name, describe(rt, recv)),
	}
}

func (rt *Runtime) findMethod(recv Value, name string) (*Proc, bool) {
	if h := recv.Header(); h != nil {
		if p, ok := h.singletons.Get(name); ok {
			return p, true
		}
	}
	if c := rt.ClassOf(recv); c != nil {
		return c.FindMethod(name)
	}
	return nil, false
}

// Send resolves and invokes a native method.
func (rt *Runtime) Send(ctx context.Context, recv Value, name string, args ...Value) (Value, error) {
	p, args, err := rt.Resolve(recv, name, args)
	if err != nil {
		return nil, err
	}
	return p.Call(ctx, recv, args)
}

// describe names a value for error messages: nil, true and false by value,
// everything else by class.
func describe(rt *Runtime, v Value) string {
	switch v.Kind() {
	case KindNil, KindTrue, KindFalse:
		return v.Inspect()
	}
	if c := rt.ClassOf(v); c != nil {
		return "an instance of " + c.Inspect()
	}
	return v.Kind().String()
}
