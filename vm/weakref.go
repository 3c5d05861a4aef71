package vm

import (
	"fmt"
	"runtime"
	"weak"
)

// ---------------------------------------------------------------------------
// WeakRef: a reference that doesn't prevent garbage collection
// ---------------------------------------------------------------------------

// WeakRef refers to a value without keeping it alive. Once the target is
// collected Target reports false.
type WeakRef struct {
	*Object
	TargetID uint64

	get func() Value
	// onCollect registers fn to run after the target is collected. It
	// reports false when the target is already gone.
	onCollect func(fn func(targetID uint64)) bool
}

// NewWeakRef creates a weak reference to target.
func NewWeakRef[T any, PT interface {
	*T
	Value
}](rt *Runtime, target PT) *WeakRef {
	wp := weak.Make((*T)(target))
	return &WeakRef{
		Object:   rt.newHeader(KindWeakRef),
		TargetID: target.ID(),
		get: func() Value {
			if p := wp.Value(); p != nil {
				return PT(p)
			}
			return nil
		},
		onCollect: func(fn func(uint64)) bool {
			p := wp.Value()
			if p == nil {
				return false
			}
			runtime.AddCleanup(p, fn, PT(p).ID())
			return true
		},
	}
}

// WeakRef creates a weak reference to any non-pseudo value.
func (rt *Runtime) WeakRef(v Value) (*WeakRef, error) {
	switch t := v.(type) {
	case *NilValue:
		return NewWeakRef(rt, t), nil
	case *Boolean:
		return NewWeakRef(rt, t), nil
	case *String:
		return NewWeakRef(rt, t), nil
	case *Symbol:
		return NewWeakRef(rt, t), nil
	case *Integer:
		return NewWeakRef(rt, t), nil
	case *Float:
		return NewWeakRef(rt, t), nil
	case *Proc:
		return NewWeakRef(rt, t), nil
	case *Thread:
		return NewWeakRef(rt, t), nil
	case *Range:
		return NewWeakRef(rt, t), nil
	case *Array:
		return NewWeakRef(rt, t), nil
	case *Hash:
		return NewWeakRef(rt, t), nil
	case *Exception:
		return NewWeakRef(rt, t), nil
	case *Time:
		return NewWeakRef(rt, t), nil
	case *WeakRef:
		return NewWeakRef(rt, t), nil
	case *Response:
		return NewWeakRef(rt, t), nil
	case *Module:
		return NewWeakRef(rt, t), nil
	}
	return nil, Errorf(ApiError, "cannot create a weak reference to %s", kindName(v))
}

func (w *WeakRef) Kind() Kind { return KindWeakRef }

// Target returns the referenced value if it is still alive.
func (w *WeakRef) Target() (Value, bool) {
	v := w.get()
	return v, v != nil
}

// Alive reports whether the target has not been collected.
func (w *WeakRef) Alive() bool {
	_, ok := w.Target()
	return ok
}

// OnCollect arranges for fn to run, on a runtime goroutine, after the target
// is collected. It reports false if the target is already gone.
func (w *WeakRef) OnCollect(fn func(targetID uint64)) bool {
	return w.onCollect(fn)
}

func (w *WeakRef) Inspect() string {
	if !w.Alive() {
		return fmt.Sprintf("#<WeakRef:%d (dead)>", w.TargetID)
	}
	return fmt.Sprintf("#<WeakRef:%d>", w.TargetID)
}

func (w *WeakRef) LightInspect() string { return w.Inspect() }
