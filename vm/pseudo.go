package vm

import "fmt"

// The pseudo-variants below are produced and consumed by the evaluator. They
// have no identity and must never escape into user-visible data.

// VariableRef names a variable slot, for example the target of an
// assignment.
type VariableRef struct {
	pseudo
	Name string
}

func (*VariableRef) Kind() Kind { return KindVariableRef }
func (r *VariableRef) Inspect() string { return "#<var " + r.Name + ">" }
func (r *VariableRef) LightInspect() string { return r.Inspect() }

// ScopeRef carries an evaluator scope, for binding and instance_eval style
// operations. Scope is opaque to the runtime.
type ScopeRef struct {
	pseudo
	Scope any
}

func (*ScopeRef) Kind() Kind { return KindScopeRef }
func (r *ScopeRef) Inspect() string { return fmt.Sprintf("#<scope %T>", r.Scope) }
func (r *ScopeRef) LightInspect() string { return r.Inspect() }

// ProcRef is a callable reference to a method bound to its receiver, as
// produced by &:name or obj.method(:name).
type ProcRef struct {
	pseudo
	Receiver Value
	Name     string
}

func (*ProcRef) Kind() Kind { return KindProcRef }

func (r *ProcRef) Inspect() string {
	if r.Receiver == nil {
		return "#<method &:" + r.Name + ">"
	}
	return "#<method " + r.Receiver.Inspect() + "." + r.Name + ">"
}

func (r *ProcRef) LightInspect() string { return r.Inspect() }
