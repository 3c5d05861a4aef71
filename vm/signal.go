package vm

import (
	"errors"
	"fmt"
)

// Signal is a non-local control transfer returned from evaluation in place
// of an ordinary value. Frames that are not the designated handler for a
// signal must return it unchanged.
type Signal interface {
	Value
	// InYield reports whether the signal was produced inside a block passed
	// to a method that yields to it.
	InYield() bool
	signal()
}

// LoopKind distinguishes the loop-control statements.
type LoopKind uint8

const (
	Break LoopKind = iota
	Next
	Redo
	Retry
)

func (k LoopKind) String() string {
	switch k {
	case Break:
		return "break"
	case Next:
		return "next"
	case Redo:
		return "redo"
	case Retry:
		return "retry"
	}
	return fmt.Sprintf("LoopKind(%d)", uint8(k))
}

type signalBase struct{ pseudo }

func (signalBase) Kind() Kind { return KindSignal }
func (signalBase) signal() {}

// LoopControl is break, next, redo or retry. Value carries the argument of
// break and next; it is nil otherwise.
type LoopControl struct {
	signalBase
	Loop      LoopKind
	Value     Value
	FromYield bool
}

func (s *LoopControl) InYield() bool { return s.FromYield }

func (s *LoopControl) Inspect() string {
	if s.Value != nil {
		return fmt.Sprintf("#<%s %s>", s.Loop, s.Value.Inspect())
	}
	return fmt.Sprintf("#<%s>", s.Loop)
}

func (s *LoopControl) LightInspect() string { return s.Inspect() }

// Return is a method-level return carrying its value.
type Return struct {
	signalBase
	Value     Value
	FromYield bool
}

func (s *Return) InYield() bool { return s.FromYield }

func (s *Return) Inspect() string {
	if s.Value == nil {
		return "#<return>"
	}
	return "#<return " + s.Value.Inspect() + ">"
}

func (s *Return) LightInspect() string { return s.Inspect() }

// Stop halts evaluation of the current program. Manual is set when the
// program asked to stop itself rather than being stopped by its host.
type Stop struct {
	signalBase
	Manual    bool
	FromYield bool
}

func (s *Stop) InYield() bool { return s.FromYield }

func (s *Stop) Inspect() string {
	if s.Manual {
		return "#<stop manual>"
	}
	return "#<stop>"
}

func (s *Stop) LightInspect() string { return s.Inspect() }

// Throw transfers to the innermost catch frame watching an equal tag.
type Throw struct {
	signalBase
	Tag       Value
	Value     Value
	FromYield bool
}

func (s *Throw) InYield() bool { return s.FromYield }

func (s *Throw) Inspect() string { return "#<throw " + s.Tag.Inspect() + ">" }

func (s *Throw) LightInspect() string { return s.Inspect() }

// ---------------------------------------------------------------------------
// Frame handlers
// ---------------------------------------------------------------------------

// IsSignal reports whether v is a control-flow signal.
func IsSignal(v Value) bool {
	_, ok := v.(Signal)
	return ok
}

// CatchLoop is used by loop frames: it consumes LoopControl and nothing else.
func CatchLoop(v Value) (*LoopControl, bool) {
	lc, ok := v.(*LoopControl)
	return lc, ok
}

// CatchReturn is used by method-call frames. direct is true when the frame
// is the method that directly encloses the return statement. A return from
// a yielded block belongs to the method that received the block.
func CatchReturn(v Value, direct bool) (Value, bool) {
	r, ok := v.(*Return)
	if !ok || !(direct || r.FromYield) {
		return nil, false
	}
	return r.Value, true
}

// CatchThrow is used by catch frames: it consumes a Throw whose tag is equal
// to tag and yields the thrown value.
func CatchThrow(v Value, tag Value) (Value, bool) {
	t, ok := v.(*Throw)
	if !ok || !Equal(t.Tag, tag) {
		return nil, false
	}
	return t.Value, true
}

// Uncaught is applied at the top of evaluation. Any loop control, return or
// throw still in flight becomes an *UncaughtSignalError; Stop ends the
// program normally and ordinary values pass.
func Uncaught(v Value) error {
	s, ok := v.(Signal)
	if !ok {
		return nil
	}
	if _, stop := s.(*Stop); stop {
		return nil
	}
	return &UncaughtSignalError{Signal: s}
}

// ---------------------------------------------------------------------------
// Signals through error returns
// ---------------------------------------------------------------------------

// SignalError carries a signal across an API that can only return an error,
// such as a sort predicate.
type SignalError struct {
	Signal Signal
}

func (e *SignalError) Error() string { return "signal " + e.Signal.Inspect() }

// AsSignal extracts a signal tunnelled through err.
func AsSignal(err error) (Signal, bool) {
	var se *SignalError
	if errors.As(err, &se) {
		return se.Signal, true
	}
	return nil, false
}
