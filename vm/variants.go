package vm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/garnet/numeric"
)

// NilValue is the nil singleton of a Runtime.
type NilValue struct{ *Object }

func (*NilValue) Kind() Kind { return KindNil }
func (*NilValue) Inspect() string { return "nil" }
func (*NilValue) LightInspect() string { return "" }

// Boolean is one of the true and false singletons.
type Boolean struct {
	*Object
	Value bool
}

func (b *Boolean) Kind() Kind {
	if b.Value {
		return KindTrue
	}
	return KindFalse
}

func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

func (b *Boolean) LightInspect() string { return b.Inspect() }

// String is a mutable text value. Mutating Text is not synchronized.
type String struct {
	*Object
	Text string
}

func (s *String) Kind() Kind { return KindString }
func (s *String) Inspect() string { return quoteString(s.Text) }
func (s *String) LightInspect() string { return s.Text }

// quoteString renders s double-quoted with control characters, quotes and
// backslashes escaped. An interpolation opener is written as \#{ so the
// result reads back as the same text.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0x1b:
			b.WriteString(`\e`)
		case '#':
			if strings.HasPrefix(s[i+1:], "{") {
				b.WriteByte('\\')
			}
			b.WriteByte('#')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Integer wraps numeric.Int.
type Integer struct {
	*Object
	N numeric.Int
}

func (i *Integer) Kind() Kind { return KindInteger }
func (i *Integer) Inspect() string { return i.N.String() }
func (i *Integer) LightInspect() string { return i.N.String() }

// Float wraps numeric.Float.
type Float struct {
	*Object
	F numeric.Float
}

func (f *Float) Kind() Kind { return KindFloat }
func (f *Float) Inspect() string { return f.F.String() }
func (f *Float) LightInspect() string { return f.F.String() }

// ---------------------------------------------------------------------------
// Proc
// ---------------------------------------------------------------------------

// NativeFunc implements a proc in Go.
type NativeFunc func(ctx context.Context, self Value, args []Value) (Value, error)

// Proc is a callable. Native procs run Go code; others carry an evaluator
// defined Body.
type Proc struct {
	*Object
	Params []string
	Body   any
	Native NativeFunc
	Lambda bool

	mu   sync.Mutex
	name string
}

func (p *Proc) Kind() Kind { return KindProc }

// DisplayName returns the name the proc was last bound under.
func (p *Proc) DisplayName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// SetDisplayName records the name the proc is bound under. Method tables
// call it when the proc is filed.
func (p *Proc) SetDisplayName(name string) {
	p.mu.Lock()
	p.name = name
	p.mu.Unlock()
}

// Call runs a native proc. Procs with an evaluator body must be run by the
// evaluator.
func (p *Proc) Call(ctx context.Context, self Value, args []Value) (Value, error) {
	if p.Native == nil {
		return nil, Errorf(ApiError, "%s has no native implementation", p.Inspect())
	}
	return p.Native(ctx, self, args)
}

func (p *Proc) Inspect() string {
	var b strings.Builder
	b.WriteString("#<Proc:")
	if name := p.DisplayName(); name != "" {
		b.WriteString(name)
	} else {
		fmt.Fprintf(&b, "0x%016x", p.id)
	}
	if p.Lambda {
		b.WriteString(" (lambda)")
	}
	b.WriteByte('>')
	return b.String()
}

func (p *Proc) LightInspect() string { return p.Inspect() }

// ---------------------------------------------------------------------------
// Thread
// ---------------------------------------------------------------------------

// ThreadStatus is the scheduler-reported state of a logical thread.
type ThreadStatus int32

const (
	ThreadRunnable ThreadStatus = iota
	ThreadSleeping
	ThreadDead
)

func (s ThreadStatus) String() string {
	switch s {
	case ThreadRunnable:
		return "run"
	case ThreadSleeping:
		return "sleep"
	case ThreadDead:
		return "dead"
	}
	return "unknown"
}

// Thread is a handle to a logical thread run by an external scheduler.
type Thread struct {
	*Object
	Handle uuid.UUID
	Name   string
	status atomic.Int32
}

func (t *Thread) Kind() Kind { return KindThread }

func (t *Thread) Status() ThreadStatus { return ThreadStatus(t.status.Load()) }

func (t *Thread) SetStatus(s ThreadStatus) { t.status.Store(int32(s)) }

func (t *Thread) Inspect() string {
	if t.Name != "" {
		return fmt.Sprintf("#<Thread:%s@%s %s>", t.Handle, t.Name, t.Status())
	}
	return fmt.Sprintf("#<Thread:%s %s>", t.Handle, t.Status())
}

func (t *Thread) LightInspect() string { return t.Inspect() }

// ---------------------------------------------------------------------------
// Containers
// ---------------------------------------------------------------------------

// Range is start..end or start...end.
type Range struct {
	*Object
	Start     Value
	End       Value
	Exclusive bool
}

func (r *Range) Kind() Kind { return KindRange }

func (r *Range) Inspect() string {
	op := ".."
	if r.Exclusive {
		op = "..."
	}
	return inspectOrEmpty(r.Start) + op + inspectOrEmpty(r.End)
}

func (r *Range) LightInspect() string { return r.Inspect() }

func inspectOrEmpty(v Value) string {
	if IsNil(v) {
		return ""
	}
	return v.Inspect()
}

// Array is an ordered sequence. Mutating Elems is not synchronized.
type Array struct {
	*Object
	Elems []Value
}

func (a *Array) Kind() Kind { return KindArray }

func (a *Array) Len() int { return len(a.Elems) }

func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// LightInspect joins the elements' light renderings with newlines.
func (a *Array) LightInspect() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.LightInspect()
	}
	return strings.Join(parts, "\n")
}

// ---------------------------------------------------------------------------
// Exception, Time, Response
// ---------------------------------------------------------------------------

// Exception is a raised error. Err holds the Go error it was built from, if
// any.
type Exception struct {
	*Object
	Message   string
	Backtrace []string
	Cause     Value
	Err       *Error
}

func (e *Exception) Kind() Kind { return KindException }

// ClassName returns the exception's class name.
func (e *Exception) ClassName() string {
	if e.class != nil {
		return e.class.Name
	}
	return "Exception"
}

func (e *Exception) Inspect() string {
	if e.Message == "" {
		return e.ClassName()
	}
	return fmt.Sprintf("#<%s: %s>", e.ClassName(), e.Message)
}

func (e *Exception) LightInspect() string { return e.Inspect() }

// Time is a timestamp.
type Time struct {
	*Object
	T time.Time
}

func (t *Time) Kind() Kind { return KindTime }

func (t *Time) Inspect() string {
	return t.T.Format("2006-01-02 15:04:05.999999999 -0700")
}

func (t *Time) LightInspect() string { return t.Inspect() }

// Response is the result of an external request made by a built-in.
type Response struct {
	*Object
	Status  int
	Headers http.Header
	Body    string
}

func (r *Response) Kind() Kind { return KindResponse }

func (r *Response) Inspect() string {
	return fmt.Sprintf("#<Response %d %s>", r.Status, http.StatusText(r.Status))
}

func (r *Response) LightInspect() string { return r.Inspect() }
