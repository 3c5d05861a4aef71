package vm

import "slices"

// Clone copies v. The copy has a new identity and its own attribute and
// singleton-method tables; container payloads are copied one level deep,
// so elements are shared. nil, true, false and symbols are returned as is.
// Thread handles cannot be cloned.
func (rt *Runtime) Clone(v Value) (Value, error) {
	switch x := v.(type) {
	case *NilValue, *Boolean, *Symbol:
		return v, nil
	case *String:
		return &String{Object: rt.cloneHeader(x.Object), Text: x.Text}, nil
	case *Integer:
		return &Integer{Object: rt.cloneHeader(x.Object), N: x.N}, nil
	case *Float:
		return &Float{Object: rt.cloneHeader(x.Object), F: x.F}, nil
	case *Proc:
		p := &Proc{
			Object: rt.cloneHeader(x.Object),
			Params: x.Params,
			Body:   x.Body,
			Native: x.Native,
			Lambda: x.Lambda,
		}
		p.name = x.DisplayName()
		return p, nil
	case *Range:
		return &Range{Object: rt.cloneHeader(x.Object), Start: x.Start, End: x.End, Exclusive: x.Exclusive}, nil
	case *Array:
		return &Array{Object: rt.cloneHeader(x.Object), Elems: slices.Clone(x.Elems)}, nil
	case *Hash:
		return &Hash{Object: rt.cloneHeader(x.Object), Default: x.Default, entries: x.copyEntries()}, nil
	case *Exception:
		return &Exception{
			Object:    rt.cloneHeader(x.Object),
			Message:   x.Message,
			Backtrace: slices.Clone(x.Backtrace),
			Cause:     x.Cause,
			Err:       x.Err,
		}, nil
	case *Time:
		return &Time{Object: rt.cloneHeader(x.Object), T: x.T}, nil
	case *WeakRef:
		return &WeakRef{Object: rt.cloneHeader(x.Object), TargetID: x.TargetID, get: x.get, onCollect: x.onCollect}, nil
	case *Response:
		return &Response{Object: rt.cloneHeader(x.Object), Status: x.Status, Headers: x.Headers.Clone(), Body: x.Body}, nil
	case *Module:
		m := rt.newModule("", x.super, x.IsClass)
		m.attrs = x.attrs.Copy()
		m.singletons = x.singletons.Copy()
		x.Methods.Range(func(name string, p *Proc) bool {
			m.Methods.Set(name, p)
			return true
		})
		m.Constants = x.Constants.Copy()
		return m, nil
	case *Thread:
		return nil, Errorf(ApiError, "can't clone %s", x.Inspect())
	}
	return nil, Errorf(InternalError, "can't clone %s", kindName(v))
}

func (rt *Runtime) cloneHeader(o *Object) *Object {
	return copyObject(rt.nextID(), o)
}

// Dup is Clone without the singleton methods.
func (rt *Runtime) Dup(v Value) (Value, error) {
	c, err := rt.Clone(v)
	if err != nil || c == v {
		return c, err
	}
	if h := c.Header(); h != nil {
		for _, name := range h.singletons.Keys() {
			h.singletons.Remove(name)
		}
	}
	return c, nil
}
