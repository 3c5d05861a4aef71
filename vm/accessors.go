package vm

// Typed accessors. Each fails with a RuntimeError naming the expected and
// actual kinds; callers rely on them as the only dynamic type check.

func mismatch(want string, v Value) *Error {
	return &Error{
		Kind:    RuntimeError,
		Class:   "TypeError",
		Message: "expected " + want + ", got " + kindName(v),
	}
}

func AsString(v Value) (*String, error) {
	if s, ok := v.(*String); ok {
		return s, nil
	}
	return nil, mismatch("String", v)
}

func AsSymbol(v Value) (*Symbol, error) {
	if s, ok := v.(*Symbol); ok {
		return s, nil
	}
	return nil, mismatch("Symbol", v)
}

func AsInteger(v Value) (*Integer, error) {
	if i, ok := v.(*Integer); ok {
		return i, nil
	}
	return nil, mismatch("Integer", v)
}

func AsFloat(v Value) (*Float, error) {
	if f, ok := v.(*Float); ok {
		return f, nil
	}
	return nil, mismatch("Float", v)
}

func AsProc(v Value) (*Proc, error) {
	if p, ok := v.(*Proc); ok {
		return p, nil
	}
	return nil, mismatch("Proc", v)
}

func AsThread(v Value) (*Thread, error) {
	if t, ok := v.(*Thread); ok {
		return t, nil
	}
	return nil, mismatch("Thread", v)
}

func AsRange(v Value) (*Range, error) {
	if r, ok := v.(*Range); ok {
		return r, nil
	}
	return nil, mismatch("Range", v)
}

func AsArray(v Value) (*Array, error) {
	if a, ok := v.(*Array); ok {
		return a, nil
	}
	return nil, mismatch("Array", v)
}

func AsHash(v Value) (*Hash, error) {
	if h, ok := v.(*Hash); ok {
		return h, nil
	}
	return nil, mismatch("Hash", v)
}

func AsException(v Value) (*Exception, error) {
	if e, ok := v.(*Exception); ok {
		return e, nil
	}
	return nil, mismatch("Exception", v)
}

func AsTime(v Value) (*Time, error) {
	if t, ok := v.(*Time); ok {
		return t, nil
	}
	return nil, mismatch("Time", v)
}

func AsWeakRef(v Value) (*WeakRef, error) {
	if w, ok := v.(*WeakRef); ok {
		return w, nil
	}
	return nil, mismatch("WeakRef", v)
}

func AsResponse(v Value) (*Response, error) {
	if r, ok := v.(*Response); ok {
		return r, nil
	}
	return nil, mismatch("Response", v)
}

func AsModule(v Value) (*Module, error) {
	if m, ok := v.(*Module); ok {
		return m, nil
	}
	return nil, mismatch("Module", v)
}
