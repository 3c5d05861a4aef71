package vm

import (
	"runtime"
	"strings"
	"unicode"
	"weak"

	"github.com/chazu/garnet/shared"
)

// ---------------------------------------------------------------------------
// Symbol
// ---------------------------------------------------------------------------

// Symbol is an interned name. At most one live Symbol exists per name in a
// Runtime; obtain one through SymbolTable.Intern.
type Symbol struct {
	*Object
	Name string
}

func (s *Symbol) Kind() Kind { return KindSymbol }

// Inspect renders :name, quoting names that would not read back as a bare
// symbol.
func (s *Symbol) Inspect() string {
	if symbolNeedsQuotes(s.Name) {
		return ":" + quoteString(s.Name)
	}
	return ":" + s.Name
}

func (s *Symbol) LightInspect() string { return s.Name }

func symbolNeedsQuotes(name string) bool {
	if name == "" {
		return true
	}
	if c := name[len(name)-1]; c == '?' || c == '!' {
		return true
	}
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			return true
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// SymbolTable: Interned symbols
// ---------------------------------------------------------------------------

// SymbolTable maps names to their live Symbol. Entries hold the symbol
// weakly and are removed by a cleanup once the symbol is collected.
type SymbolTable struct {
	rt      *Runtime
	entries *shared.LockedMap[string, weak.Pointer[Symbol]]
}

type symbolKey struct {
	name string
	ptr  weak.Pointer[Symbol]
}

func newSymbolTable(rt *Runtime) *SymbolTable {
	return &SymbolTable{
		rt:      rt,
		entries: shared.NewLockedMap[string, weak.Pointer[Symbol]](),
	}
}

// Intern returns the live symbol for name, creating it if none exists.
func (st *SymbolTable) Intern(name string) *Symbol {
	if wp, ok := st.entries.Get(name); ok {
		if sym := wp.Value(); sym != nil {
			return sym
		}
	}

	var sym *Symbol
	st.entries.Update(name, func(cur weak.Pointer[Symbol], ok bool) (weak.Pointer[Symbol], bool) {
		if ok {
			if existing := cur.Value(); existing != nil {
				sym = existing
				return cur, true
			}
		}
		sym = &Symbol{Object: st.rt.newHeader(KindSymbol), Name: strings.Clone(name)}
		wp := weak.Make(sym)
		runtime.AddCleanup(sym, st.release, symbolKey{name: sym.Name, ptr: wp})
		return wp, true
	})
	return sym
}

// Lookup returns the live symbol for name without creating one.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	wp, ok := st.entries.Get(name)
	if !ok {
		return nil, false
	}
	sym := wp.Value()
	return sym, sym != nil
}

// Len returns the number of tracked entries, including ones whose symbol
// has been collected but whose cleanup has not yet run.
func (st *SymbolTable) Len() int { return st.entries.Len() }

// Names returns the names of all live symbols.
func (st *SymbolTable) Names() []string {
	var names []string
	st.entries.Range(func(name string, wp weak.Pointer[Symbol]) bool {
		if wp.Value() != nil {
			names = append(names, name)
		}
		return true
	})
	return names
}

// release runs after a symbol is collected. A newer symbol may already have
// been interned under the same name; only the collected one's entry goes.
func (st *SymbolTable) release(key symbolKey) {
	st.entries.Update(key.name, func(cur weak.Pointer[Symbol], ok bool) (weak.Pointer[Symbol], bool) {
		return cur, ok && cur != key.ptr
	})
	logger().Debugf("reclaimed symbol :%s", key.name)
}
