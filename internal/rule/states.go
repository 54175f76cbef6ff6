package rule

import (
	"fmt"
	"strings"
	"unicode"

	"ca-sandbox/internal/core"
)

// NamedStates maps state names to dense CellState values starting at 0.
// States are only ever added; a name may be changed but its value never is.
type NamedStates struct {
	names []string
	index map[string]core.CellState
}

// NewNamedStates returns the states in order, so names[i] has value i.
func NewNamedStates(names ...string) (NamedStates, error) {
	var ns NamedStates
	for _, n := range names {
		if _, err := ns.Add(n); err != nil {
			return NamedStates{}, err
		}
	}
	return ns, nil
}

// MustNamedStates is NewNamedStates for fixed, known-good name lists.
func MustNamedStates(names ...string) NamedStates {
	ns, err := NewNamedStates(names...)
	if err != nil {
		panic(err)
	}
	return ns
}

// ValidStateName reports whether name is made of letters, digits and
// underscores only.
func ValidStateName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// Add appends a state and returns its value, the next unused one.
func (ns *NamedStates) Add(name string) (core.CellState, error) {
	if !ValidStateName(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStateName, name)
	}
	if _, ok := ns.index[name]; ok {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateState, name)
	}
	if ns.index == nil {
		ns.index = make(map[string]core.CellState)
	}
	v := core.CellState(len(ns.names))
	ns.names = append(ns.names, name)
	ns.index[name] = v
	return v, nil
}

// Len returns the number of states.
func (ns NamedStates) Len() int { return len(ns.names) }

// Names returns the state names in value order.
func (ns NamedStates) Names() []string { return append([]string(nil), ns.names...) }

// Lookup returns the value of name.
func (ns NamedStates) Lookup(name string) (core.CellState, bool) {
	v, ok := ns.index[name]
	return v, ok
}

// Has reports whether s is a defined state.
func (ns NamedStates) Has(s core.CellState) bool { return int64(s) < int64(len(ns.names)) }

// Name returns the name of s, or a numeric placeholder if s is not defined.
func (ns NamedStates) Name(s core.CellState) string {
	if ns.Has(s) {
		return ns.names[s]
	}
	if s == core.DebugState {
		return "DEBUG"
	}
	return fmt.Sprintf("#%d", s)
}

// Rename changes the name of s.
func (ns *NamedStates) Rename(s core.CellState, name string) error {
	if !ns.Has(s) {
		return fmt.Errorf("%w: %d", ErrUnknownState, s)
	}
	if !ValidStateName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidStateName, name)
	}
	if v, ok := ns.index[name]; ok && v != s {
		return fmt.Errorf("%w: %q", ErrDuplicateState, name)
	}
	delete(ns.index, ns.names[s])
	ns.names[s] = name
	ns.index[name] = s
	return nil
}

// Advance returns the state after s, wrapping to 0 after the last one.
func (ns NamedStates) Advance(s core.CellState) core.CellState {
	if len(ns.names) == 0 || int64(s) >= int64(len(ns.names))-1 {
		return 0
	}
	return s + 1
}

// LongestName returns the length of the longest state name.
func (ns NamedStates) LongestName() int {
	n := 0
	for _, name := range ns.names {
		n = max(n, len(name))
	}
	return n
}

// Clone returns an independent copy.
func (ns NamedStates) Clone() NamedStates {
	out := NamedStates{names: ns.Names(), index: make(map[string]core.CellState, len(ns.names))}
	for k, v := range ns.index {
		out.index[k] = v
	}
	return out
}

// Parse resolves a whitespace separated list of state names.
func (ns NamedStates) Parse(list string) ([]core.CellState, error) {
	fields := strings.Fields(list)
	out := make([]core.CellState, 0, len(fields))
	for _, f := range fields {
		v, ok := ns.Lookup(f)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownState, f)
		}
		out = append(out, v)
	}
	return out, nil
}
