package rule

import (
	"fmt"
	"slices"

	"ca-sandbox/internal/core"
)

// MaxGroupStates is the capacity of a StateGroup.
const MaxGroupStates = 32

// StateGroup is a small set of states stored inline.
type StateGroup struct {
	n      uint8
	states [MaxGroupStates]core.CellState
}

// NewStateGroup builds a group from states, dropping duplicates.
func NewStateGroup(states ...core.CellState) (StateGroup, error) {
	var g StateGroup
	for _, s := range states {
		if g.Contains(s) {
			continue
		}
		if int(g.n) == MaxGroupStates {
			return StateGroup{}, fmt.Errorf("%w: more than %d states", ErrGroupTooLarge, MaxGroupStates)
		}
		g.states[g.n] = s
		g.n++
	}
	return g, nil
}

func mustGroup(states []core.CellState) StateGroup {
	g, err := NewStateGroup(states...)
	if err != nil {
		panic(err)
	}
	return g
}

// Len returns the number of states in the group.
func (g StateGroup) Len() int { return int(g.n) }

// States returns the members in insertion order.
func (g StateGroup) States() []core.CellState { return slices.Clone(g.states[:g.n]) }

// Contains reports whether s is a member.
func (g *StateGroup) Contains(s core.CellState) bool {
	for i := uint8(0); i < g.n; i++ {
		if g.states[i] == s {
			return true
		}
	}
	return false
}

// CellKind is the kind of test a pattern applies to one input.
type CellKind uint8

const (
	// Wildcard matches anything. It is the only kind counted by CountMatching.
	Wildcard CellKind = iota
	// State matches members of the group.
	State
	// NotState matches non-members of the group.
	NotState
	// OrState never fails on its own; a pattern with OrState cells needs at
	// least one of them to hold a member of its group.
	OrState
)

var kindNames = [...]string{Wildcard: "wildcard", State: "state", NotState: "not", OrState: "or"}

func (k CellKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("CellKind(%d)", k)
}

// PatternCell is the test for one neighbourhood input.
type PatternCell struct {
	Kind  CellKind
	Group StateGroup
}

// Any returns a wildcard cell.
func Any() PatternCell { return PatternCell{Kind: Wildcard} }

// Is returns a cell matching any of states. It panics if states exceed
// MaxGroupStates.
func Is(states ...core.CellState) PatternCell {
	return PatternCell{Kind: State, Group: mustGroup(states)}
}

// Not returns a cell matching anything but states.
func Not(states ...core.CellState) PatternCell {
	return PatternCell{Kind: NotState, Group: mustGroup(states)}
}

// Or returns an OrState cell over states.
func Or(states ...core.CellState) PatternCell {
	return PatternCell{Kind: OrState, Group: mustGroup(states)}
}

// ComparisonOp compares a count against a threshold.
type ComparisonOp uint8

const (
	Greater ComparisonOp = iota
	GreaterOrEqual
	Equal
	LessOrEqual
	Less
)

var opSymbols = [...]string{Greater: ">", GreaterOrEqual: ">=", Equal: "=", LessOrEqual: "<=", Less: "<"}

func (op ComparisonOp) String() string {
	if int(op) < len(opSymbols) {
		return opSymbols[op]
	}
	return fmt.Sprintf("ComparisonOp(%d)", op)
}

// ParseComparisonOp accepts >, >=, =, <= and <. "==" is accepted for =.
func ParseComparisonOp(s string) (ComparisonOp, error) {
	if s == "==" {
		return Equal, nil
	}
	for i, sym := range opSymbols {
		if s == sym {
			return ComparisonOp(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComparison, s)
}

// Compare applies the operator to n and threshold.
func (op ComparisonOp) Compare(n, threshold uint32) bool {
	switch op {
	case Greater:
		return n > threshold
	case GreaterOrEqual:
		return n >= threshold
	case Equal:
		return n == threshold
	case LessOrEqual:
		return n <= threshold
	case Less:
		return n < threshold
	}
	return false
}

// CountMatching constrains how many wildcard inputs hold a member of Group.
type CountMatching struct {
	Enabled   bool
	Group     StateGroup
	Op        ComparisonOp
	Threshold uint32
}

// Pattern maps a neighbourhood to Result. Cells is indexed like the
// neighbourhood inputs.
type Pattern struct {
	Cells   []PatternCell
	Result  core.CellState
	Count   CountMatching
	Comment string
}

// Matches tests p against inputs, which must be as long as p.Cells.
func (p *Pattern) Matches(inputs []core.CellState) bool {
	var counted, orMatched uint32
	hasOr := false
	for i := range p.Cells {
		c := &p.Cells[i]
		in := inputs[i]
		switch c.Kind {
		case State:
			if !c.Group.Contains(in) {
				return false
			}
		case NotState:
			if c.Group.Contains(in) {
				return false
			}
		case OrState:
			hasOr = true
			if c.Group.Contains(in) {
				orMatched++
			}
		case Wildcard:
			if p.Count.Enabled && p.Count.Group.Contains(in) {
				counted++
			}
		}
	}
	if p.Count.Enabled && !p.Count.Op.Compare(counted, p.Count.Threshold) {
		return false
	}
	return !hasOr || orMatched > 0
}

// Clone returns a deep copy of p.
func (p Pattern) Clone() Pattern {
	p.Cells = slices.Clone(p.Cells)
	return p
}
