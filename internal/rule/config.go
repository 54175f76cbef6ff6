package rule

import (
	"fmt"
	"slices"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
)

// Configuration is everything a rule tree is compiled from.
type Configuration struct {
	Shape  neighbourhood.Shape
	Radius uint32
	States NamedStates

	// NullStates are states that never trigger block creation. An absent
	// neighbour reads as NullStates[0].
	NullStates []core.CellState

	Patterns []Pattern
}

// NInputs returns the number of neighbourhood inputs including the centre.
func (c *Configuration) NInputs() int {
	return int(neighbourhood.NCells(c.Shape, c.Radius))
}

// CentreIndex returns the input index of the subject cell.
func (c *Configuration) CentreIndex() int {
	return int(neighbourhood.CentreIndex(c.Shape, c.Radius))
}

// IsNull reports whether s is one of the null states.
func (c *Configuration) IsNull(s core.CellState) bool {
	return slices.Contains(c.NullStates, s)
}

// Validate reports the first configuration error found.
func (c *Configuration) Validate() error {
	if c.Shape > neighbourhood.OneDim {
		return fmt.Errorf("%w: %d", neighbourhood.ErrUnknownShape, c.Shape)
	}
	if c.Radius == 0 {
		return ErrZeroRadius
	}
	if c.States.Len() == 0 {
		return ErrNoStates
	}
	for _, s := range c.NullStates {
		if !c.States.Has(s) {
			return fmt.Errorf("null states: %w: %d", ErrUnknownState, s)
		}
	}
	n := c.NInputs()
	for i := range c.Patterns {
		if err := c.validatePattern(&c.Patterns[i], n); err != nil {
			return fmt.Errorf("pattern %d: %w", i, err)
		}
	}
	return nil
}

func (c *Configuration) validatePattern(p *Pattern, n int) error {
	if len(p.Cells) != n {
		return fmt.Errorf("%w: %d cells, want %d", ErrPatternWidth, len(p.Cells), n)
	}
	if !c.States.Has(p.Result) {
		return fmt.Errorf("result: %w: %d", ErrUnknownState, p.Result)
	}
	for i := range p.Cells {
		cell := &p.Cells[i]
		if cell.Kind == Wildcard {
			continue
		}
		if cell.Kind > OrState {
			return fmt.Errorf("cell %d: unknown kind %d", i, cell.Kind)
		}
		if err := c.validateGroup(&cell.Group); err != nil {
			return fmt.Errorf("cell %d: %w", i, err)
		}
	}
	if p.Count.Enabled {
		if p.Count.Op > Less {
			return fmt.Errorf("count matching: %w: %d", ErrUnknownComparison, p.Count.Op)
		}
		if err := c.validateGroup(&p.Count.Group); err != nil {
			return fmt.Errorf("count matching: %w", err)
		}
	}
	return nil
}

func (c *Configuration) validateGroup(g *StateGroup) error {
	if g.Len() == 0 {
		return ErrEmptyGroup
	}
	for _, s := range g.states[:g.n] {
		if !c.States.Has(s) {
			return fmt.Errorf("%w: %d", ErrUnknownState, s)
		}
	}
	return nil
}

// Evaluate returns the result of the first pattern matching inputs, or the
// centre input when none does. inputs must hold NInputs states.
func (c *Configuration) Evaluate(inputs []core.CellState) core.CellState {
	for i := range c.Patterns {
		if c.Patterns[i].Matches(inputs) {
			return c.Patterns[i].Result
		}
	}
	return inputs[c.CentreIndex()]
}

// Clone returns a deep copy that shares nothing with c.
func (c *Configuration) Clone() *Configuration {
	out := &Configuration{
		Shape:      c.Shape,
		Radius:     c.Radius,
		States:     c.States.Clone(),
		NullStates: slices.Clone(c.NullStates),
		Patterns:   make([]Pattern, len(c.Patterns)),
	}
	for i, p := range c.Patterns {
		out.Patterns[i] = p.Clone()
	}
	return out
}

// AddPattern appends a pattern built from cells.
func (c *Configuration) AddPattern(result core.CellState, comment string, cells ...PatternCell) *Pattern {
	c.Patterns = append(c.Patterns, Pattern{Cells: cells, Result: result, Comment: comment})
	return &c.Patterns[len(c.Patterns)-1]
}
