// Package border decides which cells take part in a simulation and how
// positions beyond the edge of the universe are resolved.
package border

import (
	"errors"
	"fmt"
	"strings"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/core"
)

// Type selects the border topology.
type Type uint8

const (
	// Fixed simulates only cells inside [Min, Max).
	Fixed Type = iota
	// Infinite simulates every cell of every block.
	Infinite
	// Torus simulates [Min, Max) and wraps positions leaving it on each axis.
	Torus
)

var (
	// ErrUnknownType is returned by ParseType.
	ErrUnknownType = errors.New("border: unknown border type")
	// ErrEmptyBorder is returned when a Fixed or Torus border encloses no cells.
	ErrEmptyBorder = errors.New("border: min corner must be below max corner on both axes")
)

var typeNames = [...]string{Fixed: "FIXED", Infinite: "INFINITE", Torus: "TORUS"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// ParseType parses FIXED, INFINITE or TORUS, ignoring case.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if strings.EqualFold(name, n) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Border bounds the simulated region. Min is inclusive and Max exclusive on
// both axes. Corners need not align with block edges. Infinite ignores them.
type Border struct {
	Type Type
	Min  core.Position
	Max  core.Position
}

// Validate checks that a Fixed or Torus border encloses at least one cell.
// Corners are compared after normalising to dim.
func (b Border) Validate(dim int32) error {
	if b.Type > Torus {
		return fmt.Errorf("%w: %d", ErrUnknownType, b.Type)
	}
	if b.Type == Infinite {
		return nil
	}
	if !b.Min.Normalised(dim).Less(b.Max.Normalised(dim)) {
		return fmt.Errorf("%w: min %v max %v", ErrEmptyBorder, b.Min, b.Max)
	}
	return nil
}

// Normalised returns b with both corners normalised to dim. Contains and
// Wrap expect normalised corners.
func (b Border) Normalised(dim int32) Border {
	b.Min = b.Min.Normalised(dim)
	b.Max = b.Max.Normalised(dim)
	return b
}

// Contains reports whether a normalised position is simulated.
func (b Border) Contains(pos core.Position) bool {
	if b.Type == Infinite {
		return true
	}
	return pos.GreaterOrEqual(b.Min) && pos.Less(b.Max)
}

// ContainsBlock reports whether any cell of the block at pos can be inside
// the border.
func (b Border) ContainsBlock(pos core.Vec2, dim int32) bool {
	if b.Type == Infinite {
		return true
	}
	lo := core.Position{Block: pos}
	hi := core.Position{Block: pos, Cell: core.Vec2{X: dim - 1, Y: dim - 1}}
	return hi.GreaterOrEqual(b.Min) && lo.Less(b.Max)
}

// Wrap folds a position back into a Torus border, independently per axis.
// Positions already inside, and borders of any other type, are returned
// unchanged, so Wrap is idempotent.
func (b Border) Wrap(pos core.Position, dim int32) core.Position {
	if b.Type != Torus {
		return pos
	}
	pos = pos.Normalised(dim)
	if b.Contains(pos) {
		return pos
	}
	g := global(pos, dim)
	mn, mx := global(b.Min, dim), global(b.Max, dim)
	g[0] = wrap1(g[0], mn[0], mx[0])
	g[1] = wrap1(g[1], mn[1], mx[1])
	return core.GlobalToPosition(core.Vec2{X: int32(g[0]), Y: int32(g[1])}, dim)
}

func global(p core.Position, dim int32) [2]int64 {
	d := int64(dim)
	return [2]int64{
		int64(p.Block.X)*d + int64(p.Cell.X),
		int64(p.Block.Y)*d + int64(p.Cell.Y),
	}
}

func wrap1(v, lo, hi int64) int64 {
	w := hi - lo
	if v >= lo && v < hi {
		return v
	}
	m := (v - lo) % w
	if m < 0 {
		m += w
	}
	return lo + m
}

// Lookup classifies the outcome of NeighbourState.
type Lookup uint8

const (
	// Found means the neighbour's block exists and its state was read.
	Found Lookup = iota
	// Absent means the neighbour's block does not exist; the caller
	// substitutes a null state.
	Absent
	// Outside means the neighbour lies beyond a Fixed border and the subject
	// cell must not be simulated.
	Outside
)

// NeighbourState reads the previous-generation state of the cell at delta from
// the subject cell. A Torus border wraps the target first; a wrapped position
// still outside the border is a bug and panics.
func (b Border) NeighbourState(store *blocks.Store, delta core.Vec2, block, cell core.Vec2) (core.CellState, Lookup) {
	dim := store.Dim()
	pos := core.Position{Block: block, Cell: cell.Add(delta)}.Normalised(dim)
	switch b.Type {
	case Torus:
		pos = b.Wrap(pos, dim)
		if !b.Contains(pos) {
			panic(fmt.Sprintf("border: torus wrap left %v outside [%v, %v)", pos, b.Min, b.Max))
		}
	case Fixed:
		if !b.Contains(pos) {
			return 0, Outside
		}
	}
	nb := store.Get(pos.Block)
	if nb == nil {
		return 0, Absent
	}
	return nb.PreviousState(pos.Cell), Found
}
