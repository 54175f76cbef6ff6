package core

import "math"

// CellState identifies a named state. Values are dense, starting at 0.
type CellState uint32

// DebugState marks a cell whose transition could not be evaluated.
const DebugState CellState = math.MaxUint32

// Size describes the dimensions of a simulation viewport.
type Size struct {
	W int
	H int
}

// Sim defines the minimal contract a cellular automaton driver must implement.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []CellState
}

// Factory constructs a Sim using an optional configuration map.
type Factory func(cfg map[string]string) (Sim, error)

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}
