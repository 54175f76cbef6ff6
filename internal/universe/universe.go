// Package universe bundles a block store with the options used to simulate
// it, and saves and loads the whole thing as a compressed snapshot.
package universe

import (
	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/core"
	"ca-sandbox/internal/simulate"
)

// Universe is the state a simulation runs on.
type Universe struct {
	Store   *blocks.Store
	Options simulate.Options
	Init    blocks.Initialisation
}

// New returns an empty universe of dim x dim blocks using the default
// simulate options and initialisation.
func New(dim int) *Universe {
	return &Universe{
		Store:   blocks.New(dim),
		Options: simulate.DefaultOptions(),
		Init:    blocks.DefaultInitialisation(),
	}
}

// PruneNullBlocks deletes every block whose current and previous states are
// all null and returns how many were removed.
func PruneNullBlocks(store *blocks.Store, isNull func(core.CellState) bool) int {
	var doomed []core.Vec2
	for b := range store.All() {
		if allNull(b.Cells, isNull) && allNull(b.Previous, isNull) {
			doomed = append(doomed, b.Position)
		}
	}
	for _, p := range doomed {
		store.Delete(p)
	}
	return len(doomed)
}

func allNull(states []core.CellState, isNull func(core.CellState) bool) bool {
	for _, s := range states {
		if !isNull(s) {
			return false
		}
	}
	return true
}
