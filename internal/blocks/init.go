package blocks

import (
	"errors"
	"fmt"
	"strings"

	"ca-sandbox/internal/core"
)

// InitFunc chooses the starting state of a freshly created cell.
type InitFunc func(block, cell core.Vec2) core.CellState

// InitType selects how new cells are initialised.
type InitType uint8

const (
	// InitRandom picks uniformly from Initialisation.States.
	InitRandom InitType = iota
)

// ErrUnknownInitType is returned by ParseInitType.
var ErrUnknownInitType = errors.New("blocks: unknown initialisation type")

// String returns the canonical name of the initialisation type.
func (t InitType) String() string {
	if t == InitRandom {
		return "RANDOM"
	}
	return fmt.Sprintf("InitType(%d)", t)
}

// ParseInitType parses the canonical name, case-insensitively.
func ParseInitType(name string) (InitType, error) {
	if strings.EqualFold(name, "RANDOM") {
		return InitRandom, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInitType, name)
}

// Initialisation is the policy applied to blocks created by the store.
type Initialisation struct {
	Type   InitType
	States []core.CellState
}

// DefaultInitialisation fills new cells with state 0.
func DefaultInitialisation() Initialisation {
	return Initialisation{Type: InitRandom, States: []core.CellState{0}}
}

// Func returns an InitFunc drawing from rng. A nil rng is only valid when the
// policy has a single state.
func (i Initialisation) Func(rng *core.RNG) InitFunc {
	states := append([]core.CellState(nil), i.States...)
	if len(states) <= 1 || rng == nil {
		var s core.CellState
		if len(states) > 0 {
			s = states[0]
		}
		return func(core.Vec2, core.Vec2) core.CellState { return s }
	}
	return func(core.Vec2, core.Vec2) core.CellState { return rng.Pick(states) }
}
