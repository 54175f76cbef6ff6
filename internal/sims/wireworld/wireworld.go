// Package wireworld registers Brian Silverman's Wireworld.
package wireworld

import (
	"log"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
	"ca-sandbox/internal/rule"
	"ca-sandbox/internal/sandbox"
)

// Cell states.
const (
	Empty     core.CellState = 0
	Head      core.CellState = 1
	Tail      core.CellState = 2
	Conductor core.CellState = 3
)

// Config holds the shared sandbox parameters. Density is unused; Reset lays
// out loops instead of scattering.
type Config struct {
	sandbox.Config
	Spacing int
}

// DefaultConfig returns loops on a 24 cell grid.
func DefaultConfig() Config {
	return Config{Config: sandbox.DefaultConfig(), Spacing: 24}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	c.Config = sandbox.FromMap(cfg, c.Config)
	return c
}

// Rule returns the four Wireworld transitions.
func Rule() *rule.Configuration {
	cfg := &rule.Configuration{
		Shape:      neighbourhood.Moore,
		Radius:     1,
		States:     rule.MustNamedStates("Empty", "Head", "Tail", "Conductor"),
		NullStates: []core.CellState{Empty},
	}
	n := cfg.NInputs()
	centred := func(self core.CellState) []rule.PatternCell {
		cells := make([]rule.PatternCell, n)
		for i := range cells {
			cells[i] = rule.Any()
		}
		cells[cfg.CentreIndex()] = rule.Is(self)
		return cells
	}
	heads, _ := rule.NewStateGroup(Head)
	cfg.AddPattern(Tail, "head becomes tail", centred(Head)...)
	cfg.AddPattern(Conductor, "tail becomes conductor", centred(Tail)...)
	one := cfg.AddPattern(Head, "one head nearby", centred(Conductor)...)
	one.Count = rule.CountMatching{Enabled: true, Group: heads, Op: rule.Equal, Threshold: 1}
	two := cfg.AddPattern(Head, "two heads nearby", centred(Conductor)...)
	two.Count = rule.CountMatching{Enabled: true, Group: heads, Op: rule.Equal, Threshold: 2}
	return cfg
}

// Loop draws the outline of a w x h rectangle of conductor with its top-left
// corner at (x, y), and starts one electron travelling clockwise along the
// top edge.
func Loop(sb *sandbox.Sandbox, x, y, w, h int32) {
	for i := int32(0); i < w; i++ {
		sb.Paint(x+i, y, Conductor)
		sb.Paint(x+i, y+h-1, Conductor)
	}
	for j := int32(1); j < h-1; j++ {
		sb.Paint(x, y+j, Conductor)
		sb.Paint(x+w-1, y+j, Conductor)
	}
	sb.Paint(x+1, y, Tail)
	sb.Paint(x+2, y, Head)
}

// New returns a sandbox running Wireworld. Reset fills the viewport with
// loops of random size, one per grid square.
func New(c Config, logger *log.Logger) (*sandbox.Sandbox, error) {
	spacing := max(c.Spacing, 6)
	seed := func(sb *sandbox.Sandbox, rng *core.RNG) {
		size := sb.Size()
		for y := 0; y+spacing <= size.H; y += spacing {
			for x := 0; x+spacing <= size.W; x += spacing {
				w := 4 + rng.IntN(spacing-5)
				h := 3 + rng.IntN(spacing-4)
				Loop(sb, int32(x+1), int32(y+1), int32(w), int32(h))
			}
		}
	}
	return sandbox.New("wireworld", Rule(), c.Config, seed, logger)
}

func init() {
	core.Register("wireworld", func(cfg map[string]string) (core.Sim, error) {
		sb, err := New(FromMap(cfg), nil)
		if err != nil {
			return nil, err
		}
		return sb, nil
	})
}
