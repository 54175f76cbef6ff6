// Package elementary projects a Wolfram elementary automaton onto the plane:
// row y+1 is the rule applied to row y, so the viewport fills with the
// history of the seed row one row per step.
package elementary

import (
	"fmt"
	"log"
	"strconv"

	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
	"ca-sandbox/internal/rule"
	"ca-sandbox/internal/sandbox"
	"ca-sandbox/internal/universe"
)

// Cell states.
const (
	Off core.CellState = 0
	On  core.CellState = 1
)

// Config holds the Wolfram code and the shared sandbox parameters.
type Config struct {
	sandbox.Config
	Rule uint8
}

// DefaultConfig returns rule 110.
func DefaultConfig() Config {
	return Config{Config: sandbox.DefaultConfig(), Rule: 110}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	c.Config = sandbox.FromMap(cfg, c.Config)
	if v, ok := cfg["rule"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 255 {
			c.Rule = uint8(parsed)
		}
	}
	return c
}

// Rule returns a Moore radius 1 configuration whose result depends only on
// the three cells above. Off is null unless the code turns an empty
// neighbourhood on.
func Rule(code uint8) *rule.Configuration {
	cfg := &rule.Configuration{
		Shape:  neighbourhood.Moore,
		Radius: 1,
		States: rule.MustNamedStates("Off", "On"),
	}
	if code&1 == 0 {
		cfg.NullStates = []core.CellState{Off}
	}
	n := cfg.NInputs()
	above := [3]int{}
	for i, dx := range []int32{-1, 0, 1} {
		idx, _ := neighbourhood.Index(cfg.Shape, cfg.Radius, core.Vec2{X: dx, Y: -1})
		above[i] = int(idx)
	}
	for k := 7; k >= 0; k-- {
		cells := make([]rule.PatternCell, n)
		for i := range cells {
			cells[i] = rule.Any()
		}
		cells[above[0]] = rule.Is(core.CellState(k >> 2 & 1))
		cells[above[1]] = rule.Is(core.CellState(k >> 1 & 1))
		cells[above[2]] = rule.Is(core.CellState(k & 1))
		cfg.AddPattern(core.CellState(code>>k&1), fmt.Sprintf("%03b", k), cells...)
	}
	return cfg
}

// New returns a sandbox running the given code. The border is fixed one cell
// beyond the viewport on the left, right and bottom so every visible row
// below the first resolves, while the seed row has nothing above it and
// keeps its state.
func New(c Config, logger *log.Logger) (*sandbox.Sandbox, error) {
	u := universe.New(c.BlockDim)
	dim := u.Store.Dim()
	u.Options.Border = border.Border{
		Type: border.Fixed,
		Min:  core.GlobalToPosition(core.Vec2{X: -1, Y: 0}, dim),
		Max:  core.GlobalToPosition(core.Vec2{X: int32(c.Width) + 1, Y: int32(c.Height) + 1}, dim),
	}
	u.Init.States = []core.CellState{Off}
	seed := func(sb *sandbox.Sandbox, _ *core.RNG) {
		sb.Paint(int32(sb.Size().W/2), 0, On)
	}
	return sandbox.NewWithUniverse(fmt.Sprintf("elementary-%d", c.Rule), Rule(c.Rule), u, c.Config, seed, logger)
}

func init() {
	core.Register("elementary", func(cfg map[string]string) (core.Sim, error) {
		sb, err := New(FromMap(cfg), nil)
		if err != nil {
			return nil, err
		}
		return sb, nil
	})
}
