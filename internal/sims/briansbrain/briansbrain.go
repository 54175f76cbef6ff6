package briansbrain

import (
	"log"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
	"ca-sandbox/internal/rule"
	"ca-sandbox/internal/sandbox"
)

// Cell states.
const (
	Off   core.CellState = 0
	On    core.CellState = 1
	Dying core.CellState = 2
)

// Config holds the shared sandbox parameters.
type Config struct {
	sandbox.Config
}

// DefaultConfig seeds one cell in eight as firing.
func DefaultConfig() Config {
	c := sandbox.DefaultConfig()
	c.Density = 0.125
	return Config{Config: c}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	c.Config = sandbox.FromMap(cfg, c.Config)
	return c
}

// Rule returns Brian's Brain: firing cells start dying, dying cells turn
// off, and an off cell fires when exactly two neighbours fire.
func Rule() *rule.Configuration {
	cfg := &rule.Configuration{
		Shape:      neighbourhood.Moore,
		Radius:     1,
		States:     rule.MustNamedStates("Off", "On", "Dying"),
		NullStates: []core.CellState{Off},
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
	cfg.AddPattern(Dying, "firing cells start dying", centred(On)...)
	cfg.AddPattern(Off, "dying cells turn off", centred(Dying)...)
	fire := cfg.AddPattern(On, "fire with two firing neighbours", centred(Off)...)
	onGroup, _ := rule.NewStateGroup(On)
	fire.Count = rule.CountMatching{Enabled: true, Group: onGroup, Op: rule.Equal, Threshold: 2}
	return cfg
}

// New returns a sandbox running Brian's Brain. Reset scatters On cells only.
func New(c Config, logger *log.Logger) (*sandbox.Sandbox, error) {
	density := c.Density
	seed := func(sb *sandbox.Sandbox, rng *core.RNG) {
		size := sb.Size()
		threshold := int(density * 1024)
		for y := 0; y < size.H; y++ {
			for x := 0; x < size.W; x++ {
				if rng.IntN(1024) < threshold {
					sb.Paint(int32(x), int32(y), On)
				}
			}
		}
	}
	return sandbox.New("briansbrain", Rule(), c.Config, seed, logger)
}

func init() {
	core.Register("briansbrain", func(cfg map[string]string) (core.Sim, error) {
		sb, err := New(FromMap(cfg), nil)
		if err != nil {
			return nil, err
		}
		return sb, nil
	})
}
