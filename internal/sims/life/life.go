// Package life registers outer-totalistic "Life-like" rules such as B3/S23,
// expressed as count-matching patterns.
package life

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
	"ca-sandbox/internal/rule"
	"ca-sandbox/internal/sandbox"
)

// Cell states.
const (
	Dead  core.CellState = 0
	Alive core.CellState = 1
)

// ErrBadRulestring is returned by ParseRulestring.
var ErrBadRulestring = errors.New("life: bad rulestring")

// Config holds the rule and the shared sandbox parameters.
type Config struct {
	sandbox.Config
	Birth   []uint32
	Survive []uint32
}

// DefaultConfig returns Conway's Game of Life on a 256x256 torus.
func DefaultConfig() Config {
	return Config{Config: sandbox.DefaultConfig(), Birth: []uint32{3}, Survive: []uint32{2, 3}}
}

// FromMap populates a Config from a string map. "rule" takes a rulestring.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	c.Config = sandbox.FromMap(cfg, c.Config)
	if v, ok := cfg["rule"]; ok {
		if b, s, err := ParseRulestring(v); err == nil {
			c.Birth, c.Survive = b, s
		}
	}
	return c
}

// ParseRulestring parses "B3/S23" notation. Counts range over 0..8.
func ParseRulestring(s string) (birth, survive []uint32, err error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "/")
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "B") || !strings.HasPrefix(parts[1], "S") {
		return nil, nil, fmt.Errorf("%w: %q", ErrBadRulestring, s)
	}
	digits := func(p string) ([]uint32, error) {
		var out []uint32
		for _, r := range p {
			n, err := strconv.Atoi(string(r))
			if err != nil || n > 8 {
				return nil, fmt.Errorf("%w: %q", ErrBadRulestring, s)
			}
			if !slices.Contains(out, uint32(n)) {
				out = append(out, uint32(n))
			}
		}
		return out, nil
	}
	if birth, err = digits(parts[0][1:]); err != nil {
		return nil, nil, err
	}
	if survive, err = digits(parts[1][1:]); err != nil {
		return nil, nil, err
	}
	return birth, survive, nil
}

// Rulestring formats birth and survive counts as "B3/S23".
func Rulestring(birth, survive []uint32) string {
	var sb strings.Builder
	sb.WriteByte('B')
	for _, n := range birth {
		sb.WriteString(strconv.Itoa(int(n)))
	}
	sb.WriteString("/S")
	for _, n := range survive {
		sb.WriteString(strconv.Itoa(int(n)))
	}
	return sb.String()
}

// Rule builds the pattern configuration for a Life-like rule on the Moore
// neighbourhood of radius 1. Dead is a null state unless birth includes 0.
func Rule(birth, survive []uint32) *rule.Configuration {
	cfg := &rule.Configuration{
		Shape:  neighbourhood.Moore,
		Radius: 1,
		States: rule.MustNamedStates("Dead", "Alive"),
	}
	if !slices.Contains(birth, 0) {
		cfg.NullStates = []core.CellState{Dead}
	}
	aliveGroup, _ := rule.NewStateGroup(Alive)
	add := func(self, result core.CellState, n uint32, comment string) {
		p := cfg.AddPattern(result, comment, centred(cfg, rule.Is(self))...)
		p.Count = rule.CountMatching{Enabled: true, Group: aliveGroup, Op: rule.Equal, Threshold: n}
	}
	for _, n := range birth {
		add(Dead, Alive, n, fmt.Sprintf("born with %d", n))
	}
	for _, n := range survive {
		add(Alive, Alive, n, fmt.Sprintf("survives with %d", n))
	}
	cfg.AddPattern(Dead, "dies", centred(cfg, rule.Is(Alive))...)
	return cfg
}

// centred returns wildcards with centre in the middle.
func centred(cfg *rule.Configuration, centre rule.PatternCell) []rule.PatternCell {
	cells := make([]rule.PatternCell, cfg.NInputs())
	for i := range cells {
		cells[i] = rule.Any()
	}
	cells[cfg.CentreIndex()] = centre
	return cells
}

// New returns a sandbox running the configured rule.
func New(c Config, logger *log.Logger) (*sandbox.Sandbox, error) {
	return sandbox.New("life", Rule(c.Birth, c.Survive), c.Config, nil, logger)
}

func init() {
	core.Register("life", func(cfg map[string]string) (core.Sim, error) {
		sb, err := New(FromMap(cfg), nil)
		if err != nil {
			return nil, err
		}
		return sb, nil
	})
}
