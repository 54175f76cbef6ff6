package ruleconfig

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
	"ca-sandbox/internal/rule"
	"ca-sandbox/internal/sandbox"
)

const lifeYAML = `
neighbourhood:
  shape: MOORE
  radius: 1
states: [Dead, Alive]
null_states: [Dead]
patterns:
  - comment: birth
    cells: |
      * * *
      * Dead *
      * * *
    result: Alive
    count: {states: [Alive], op: "=", n: 3}
  - comment: survive
    cells: |
      * * *
      * Alive *
      * * *
    result: Alive
    count: {states: [Alive], op: "<=", n: 3}
  - cells: "* * * * Alive * * * *"
    result: Dead
universe:
  block_dim: 8
  border: {type: TORUS, min: [0, 0, 0, 0], max: [2, 2, 0, 0]}
  init: {type: RANDOM, states: [Dead, Alive]}
  options: {mark_unresolved: true, max_blocks: 4096}
`

func TestConfigurationFromYAML(t *testing.T) {
	doc, err := Parse([]byte(lifeYAML))
	require.NoError(t, err)
	cfg, err := doc.Configuration()
	require.NoError(t, err)

	require.Equal(t, neighbourhood.Moore, cfg.Shape)
	require.Equal(t, uint32(1), cfg.Radius)
	require.Equal(t, []string{"Dead", "Alive"}, cfg.States.Names())
	require.Equal(t, []core.CellState{0}, cfg.NullStates)
	require.Len(t, cfg.Patterns, 3)
	require.Equal(t, "birth", cfg.Patterns[0].Comment)
	require.Equal(t, rule.State, cfg.Patterns[0].Cells[4].Kind)
	require.Equal(t, rule.Wildcard, cfg.Patterns[0].Cells[0].Kind)
	require.True(t, cfg.Patterns[1].Count.Enabled)
	require.Equal(t, rule.LessOrEqual, cfg.Patterns[1].Count.Op)

	in := []core.CellState{1, 1, 1, 0, 0, 0, 0, 0, 0}
	require.Equal(t, core.CellState(1), cfg.Evaluate(in))
	in[4] = 1
	in[5] = 1
	require.Equal(t, core.CellState(0), cfg.Evaluate(in), "four neighbours kill")
}

func TestUniverseSection(t *testing.T) {
	doc, err := Parse([]byte(lifeYAML))
	require.NoError(t, err)
	cfg, err := doc.Configuration()
	require.NoError(t, err)
	u, err := doc.NewUniverse(cfg.States)
	require.NoError(t, err)

	require.Equal(t, int32(8), u.Store.Dim())
	require.Equal(t, border.Torus, u.Options.Border.Type)
	require.Equal(t, core.Vec2{X: 2, Y: 2}, u.Options.Border.Max.Block)
	require.True(t, u.Options.MarkUnresolved)
	require.Equal(t, 4096, u.Options.MaxBlocks)
	require.Equal(t, blocks.InitRandom, u.Init.Type)
	require.Equal(t, []core.CellState{0, 1}, u.Init.States)

	back := DescribeUniverse(u, cfg.States)
	require.Equal(t, *doc.Universe, *back)

	doc.Universe = nil
	u, err = doc.NewUniverse(cfg.States)
	require.NoError(t, err)
	require.Equal(t, int32(blocks.DefaultDim), u.Store.Dim())
	require.Equal(t, border.Infinite, u.Options.Border.Type)
}

func TestRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(lifeYAML))
	require.NoError(t, err)
	cfg, err := doc.Configuration()
	require.NoError(t, err)

	out := FromConfiguration(cfg)
	require.Equal(t, "* * *\n* Dead *\n* * *", out.Patterns[0].Cells)
	data, err := out.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	cfg2, err := again.Configuration()
	require.NoError(t, err)
	require.Equal(t, cfg, cfg2)
}

func TestTokens(t *testing.T) {
	states := rule.MustNamedStates("A", "B", "C")
	cases := []struct {
		tok  string
		kind rule.CellKind
		want []core.CellState
	}{
		{"*", rule.Wildcard, nil},
		{"B", rule.State, []core.CellState{1}},
		{"A|C", rule.State, []core.CellState{0, 2}},
		{"!B", rule.NotState, []core.CellState{1}},
		{"(C|A)", rule.OrState, []core.CellState{2, 0}},
	}
	for _, c := range cases {
		cell, err := ParseToken(states, c.tok)
		require.NoError(t, err, c.tok)
		require.Equal(t, c.kind, cell.Kind, c.tok)
		if c.want != nil {
			require.Equal(t, c.want, cell.Group.States(), c.tok)
		}
		require.Equal(t, c.tok, FormatToken(states, cell))
	}

	for _, bad := range []string{"!", "()", "D", "A|", "(A|Z)"} {
		_, err := ParseToken(states, bad)
		require.ErrorIs(t, err, ErrBadToken, bad)
	}
}

func TestConfigurationErrors(t *testing.T) {
	cases := map[string]string{
		"unknown shape":  strings.Replace(lifeYAML, "MOORE", "HEX", 1),
		"unknown result": strings.Replace(lifeYAML, "result: Dead", "result: Zombie", 1),
		"short pattern":  strings.Replace(lifeYAML, `"* * * * Alive * * * *"`, `"* Alive"`, 1),
		"bad op":         strings.Replace(lifeYAML, `op: "="`, `op: "~"`, 1),
	}
	for name, src := range cases {
		doc, err := Parse([]byte(src))
		require.NoError(t, err, name)
		_, err = doc.Configuration()
		require.Error(t, err, name)
	}

	_, err := Parse([]byte("states: [A]\nbogus: 1\n"))
	require.Error(t, err, "unknown fields are rejected")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "life.yaml")
	require.NoError(t, os.WriteFile(path, []byte(lifeYAML), 0o644))
	doc, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Patterns, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSandboxFromDocument(t *testing.T) {
	doc, err := Parse([]byte(lifeYAML))
	require.NoError(t, err)
	cfg := sandbox.DefaultConfig()
	cfg.Width, cfg.Height = 16, 16
	sb, err := doc.Sandbox("yaml", cfg, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	require.Equal(t, 8, sb.BlockDim())
	require.Equal(t, border.Torus, sb.Universe().Options.Border.Type)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sb.WaitBuilt(ctx))
	sb.Paint(4, 4, 1)
	_, err = sb.Advance()
	require.NoError(t, err)
	require.Equal(t, uint64(1), sb.Generation())

	doc.Patterns[0].Result = "Nobody"
	_, err = doc.Sandbox("yaml", cfg, nil)
	require.Error(t, err)
}
