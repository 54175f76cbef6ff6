package sandbox

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
	"ca-sandbox/internal/rule"
	"ca-sandbox/internal/simulate"
)

// blinkRule flips every On cell to Off and every Off cell with an On
// neighbour to On.
func blinkRule() *rule.Configuration {
	cfg := &rule.Configuration{
		Shape:      neighbourhood.VonNeumann,
		Radius:     1,
		States:     rule.MustNamedStates("Off", "On"),
		NullStates: []core.CellState{0},
	}
	cfg.AddPattern(0, "off", rule.Any(), rule.Any(), rule.Is(1), rule.Any(), rule.Any())
	cfg.AddPattern(1, "spread", rule.Or(1), rule.Or(1), rule.Is(0), rule.Or(1), rule.Or(1))
	return cfg
}

func newSandbox(t *testing.T, cfg Config) *Sandbox {
	t.Helper()
	sb, err := New("blink", blinkRule(), cfg, nil, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sb.WaitBuilt(ctx))
	return sb
}

func smallConfig() Config {
	c := DefaultConfig()
	c.Width, c.Height, c.BlockDim = 8, 8, 4
	c.Border = border.Fixed
	return c
}

func TestFromMap(t *testing.T) {
	c := FromMap(map[string]string{
		"w": "10", "h": "-3", "block": "8", "border": "fixed", "seed": "9", "density": "2",
	}, DefaultConfig())
	assert.Equal(t, 10, c.Width)
	assert.Equal(t, 256, c.Height)
	assert.Equal(t, 8, c.BlockDim)
	assert.Equal(t, border.Fixed, c.Border)
	assert.Equal(t, int64(9), c.Seed)
	assert.Equal(t, 0.2, c.Density)
	assert.Equal(t, DefaultConfig(), FromMap(nil, DefaultConfig()))
}

func TestNewValidates(t *testing.T) {
	bad := blinkRule()
	bad.States = rule.NamedStates{}
	_, err := New("bad", bad, smallConfig(), nil, nil)
	require.ErrorIs(t, err, rule.ErrNoStates)

	c := smallConfig()
	c.Width = 0
	_, err = New("bad", blinkRule(), c, nil, nil)
	require.Error(t, err)
}

func TestViewportBorder(t *testing.T) {
	b := ViewportBorder(border.Torus, 10, 6, 4)
	assert.Equal(t, core.Position{}, b.Min)
	assert.Equal(t, core.Position{Block: core.Vec2{X: 2, Y: 1}, Cell: core.Vec2{X: 2, Y: 2}}, b.Max)
}

func TestPaintStepAndCells(t *testing.T) {
	sb := newSandbox(t, smallConfig())
	assert.Equal(t, 4, sb.BlockDim())
	sb.Paint(4, 4, 1)
	assert.Equal(t, core.CellState(1), sb.At(4, 4))
	assert.Equal(t, core.CellState(0), sb.At(100, 100), "absent block")

	stats, err := sb.Advance()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sb.Generation())
	assert.Positive(t, stats.Evaluated)
	cells := sb.Cells()
	assert.Equal(t, core.CellState(0), cells[4*8+4])
	for _, p := range [][2]int{{3, 4}, {5, 4}, {4, 3}, {4, 5}} {
		assert.Equal(t, core.CellState(1), cells[p[1]*8+p[0]], "cell %v", p)
	}

	p, ok := sb.Parameters().Lookup("generation")
	require.True(t, ok)
	assert.Equal(t, "1", p.Value)
	p, ok = sb.Parameters().Lookup("evaluated")
	require.True(t, ok)
	assert.NotEqual(t, "0", p.Value)
}

func TestCycleWraps(t *testing.T) {
	sb := newSandbox(t, smallConfig())
	assert.Equal(t, core.CellState(1), sb.Cycle(1, 1))
	assert.Equal(t, core.CellState(0), sb.Cycle(1, 1))
	assert.Equal(t, []string{"Off", "On"}, sb.StateNames())
}

func TestResetIsDeterministic(t *testing.T) {
	c := smallConfig()
	c.Density = 0.5
	sb := newSandbox(t, c)
	sb.Reset(11)
	first := slices.Clone(sb.Cells())
	assert.Contains(t, first, core.CellState(1))
	sb.Step()
	sb.Reset(11)
	assert.Equal(t, first, sb.Cells())
	assert.Equal(t, uint64(0), sb.Generation())
}

func TestSeederRunsWithoutLock(t *testing.T) {
	seeded := false
	sb, err := New("seeded", blinkRule(), smallConfig(), func(sb *Sandbox, rng *core.RNG) {
		seeded = true
		sb.Paint(0, 0, 1)
	}, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	sb.Reset(1)
	assert.True(t, seeded)
	assert.Equal(t, core.CellState(1), sb.At(0, 0))
}

func TestSaveLoadPruneReblock(t *testing.T) {
	sb := newSandbox(t, smallConfig())
	sb.Paint(1, 2, 1)
	sb.Paint(6, 6, 1)
	path := filepath.Join(t.TempDir(), "u.cauv")
	require.NoError(t, sb.Save(path))

	sb.Clear()
	assert.Equal(t, core.CellState(0), sb.At(1, 2))
	require.NoError(t, sb.Load(path))
	assert.Equal(t, core.CellState(1), sb.At(1, 2))
	assert.Equal(t, core.CellState(1), sb.At(6, 6))

	sb.Paint(6, 6, 0)
	assert.Equal(t, 1, sb.Prune())
	assert.Equal(t, 1, sb.Universe().Store.Len())

	sb.Reblock(2)
	assert.Equal(t, 2, sb.BlockDim())
	assert.Equal(t, core.CellState(1), sb.At(1, 2))
	b := sb.Universe().Options.Border
	assert.Equal(t, core.Vec2{X: 8, Y: 8}, b.Max.Global(2))
	_, err := sb.Advance()
	require.NoError(t, err)
}

func TestStepBeforeBuild(t *testing.T) {
	sb := newSandbox(t, smallConfig())
	sb.Rule().Destroy()
	_, err := sb.Advance()
	require.ErrorIs(t, err, simulate.ErrTreeNotBuilt)
	sb.Step()
	assert.Equal(t, uint64(0), sb.Generation())
}

func TestRebuild(t *testing.T) {
	sb := newSandbox(t, smallConfig())
	next := blinkRule()
	next.Patterns = next.Patterns[:1]
	status, err := sb.Rebuild(next)
	require.NoError(t, err)
	require.Equal(t, rule.BuildStarted, status)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sb.WaitBuilt(ctx))
	assert.Len(t, sb.Rule().Config().Patterns, 1)

	bad := blinkRule()
	bad.Radius = 0
	_, err = sb.Rebuild(bad)
	require.Error(t, err)
}
