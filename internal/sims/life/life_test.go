package life

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestParseRulestring(t *testing.T) {
	b, s, err := ParseRulestring("b36/s23")
	require.NoError(t, err)
	require.Equal(t, []uint32{3, 6}, b)
	require.Equal(t, []uint32{2, 3}, s)
	require.Equal(t, "B36/S23", Rulestring(b, s))

	for _, bad := range []string{"B3", "S23/B3", "B9/S2", "Bx/S2"} {
		_, _, err := ParseRulestring(bad)
		require.ErrorIs(t, err, ErrBadRulestring, bad)
	}
}

func TestFromMap(t *testing.T) {
	c := FromMap(map[string]string{"w": "32", "h": "16", "rule": "B36/S23", "border": "fixed", "seed": "x"})
	require.Equal(t, 32, c.Width)
	require.Equal(t, 16, c.Height)
	require.Equal(t, []uint32{3, 6}, c.Birth)
	require.Equal(t, border.Fixed, c.Border)
	require.Equal(t, DefaultConfig().Seed, c.Seed)
}

func TestRuleMatchesConway(t *testing.T) {
	cfg := Rule([]uint32{3}, []uint32{2, 3})
	require.NoError(t, cfg.Validate())
	require.Equal(t, []core.CellState{Dead}, cfg.NullStates)

	in := make([]core.CellState, 9)
	for mask := 0; mask < 1<<9; mask++ {
		n := 0
		for i := range in {
			in[i] = core.CellState(mask >> i & 1)
			if i != 4 && in[i] == Alive {
				n++
			}
		}
		want := Dead
		if (in[4] == Alive && (n == 2 || n == 3)) || (in[4] == Dead && n == 3) {
			want = Alive
		}
		if got := cfg.Evaluate(in); got != want {
			t.Fatalf("mask %09b: got %d, want %d", mask, got, want)
		}
	}

	require.Empty(t, Rule([]uint32{0, 3}, nil).NullStates, "B0 makes Dead unstable")
}

func TestGliderOnTorus(t *testing.T) {
	c := DefaultConfig()
	c.Width, c.Height, c.BlockDim = 8, 8, 4
	c.Density = 0
	sb, err := New(c, quiet())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sb.WaitBuilt(ctx))

	sb.Reset(1)
	glider := []core.Vec2{{X: 1, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}}
	for _, g := range glider {
		sb.Paint(g.X, g.Y, Alive)
	}
	// 32 generations carry the glider once around the 8x8 torus
	for i := 0; i < 32; i++ {
		_, err := sb.Advance()
		require.NoError(t, err)
	}
	require.Equal(t, uint64(32), sb.Generation())

	cells := sb.Cells()
	alive := 0
	for _, s := range cells {
		if s == Alive {
			alive++
		}
	}
	require.Equal(t, 5, alive)
	for _, g := range glider {
		require.Equal(t, Alive, sb.At(g.X, g.Y), "glider back at %v", g)
	}
	require.Equal(t, 4, sb.Universe().Store.Len(), "the torus never grows past its four blocks")
}
