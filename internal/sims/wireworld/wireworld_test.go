package wireworld

import (
	"context"
	"io"
	"log"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/sandbox"
)

func TestRuleTransitions(t *testing.T) {
	cfg := Rule()
	require.NoError(t, cfg.Validate())
	in := make([]core.CellState, 9)

	in[4] = Head
	require.Equal(t, Tail, cfg.Evaluate(in))
	in[4] = Tail
	require.Equal(t, Conductor, cfg.Evaluate(in))

	in[4] = Conductor
	require.Equal(t, Conductor, cfg.Evaluate(in))
	in[0] = Head
	require.Equal(t, Head, cfg.Evaluate(in))
	in[8] = Head
	require.Equal(t, Head, cfg.Evaluate(in))
	in[2] = Head
	require.Equal(t, Conductor, cfg.Evaluate(in), "three heads")

	in[4] = Empty
	require.Equal(t, Empty, cfg.Evaluate(in))
}

func newSandbox(t *testing.T) *sandbox.Sandbox {
	t.Helper()
	c := DefaultConfig()
	c.Width, c.Height = 16, 16
	c.BlockDim = 8
	c.Spacing = 16
	sb, err := New(c, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sb.WaitBuilt(ctx))
	return sb
}

func TestLoopConservesWireAndRecurs(t *testing.T) {
	sb := newSandbox(t)
	sb.Clear()
	Loop(sb, 2, 2, 8, 6)
	start := slices.Clone(sb.Cells())

	wire := func(cells []core.CellState) int {
		n := 0
		for _, s := range cells {
			if s != Empty {
				n++
			}
		}
		return n
	}
	require.Equal(t, 24, wire(start))

	recurred := 0
	for i := 1; i <= 48; i++ {
		_, err := sb.Advance()
		require.NoError(t, err)
		cells := sb.Cells()
		require.Equal(t, 24, wire(cells), "step %d", i)
		require.Contains(t, cells, Head, "step %d", i)
		if recurred == 0 && slices.Equal(cells, start) {
			recurred = i
		}
	}
	require.NotZero(t, recurred, "electron never returned to its start")
}

func TestResetLaysOutLoops(t *testing.T) {
	sb := newSandbox(t)
	sb.Reset(3)
	cells := sb.Cells()
	require.Contains(t, cells, Head)
	require.Contains(t, cells, Tail)
	require.Contains(t, cells, Conductor)
}
