package elementary

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ca-sandbox/internal/core"
)

func TestRuleTable(t *testing.T) {
	for _, code := range []uint8{30, 90, 110, 255} {
		cfg := Rule(code)
		require.NoError(t, cfg.Validate())
		require.Equal(t, code&1 == 0, len(cfg.NullStates) == 1)
		in := make([]core.CellState, 9)
		for k := 0; k < 8; k++ {
			in[0], in[1], in[2] = core.CellState(k>>2&1), core.CellState(k>>1&1), core.CellState(k&1)
			in[4] = core.CellState(1 - k&1)
			require.Equal(t, core.CellState(code>>k&1), cfg.Evaluate(in), "rule %d pattern %03b", code, k)
		}
	}
}

func TestFromMap(t *testing.T) {
	require.Equal(t, uint8(30), FromMap(map[string]string{"rule": "30"}).Rule)
	require.Equal(t, uint8(110), FromMap(map[string]string{"rule": "300"}).Rule)
}

// Rule 90 from a single cell draws Pascal's triangle mod 2.
func TestRule90Sierpinski(t *testing.T) {
	c := DefaultConfig()
	c.Rule = 90
	c.Width, c.Height = 33, 16
	c.BlockDim = 8
	sb, err := New(c, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sb.WaitBuilt(ctx))

	sb.Reset(0)
	for i := 0; i < c.Height; i++ {
		_, err := sb.Advance()
		require.NoError(t, err)
	}
	centre := c.Width / 2
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			k := x - centre
			want := Off
			if k >= -y && k <= y && (y+k)%2 == 0 {
				m := (y + k) / 2
				if m&y == m {
					want = On
				}
			}
			require.Equal(t, want, sb.At(int32(x), int32(y)), "cell (%d,%d)", x, y)
		}
	}
}
