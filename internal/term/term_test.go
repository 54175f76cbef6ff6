package term

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/render"
	"ca-sandbox/internal/sims/life"
)

func newViewer(t *testing.T) (*Viewer, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(20, 6)
	t.Cleanup(screen.Fini)

	c := life.DefaultConfig()
	c.Width, c.Height, c.BlockDim = 16, 8, 4
	sb, err := life.New(c, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sb.WaitBuilt(ctx))
	return NewViewer(screen, sb, 10, 1), screen
}

func TestDrawHalfBlocks(t *testing.T) {
	v, screen := newViewer(t)
	v.sb.Paint(3, 1, life.Alive)
	v.cursor = core.Vec2{X: 10, Y: 6}
	v.Draw()

	r, _, style, _ := screen.GetContent(3, 0)
	assert.Equal(t, upperHalf, r)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, rgb(render.StateColour(life.Dead)), fg)
	assert.Equal(t, rgb(render.StateColour(life.Alive)), bg)

	_, _, style, _ = screen.GetContent(10, 3)
	fg, _, _ = style.Decompose()
	assert.Equal(t, rgb(render.Lighten(render.Lighten(render.StateColour(life.Dead)))), fg)

	r, _, _, _ = screen.GetContent(1, 5)
	assert.Equal(t, 'l', r, "status line starts with the sim name")
}

func TestKeys(t *testing.T) {
	v, _ := newViewer(t)
	key := func(k tcell.Key, r rune) bool {
		return v.HandleEvent(tcell.NewEventKey(k, r, tcell.ModNone))
	}

	require.True(t, key(tcell.KeyRune, ' '))
	assert.True(t, v.Paused())

	require.True(t, key(tcell.KeyRight, 0))
	require.True(t, key(tcell.KeyDown, 0))
	require.True(t, key(tcell.KeyLeft, 0))
	require.True(t, key(tcell.KeyLeft, 0))
	assert.Equal(t, core.Vec2{X: 0, Y: 1}, v.Cursor())

	require.True(t, key(tcell.KeyEnter, 0))
	assert.Equal(t, life.Alive, v.sb.At(0, 1))

	require.True(t, key(tcell.KeyRune, 'n'))
	v.Tick()
	assert.Equal(t, uint64(1), v.sb.Generation())
	assert.Equal(t, life.Dead, v.sb.At(0, 1), "lone cell dies")
	v.Tick()
	assert.Equal(t, uint64(1), v.sb.Generation(), "paused")

	require.True(t, key(tcell.KeyRune, '+'))
	assert.Equal(t, 20, v.tps)
	assert.Contains(t, v.Status(), "paused")

	assert.False(t, key(tcell.KeyRune, 'q'))
	assert.False(t, key(tcell.KeyEscape, 0))
}
