package border

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/core"
)

func pos(bx, by, cx, cy int32) core.Position {
	return core.Position{Block: core.Vec2{X: bx, Y: by}, Cell: core.Vec2{X: cx, Y: cy}}
}

func torus() Border {
	return Border{Type: Torus, Min: pos(0, 0, 2, 2), Max: pos(1, 1, 2, 0)}
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{Fixed, Infinite, Torus} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		require.Equal(t, typ, got)
	}
	got, err := ParseType("torus")
	require.NoError(t, err)
	require.Equal(t, Torus, got)
	_, err = ParseType("klein")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestValidate(t *testing.T) {
	require.NoError(t, torus().Validate(8))
	require.NoError(t, Border{Type: Infinite}.Validate(8))
	empty := Border{Type: Fixed, Min: pos(0, 0, 3, 0), Max: pos(0, 1, 3, 0)}
	require.ErrorIs(t, empty.Validate(8), ErrEmptyBorder)
}

func TestContains(t *testing.T) {
	b := Border{Type: Fixed, Min: pos(0, 0, 0, 0), Max: pos(1, 1, 0, 0)}
	cases := []struct {
		p    core.Position
		want bool
	}{
		{pos(0, 0, 0, 0), true},
		{pos(0, 0, 7, 7), true},
		{pos(1, 0, 0, 0), false},
		{pos(0, -1, 7, 7), false},
		{pos(-1, 0, 7, 0), false},
	}
	for _, c := range cases {
		if got := b.Contains(c.p); got != c.want {
			t.Fatalf("Contains(%v) = %v, want %v", c.p, got, c.want)
		}
	}
	require.True(t, Border{Type: Infinite}.Contains(pos(-100, 100, 3, 3)))
}

func TestContainsBlock(t *testing.T) {
	b := torus()
	require.True(t, b.ContainsBlock(core.Vec2{X: 0, Y: 0}, 8))
	require.True(t, b.ContainsBlock(core.Vec2{X: 1, Y: 0}, 8))
	require.False(t, b.ContainsBlock(core.Vec2{X: 0, Y: 1}, 8), "max cell y is 0, so block row 1 is excluded")
	require.False(t, b.ContainsBlock(core.Vec2{X: -1, Y: 0}, 8))
}

func TestWrapTorus(t *testing.T) {
	const dim = 8
	b := torus()
	// border spans global x in [2, 10) and y in [2, 8)
	cases := []struct {
		in, want core.Position
	}{
		{pos(0, 0, 1, 2), pos(1, 0, 1, 2)},
		{pos(1, 0, 2, 2), pos(0, 0, 2, 2)},
		{pos(0, 1, 0, 0), pos(1, 0, 0, 2)},
		{pos(0, 0, 4, 1), pos(0, 0, 4, 7)},
		{pos(0, 0, -7, 9), pos(1, 0, 1, 3)},
	}
	for _, c := range cases {
		got := b.Wrap(c.in, dim)
		require.Equal(t, c.want, got, "wrap %v", c.in)
		require.True(t, b.Contains(got))
		require.Equal(t, got, b.Wrap(got, dim), "wrap must be idempotent")
	}

	inside := pos(0, 0, 5, 5)
	require.Equal(t, inside, b.Wrap(inside, dim))
	fixed := Border{Type: Fixed, Min: b.Min, Max: b.Max}
	require.Equal(t, pos(3, 3, 0, 0), fixed.Wrap(pos(3, 3, 0, 0), dim))
}

func TestNeighbourState(t *testing.T) {
	store := blocks.New(4)
	b := store.GetOrCreate(core.Vec2{}, nil)
	b.Previous[b.MustIndex(core.Vec2{X: 3, Y: 0})] = 2
	b.Cells[b.MustIndex(core.Vec2{X: 3, Y: 0})] = 5

	inf := Border{Type: Infinite}
	st, res := inf.NeighbourState(store, core.Vec2{X: 1}, core.Vec2{}, core.Vec2{X: 2, Y: 0})
	require.Equal(t, Found, res)
	require.Equal(t, core.CellState(2), st, "neighbour reads the previous generation")

	_, res = inf.NeighbourState(store, core.Vec2{X: 1}, core.Vec2{}, core.Vec2{X: 3, Y: 0})
	require.Equal(t, Absent, res)

	fixed := Border{Type: Fixed, Min: pos(0, 0, 0, 0), Max: pos(1, 1, 0, 0)}
	_, res = fixed.NeighbourState(store, core.Vec2{X: -1}, core.Vec2{}, core.Vec2{})
	require.Equal(t, Outside, res)

	tor := Border{Type: Torus, Min: pos(0, 0, 0, 0), Max: pos(1, 1, 0, 0)}
	st, res = tor.NeighbourState(store, core.Vec2{X: -1}, core.Vec2{}, core.Vec2{})
	require.Equal(t, Found, res)
	require.Equal(t, core.CellState(2), st)
}
