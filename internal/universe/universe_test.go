package universe

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/require"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
)

func sample() *Universe {
	u := New(4)
	u.Options.Border = border.Border{
		Type: border.Torus,
		Min:  core.Position{Block: core.Vec2{X: -2, Y: -1}, Cell: core.Vec2{X: 1, Y: 3}},
		Max:  core.Position{Block: core.Vec2{X: 3, Y: 2}},
	}
	u.Options.MarkUnresolved = true
	u.Init = blocks.Initialisation{Type: blocks.InitRandom, States: []core.CellState{0, 2}}

	init := u.Init.Func(core.NewRNG(9))
	for _, p := range []core.Vec2{{X: 0, Y: 0}, {X: -3, Y: 7}, {X: 100, Y: -100}} {
		u.Store.GetOrCreate(p, init)
	}
	u.Store.SetCell(core.Position{Cell: core.Vec2{X: 1, Y: 1}}, core.DebugState, init)
	return u
}

func requireSameCells(t *testing.T, want, got *blocks.Store) {
	t.Helper()
	require.Equal(t, want.Dim(), got.Dim())
	require.Equal(t, want.Len(), got.Len())
	for b := range want.All() {
		other := got.Get(b.Position)
		require.NotNil(t, other, "block %v missing", b.Position)
		require.Equal(t, b.Cells, other.Cells, "block %v", b.Position)
		require.Equal(t, other.Cells, other.Previous, "loaded blocks start with previous == current")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	u := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, u))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, u.Options, got.Options)
	require.Equal(t, u.Init, got.Init)
	require.Equal(t, u.Store.Buckets(), got.Store.Buckets())
	requireSameCells(t, u.Store, got.Store)
}

func TestSaveLoadFile(t *testing.T) {
	u := sample()
	path := filepath.Join(t.TempDir(), "world.cauv")
	require.NoError(t, Save(path, u))
	got, err := Load(path)
	require.NoError(t, err)
	requireSameCells(t, u.Store, got.Store)
}

func TestReadRejectsForeignData(t *testing.T) {
	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	_, err := w.Write([]byte("PNG!not a universe"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = Read(&buf)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestReadTruncated(t *testing.T) {
	var full bytes.Buffer
	require.NoError(t, Write(&full, sample()))

	// re-frame a prefix of the decoded payload so the snappy layer is valid
	var payload bytes.Buffer
	_, err := payload.ReadFrom(snappy.NewReader(bytes.NewReader(full.Bytes())))
	require.NoError(t, err)
	var cut bytes.Buffer
	w := snappy.NewBufferedWriter(&cut)
	_, err = w.Write(payload.Bytes()[:payload.Len()-5])
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = Read(&cut)
	require.Error(t, err)
}

func TestPruneNullBlocks(t *testing.T) {
	s := blocks.New(2)
	zero := func(core.Vec2, core.Vec2) core.CellState { return 0 }
	s.GetOrCreate(core.Vec2{X: 0}, zero)
	s.GetOrCreate(core.Vec2{X: 1}, zero)
	s.GetOrCreate(core.Vec2{X: 2}, zero)
	s.SetCell(core.Position{Block: core.Vec2{X: 1}}, 1, zero)
	s.Get(core.Vec2{X: 2}).Previous[3] = 1

	isNull := func(st core.CellState) bool { return st == 0 }
	require.Equal(t, 1, PruneNullBlocks(s, isNull))
	require.Nil(t, s.Get(core.Vec2{X: 0}))
	require.NotNil(t, s.Get(core.Vec2{X: 1}))
	require.NotNil(t, s.Get(core.Vec2{X: 2}), "previous generation still holds a live cell")
}
