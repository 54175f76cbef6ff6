package sims

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	require.Equal(t, []string{"briansbrain", "elementary", "life", "wireworld"}, Names())
}

func TestOpen(t *testing.T) {
	quiet := log.New(io.Discard, "", 0)
	sb, err := Open("life", map[string]string{"w": "32", "h": "24", "rule": "B36/S23"}, quiet)
	require.NoError(t, err)
	require.Equal(t, 32, sb.Size().W)
	require.Equal(t, 24, sb.Size().H)
	sb.Builder().Cancel()

	_, err = Open("ecology", nil, quiet)
	require.ErrorContains(t, err, "unknown sim")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	doc := `
neighbourhood: {shape: MOORE, radius: 1}
states: [Off, On]
null_states: [Off]
patterns:
  - cells: "* * * * * * * * *"
    result: Off
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	sb, err := OpenOrLoad("life", path, map[string]string{"w": "8", "h": "8"}, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	require.Equal(t, "seeds", sb.Name())
	require.Equal(t, []string{"Off", "On"}, sb.StateNames())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil, nil)
	require.Error(t, err)
}
