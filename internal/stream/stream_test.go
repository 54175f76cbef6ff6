package stream

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/sims/life"
)

func TestFrameRoundTrip(t *testing.T) {
	cells := []core.CellState{0, 1, 2, core.DebugState, 300, 7}
	data := EncodeFrame(9, core.Size{W: 3, H: 2}, cells)
	f, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), f.Generation)
	assert.Equal(t, core.Size{W: 3, H: 2}, f.Size)
	assert.Equal(t, []byte{0, 1, 2, DebugByte, DebugByte, 7}, f.Cells)

	_, err = DecodeFrame([]byte("nonsense"))
	require.ErrorIs(t, err, ErrBadFrame)
}

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand([]byte(" Pause\n"))
	require.NoError(t, err)
	assert.Equal(t, OpPause, c.Op)

	c, err = ParseCommand([]byte(`{"x":3,"y":-4}`))
	require.NoError(t, err)
	assert.Equal(t, Command{Op: OpPaint, X: 3, Y: -4}, c)

	c, err = ParseCommand([]byte(`{"op":"paint","x":1,"y":2,"state":1}`))
	require.NoError(t, err)
	require.NotNil(t, c.State)
	assert.Equal(t, uint32(1), *c.State)

	_, err = ParseCommand([]byte("explode"))
	require.ErrorIs(t, err, ErrBadCommand)
	_, err = ParseCommand([]byte("{"))
	require.ErrorIs(t, err, ErrBadCommand)
}

func newServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)
	c := life.DefaultConfig()
	c.Width, c.Height, c.BlockDim = 8, 8, 4
	sb, err := life.New(c, quiet)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sb.WaitBuilt(ctx))

	s := NewServer(sb, DefaultConfig(), quiet)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	typ, data, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, typ)
	f, err := DecodeFrame(data)
	require.NoError(t, err)
	return f
}

func TestWebsocketCommands(t *testing.T) {
	s, ts := newServer(t)
	ws := dial(t, ts)

	first := readFrame(t, ws)
	assert.Equal(t, core.Size{W: 8, H: 8}, first.Size)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("clear")))
	f := readFrame(t, ws)
	assert.NotContains(t, f.Cells, byte(life.Alive))

	// A blinker.
	for x := 2; x <= 4; x++ {
		msg := fmt.Sprintf(`{"x":%d,"y":3,"state":1}`, x)
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(msg)))
		f = readFrame(t, ws)
	}
	assert.Equal(t, byte(life.Alive), f.Cells[3*8+2])
	assert.Equal(t, byte(life.Alive), f.Cells[3*8+4])

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("pause")))
	require.Eventually(t, s.Paused, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("step")))
	require.Eventually(t, func() bool { return s.pending.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.Equal(t, 1, s.Tick())
	f = readFrame(t, ws)
	assert.Equal(t, uint64(1), f.Generation)
	assert.Equal(t, byte(life.Alive), f.Cells[2*8+3])
	assert.Equal(t, byte(life.Alive), f.Cells[4*8+3])
	assert.Equal(t, byte(life.Dead), f.Cells[3*8+2])

	require.Equal(t, 0, s.Tick(), "paused with nothing pending")
}

func TestStateEndpoint(t *testing.T) {
	_, ts := newServer(t)
	resp, err := http.Get(ts.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"Key":"generation"`)
}

func TestListenAndServeStops(t *testing.T) {
	s, _ := newServer(t)
	s.cfg.Addr = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
