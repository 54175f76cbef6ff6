package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/sandbox"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Config controls the tick loop.
type Config struct {
	Addr string
	// TPS is the number of generations per second.
	TPS int
	// FPS is the number of frames broadcast per second.
	FPS int
	// Seed is used by the random command; it advances on every use.
	Seed int64
}

// DefaultConfig serves on :8080 at 30 generations and frames per second.
func DefaultConfig() Config {
	return Config{Addr: ":8080", TPS: 30, FPS: 30, Seed: 42}
}

// Server runs a sandbox and streams it to websocket clients.
type Server struct {
	sb     *sandbox.Sandbox
	cfg    Config
	hub    *Hub
	logger *log.Logger
	clock  *core.FixedStep

	paused  atomic.Bool
	pending atomic.Int32
	seed    atomic.Int64
}

// NewServer wraps sb. A nil logger uses log.Default().
func NewServer(sb *sandbox.Sandbox, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	s := &Server{
		sb:     sb,
		cfg:    cfg,
		hub:    NewHub(logger),
		logger: logger,
		clock:  core.NewFixedStep(cfg.TPS),
	}
	s.seed.Store(cfg.Seed)
	return s
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub { return s.hub }

// Paused reports whether the tick loop is paused.
func (s *Server) Paused() bool { return s.paused.Load() }

// Handler routes /ws to the websocket endpoint and /state to a JSON dump of
// the sandbox parameters.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.wsHandler)
	mux.HandleFunc("/state", s.stateHandler)
	return mux
}

func (s *Server) frame() []byte {
	return EncodeFrame(s.sb.Generation(), s.sb.Size(), s.sb.Cells())
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Println("Error upgrading websocket:", err)
		return
	}
	s.hub.Add(ws, s.frame())
	defer s.hub.Remove(ws)

	for {
		_, p, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Println("Error reading message from client:", err)
			}
			return
		}
		cmd, err := ParseCommand(p)
		if err != nil {
			s.logger.Println(err)
			continue
		}
		s.Apply(cmd)
	}
}

// Apply executes a client command. Commands that change the universe
// broadcast a fresh frame.
func (s *Server) Apply(cmd Command) {
	switch cmd.Op {
	case OpPause:
		s.paused.Store(true)
		return
	case OpResume:
		s.paused.Store(false)
		return
	case OpStep:
		s.pending.Add(1)
		return
	case OpRandom:
		s.sb.Reset(s.seed.Add(1))
	case OpClear:
		s.sb.Clear()
	case OpPrune:
		s.logger.Printf("pruned %d null blocks", s.sb.Prune())
	case OpPaint:
		if cmd.State == nil {
			s.sb.Cycle(cmd.X, cmd.Y)
		} else {
			s.sb.Paint(cmd.X, cmd.Y, core.CellState(*cmd.State))
		}
	}
	s.hub.Broadcast(s.frame())
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.sb.Parameters()); err != nil {
		s.logger.Println("Error encoding state:", err)
	}
}

// Tick advances the generations due since the previous tick and broadcasts
// a frame. It returns the number of generations run.
func (s *Server) Tick() int {
	steps := int(s.pending.Swap(0))
	if !s.paused.Load() {
		steps += s.clock.Steps(64)
	}
	for i := 0; i < steps; i++ {
		s.sb.Step()
	}
	if s.hub.Len() > 0 {
		s.hub.Broadcast(s.frame())
	}
	return steps
}

// Run ticks at cfg.FPS until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	t := time.NewTicker(time.Second / time.Duration(s.cfg.FPS))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Tick()
		}
	}
}

// ListenAndServe serves cfg.Addr and runs the tick loop until ctx is done,
// then shuts the listener down and disconnects every client.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Printf("Server is running on %s", s.cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Println("Shutting down server...")
		s.hub.CloseAll()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdown)
	})
	return g.Wait()
}
