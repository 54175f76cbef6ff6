//go:build ebiten

package app

import (
	"fmt"
	"log"
	"time"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/render"
	"ca-sandbox/internal/sandbox"
	"ca-sandbox/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// maxCatchUp bounds the generations run in one frame after a stall.
const maxCatchUp = 8

// Game adapts a sandbox to the ebiten.Game interface.
type Game struct {
	sb      *sandbox.Sandbox
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	clock   *core.FixedStep

	scale    int
	panel    int
	paused   bool
	tickOnce bool
	seed     int64
	tps      int
}

// New constructs a Game for the provided sandbox.
func New(sb *sandbox.Sandbox, cfg *Config) *Game {
	size := sb.Size()
	return &Game{
		sb:      sb,
		painter: render.NewGridPainter(size.W, size.H),
		overlay: ui.NewOverlay(sb, cfg.Scale),
		hud:     ui.NewHUD(sb, cfg.Panel),
		clock:   core.NewFixedStep(cfg.TPS),
		scale:   cfg.Scale,
		panel:   cfg.Panel,
		seed:    cfg.Seed,
		tps:     cfg.TPS,
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sb.Reset(seed)
	g.tickOnce = false
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.sb.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		log.Printf("pruned %d null blocks", g.sb.Prune())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.setTPS(g.tps * 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.setTPS(g.tps / 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		path := fmt.Sprintf("%s-%d.cauv", g.sb.Name(), g.sb.Generation())
		if err := g.sb.Save(path); err != nil {
			log.Printf("save snapshot: %v", err)
		} else {
			log.Printf("saved %s", path)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		path := fmt.Sprintf("%s-%d.png", g.sb.Name(), g.sb.Generation())
		if err := render.SavePNG(path, g.sb.Cells(), g.sb.Size(), g.scale); err != nil {
			log.Printf("screenshot: %v", err)
		}
	}
	g.handleMouse()

	g.overlay.Update()
	g.hud.Update(g.sb.Size().W * g.scale)

	steps := g.clock.Steps(maxCatchUp)
	if g.paused {
		steps = 0
	}
	if g.tickOnce {
		steps, g.tickOnce = 1, false
	}
	for i := 0; i < steps; i++ {
		g.sb.Step()
	}
	return nil
}

func (g *Game) setTPS(tps int) {
	g.tps = min(max(tps, 1), 960)
	g.clock.SetTPS(g.tps)
}

// handleMouse paints the HUD brush with the left button and cycles a cell's
// state with the right button.
func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	size := g.sb.Size()
	x, y := mx/g.scale, my/g.scale
	if mx < 0 || my < 0 || x >= size.W || y >= size.H {
		return
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.sb.Paint(int32(x), int32(y), g.hud.Brush())
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.sb.Cycle(int32(x), int32(y))
	}
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sb.Cells(), g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.sb.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sb.Size()
	return s.W*g.scale + g.panel, s.H * g.scale
}
