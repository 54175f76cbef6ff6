//go:build ebiten

package ui

import (
	"fmt"
	"image/color"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/rule"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type builderProvider interface {
	Builder() *rule.Builder
}

type blockDimProvider interface {
	BlockDim() int
}

// Overlay draws the rule build progress and, toggled with G, the block grid.
type Overlay struct {
	sim       core.Sim
	scale     int
	showGrid  bool
	pixel     *ebiten.Image
	lastError string
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles overlay toggles.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		o.showGrid = !o.showGrid
	}
	if p, ok := o.sim.(builderProvider); ok {
		if err := p.Builder().Err(); err != nil {
			o.lastError = err.Error()
		} else {
			o.lastError = ""
		}
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	if o.showGrid {
		if p, ok := o.sim.(blockDimProvider); ok {
			o.drawGrid(screen, size, scale, p.BlockDim())
		}
	}
	if p, ok := o.sim.(builderProvider); ok {
		b := p.Builder()
		if b.Running() {
			o.drawProgress(screen, size.W*scale, b.Fraction())
		}
	}
	if o.lastError != "" {
		text.Draw(screen, o.lastError, basicfont.Face7x13, 8, size.H*scale-8, color.RGBA{R: 255, G: 90, B: 90, A: 255})
	}
}

func (o *Overlay) drawGrid(screen *ebiten.Image, size core.Size, scale, dim int) {
	if dim <= 0 {
		return
	}
	col := color.RGBA{R: 255, G: 255, B: 255, A: 40}
	step := dim * scale
	w, h := size.W*scale, size.H*scale
	for x := step; x < w; x += step {
		o.fillRect(screen, float64(x), 0, 1, float64(h), col)
	}
	for y := step; y < h; y += step {
		o.fillRect(screen, 0, float64(y), float64(w), 1, col)
	}
}

func (o *Overlay) drawProgress(screen *ebiten.Image, width int, fraction float64) {
	const (
		margin = 8
		height = 10
	)
	bar := float64(width - 2*margin)
	o.fillRect(screen, margin, margin, bar, height, color.RGBA{R: 20, G: 20, B: 24, A: 200})
	o.fillRect(screen, margin, margin, bar*clamp01(fraction), height, color.RGBA{R: 90, G: 180, B: 255, A: 230})
	label := fmt.Sprintf("building rule tree %.0f%%", 100*clamp01(fraction))
	text.Draw(screen, label, basicfont.Face7x13, margin, margin+height+14, color.White)
}

func (o *Overlay) fillRect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
