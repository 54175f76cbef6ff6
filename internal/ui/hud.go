//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type stateNamer interface {
	StateNames() []string
}

// HUD renders the parameter panel and state palette to the right of the
// simulation view. Clicking a swatch selects the brush state.
type HUD struct {
	sim        core.Sim
	width      int
	panel      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot
	names      []string

	brush        core.CellState
	swatches     []image.Rectangle
	panelOffsetX int
	title        string

	pixel *ebiten.Image
}

// NewHUD constructs a HUD for the provided simulation and panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sim: sim, width: width, brush: 1}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.title = buildTitle(sim)
	return h
}

// Brush returns the state painted by mouse clicks.
func (h *HUD) Brush() core.CellState {
	if h == nil {
		return 1
	}
	return h.brush
}

// Update refreshes the cached parameter snapshot and handles swatch clicks.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	if provider, ok := h.sim.(core.ParameterProvider); ok {
		h.snapshot = provider.Parameters()
	} else {
		h.snapshot = core.ParameterSnapshot{}
	}
	if namer, ok := h.sim.(stateNamer); ok {
		h.names = namer.StateNames()
	}
	if int(h.brush) >= len(h.names) && len(h.names) > 0 {
		h.brush = core.CellState(len(h.names) - 1)
	}
	h.handleInput()
}

// Draw paints the HUD panel anchored to the right edge of the simulation view.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := h.sim.Size().H * scale
	if height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dx() != h.width || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	y := h.drawParams()
	h.drawSwatches(y + sectionGap)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func buildTitle(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Sandbox"
	}
	return strings.ToUpper(sim.Name()[:1]) + sim.Name()[1:]
}

func (h *HUD) handleInput() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i, r := range h.swatches {
		if pointInRect(px, my, r) {
			h.brush = core.CellState(i)
			return
		}
	}
}

func (h *HUD) drawParams() int {
	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	text.Draw(h.panel, h.title, face, panelPadding, y, headerColour)
	for _, g := range h.snapshot.Groups {
		y += sectionGap
		text.Draw(h.panel, g.Name, face, panelPadding, y, groupColour)
		for _, p := range g.Params {
			y += lineHeight
			text.Draw(h.panel, p.Label, face, panelPadding, y, labelColour)
			value := p.Value
			if p.Description != "" {
				value = fmt.Sprintf("%s %s", value, p.Description)
			}
			bounds := text.BoundString(face, value)
			text.Draw(h.panel, value, face, h.width-panelPadding-bounds.Dx(), y, labelColour)
		}
	}
	return y
}

func (h *HUD) drawSwatches(top int) {
	face := basicfont.Face7x13
	h.swatches = h.swatches[:0]
	if len(h.names) == 0 {
		return
	}
	text.Draw(h.panel, "States", face, panelPadding, top, groupColour)
	top += lineHeight - swatchSize
	for i, name := range h.names {
		r := image.Rect(panelPadding, top+i*lineHeight, panelPadding+swatchSize, top+i*lineHeight+swatchSize)
		h.swatches = append(h.swatches, r)
		col := render.StateColour(core.CellState(i))
		if core.CellState(i) == h.brush {
			h.fillRect(r.Inset(-2), color.RGBA{R: 230, G: 230, B: 240, A: 255})
		}
		h.fillRect(r, col)
		text.Draw(h.panel, name, face, r.Max.X+buttonGap, r.Max.Y-3, labelColour)
	}
}

func (h *HUD) fillRect(rect image.Rectangle, col color.RGBA) {
	if h.pixel == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(col)
	h.panel.DrawImage(h.pixel, op)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

var (
	headerColour = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	groupColour  = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	labelColour  = color.RGBA{R: 220, G: 220, B: 230, A: 255}
)

const (
	panelPadding   = 12
	lineHeight     = 18
	sectionGap     = 28
	swatchSize     = 14
	buttonGap      = 6
	headerBaseline = 18
)
