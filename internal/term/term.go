// Package term draws a sandbox in a terminal with tcell. Each character cell
// shows two sandbox cells stacked vertically as an upper half block.
package term

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/render"
	"ca-sandbox/internal/sandbox"
)

const upperHalf = '▀'

// Viewer runs a sandbox on a tcell screen.
type Viewer struct {
	screen tcell.Screen
	sb     *sandbox.Sandbox
	clock  *core.FixedStep
	tps    int
	seed   int64

	paused   bool
	tickOnce bool
	cursor   core.Vec2
}

// NewViewer wraps an initialised screen.
func NewViewer(screen tcell.Screen, sb *sandbox.Sandbox, tps int, seed int64) *Viewer {
	return &Viewer{screen: screen, sb: sb, clock: core.NewFixedStep(tps), tps: tps, seed: seed}
}

// Paused reports whether stepping is paused.
func (v *Viewer) Paused() bool { return v.paused }

// Cursor returns the sandbox cell under the cursor.
func (v *Viewer) Cursor() core.Vec2 { return v.cursor }

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Draw renders the viewport and a status line.
func (v *Viewer) Draw() {
	v.screen.Clear()
	cols, rows := v.screen.Size()
	size := v.sb.Size()
	cells := v.sb.Cells()
	for ty := 0; ty < rows-1 && 2*ty < size.H; ty++ {
		for x := 0; x < cols && x < size.W; x++ {
			y := 2 * ty
			top := render.StateColour(cells[y*size.W+x])
			bottom := top
			if y+1 < size.H {
				bottom = render.StateColour(cells[(y+1)*size.W+x])
			}
			if int(v.cursor.X) == x {
				switch int(v.cursor.Y) {
				case y:
					top = render.Lighten(render.Lighten(top))
				case y + 1:
					bottom = render.Lighten(render.Lighten(bottom))
				}
			}
			style := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			v.screen.SetContent(x, ty, upperHalf, nil, style)
		}
	}
	v.drawStatus(cols, rows)
	v.screen.Show()
}

// Status returns the text of the status line.
func (v *Viewer) Status() string {
	state := "running"
	if v.paused {
		state = "paused"
	}
	if b := v.sb.Builder(); b.Running() {
		state = fmt.Sprintf("building %.0f%%", 100*b.Fraction())
	}
	names := v.sb.StateNames()
	under := v.sb.At(v.cursor.X, v.cursor.Y)
	name := "?"
	if int(under) < len(names) {
		name = names[under]
	}
	return fmt.Sprintf(" %s  gen %d  blocks %d  %d tps  %s  (%d,%d) %s ",
		v.sb.Name(), v.sb.Generation(), v.sb.Universe().Store.Len(), v.tps, state, v.cursor.X, v.cursor.Y, name)
}

func (v *Viewer) drawStatus(cols, rows int) {
	if rows <= 0 {
		return
	}
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range v.Status() {
		if x >= cols {
			break
		}
		v.screen.SetContent(x, rows-1, r, nil, style)
		x++
	}
	for ; x < cols; x++ {
		v.screen.SetContent(x, rows-1, ' ', nil, style)
	}
}

func (v *Viewer) moveCursor(dx, dy int32) {
	size := v.sb.Size()
	v.cursor.X = min(max(v.cursor.X+dx, 0), int32(size.W-1))
	v.cursor.Y = min(max(v.cursor.Y+dy, 0), int32(size.H-1))
}

func (v *Viewer) setTPS(tps int) {
	v.tps = min(max(tps, 1), 960)
	v.clock.SetTPS(v.tps)
}

// HandleEvent applies a key or resize event. It returns false when the
// viewer should quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			v.moveCursor(0, -1)
		case tcell.KeyDown:
			v.moveCursor(0, 1)
		case tcell.KeyLeft:
			v.moveCursor(-1, 0)
		case tcell.KeyRight:
			v.moveCursor(1, 0)
		case tcell.KeyEnter:
			v.sb.Cycle(v.cursor.X, v.cursor.Y)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case 'n':
				v.tickOnce = true
			case 'r':
				v.sb.Reset(v.seed)
			case 's':
				v.seed = time.Now().UnixNano()
				v.sb.Reset(v.seed)
			case 'c':
				v.sb.Clear()
			case 'p':
				v.sb.Prune()
			case '+', '=':
				v.setTPS(v.tps * 2)
			case '-':
				v.setTPS(v.tps / 2)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// Tick runs the generations due since the previous tick.
func (v *Viewer) Tick() {
	steps := v.clock.Steps(8)
	if v.paused {
		steps = 0
	}
	if v.tickOnce {
		steps, v.tickOnce = 1, false
	}
	for i := 0; i < steps; i++ {
		v.sb.Step()
	}
}

// Run polls events and redraws at about 30 frames per second until the user
// quits or ctx is done.
func (v *Viewer) Run(ctx context.Context) {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-eventChan:
			if !ok || !v.HandleEvent(ev) {
				return
			}
			v.Draw()
		case <-ticker.C:
			v.Tick()
			v.Draw()
		}
	}
}
