package core

// StateGrid stores a rectangular window of cell states in row-major order.
type StateGrid struct {
	W, H int
	data []CellState
}

// NewStateGrid allocates a grid with the given dimensions.
func NewStateGrid(w, h int) *StateGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &StateGrid{W: w, H: h, data: make([]CellState, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *StateGrid) Cells() []CellState { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *StateGrid) Index(x, y int) int { return y*g.W + x }

// At returns the state at (x, y).
func (g *StateGrid) At(x, y int) CellState { return g.data[g.Index(x, y)] }

// Set writes the state at (x, y).
func (g *StateGrid) Set(x, y int, s CellState) { g.data[g.Index(x, y)] = s }

// Fill sets every cell to s.
func (g *StateGrid) Fill(s CellState) {
	for i := range g.data {
		g.data[i] = s
	}
}
