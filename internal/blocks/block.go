package blocks

import (
	"errors"
	"fmt"

	"ca-sandbox/internal/core"
)

// ErrIndexOutOfRange is returned when a cell coordinate lies outside [0, dim).
var ErrIndexOutOfRange = errors.New("blocks: cell index out of range")

// Block is a dim x dim tile of cells. It keeps the current generation in
// Cells and the generation before in Previous; both are row-major.
type Block struct {
	Position core.Vec2

	// LastSimulated holds the generation id this block was last evaluated on.
	LastSimulated uint64

	Cells    []core.CellState
	Previous []core.CellState

	dim  int32
	next int32
}

func newBlock(pos core.Vec2, dim int32) *Block {
	n := int(dim) * int(dim)
	return &Block{
		Position: pos,
		Cells:    make([]core.CellState, n),
		Previous: make([]core.CellState, n),
		dim:      dim,
		next:     noBlock,
	}
}

// Dim returns the side length of the block.
func (b *Block) Dim() int32 { return b.dim }

// Index returns the row-major offset of cell within the block.
func (b *Block) Index(cell core.Vec2) (int, error) {
	if cell.X < 0 || cell.Y < 0 || cell.X >= b.dim || cell.Y >= b.dim {
		return 0, fmt.Errorf("%w: (%d,%d) with dim %d", ErrIndexOutOfRange, cell.X, cell.Y, b.dim)
	}
	return int(cell.Y*b.dim + cell.X), nil
}

// MustIndex is Index for callers that have already normalised cell. An out of
// range coordinate is a bug in the caller and panics.
func (b *Block) MustIndex(cell core.Vec2) int {
	i, err := b.Index(cell)
	if err != nil {
		panic(err)
	}
	return i
}

// State returns the current state of cell.
func (b *Block) State(cell core.Vec2) core.CellState { return b.Cells[b.MustIndex(cell)] }

// PreviousState returns the previous-generation state of cell.
func (b *Block) PreviousState(cell core.Vec2) core.CellState { return b.Previous[b.MustIndex(cell)] }

// SetState writes the current state of cell.
func (b *Block) SetState(cell core.Vec2, s core.CellState) { b.Cells[b.MustIndex(cell)] = s }

// Snapshot copies the current generation into the previous-generation buffer.
func (b *Block) Snapshot() { copy(b.Previous, b.Cells) }

// Fill sets every current and previous state to s.
func (b *Block) Fill(s core.CellState) {
	for i := range b.Cells {
		b.Cells[i] = s
		b.Previous[i] = s
	}
}
