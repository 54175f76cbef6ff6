package core

import "math"

// Vec2 is an integer 2D vector used for both block and cell coordinates.
type Vec2 struct {
	X, Y int32
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v*k.
func (v Vec2) Scale(k int32) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

// Position locates a cell as a (block, cell-within-block) pair.
type Position struct {
	Block Vec2
	Cell  Vec2
}

// Normalise1 folds any cell offset into the block range [0, dim) using floor
// division, adjusting block accordingly.
func Normalise1(block, cell, dim int32) (int32, int32) {
	q := cell / dim
	if cell%dim != 0 && cell < 0 {
		q--
	}
	return block + q, cell - q*dim
}

// Normalise applies Normalise1 to both axes.
func Normalise(block, cell Vec2, dim int32) (Vec2, Vec2) {
	bx, cx := Normalise1(block.X, cell.X, dim)
	by, cy := Normalise1(block.Y, cell.Y, dim)
	return Vec2{X: bx, Y: by}, Vec2{X: cx, Y: cy}
}

// Normalised returns p with its cell folded into [0, dim).
func (p Position) Normalised(dim int32) Position {
	b, c := Normalise(p.Block, p.Cell, dim)
	return Position{Block: b, Cell: c}
}

// Offset returns p moved by delta cells and normalised.
func (p Position) Offset(delta Vec2, dim int32) Position {
	return Position{Block: p.Block, Cell: p.Cell.Add(delta)}.Normalised(dim)
}

// GlobalToPosition converts a global cell coordinate to its block and cell.
func GlobalToPosition(global Vec2, dim int32) Position {
	return Position{Cell: global}.Normalised(dim)
}

// Global converts p back to a global cell coordinate. The result is only
// meaningful for positions that fit in int32 after the multiplication.
func (p Position) Global(dim int32) Vec2 {
	return p.Block.Scale(dim).Add(p.Cell)
}

// ComparePosition1 orders two (block, cell) positions on a single axis, block
// major and cell minor. It returns -1, 0 or +1.
func ComparePosition1(blockA, cellA, blockB, cellB int32) int {
	switch {
	case blockA < blockB:
		return -1
	case blockA > blockB:
		return 1
	case cellA < cellB:
		return -1
	case cellA > cellB:
		return 1
	}
	return 0
}

// Compare orders p against o on each axis independently.
func (p Position) Compare(o Position) (x, y int) {
	return ComparePosition1(p.Block.X, p.Cell.X, o.Block.X, o.Cell.X),
		ComparePosition1(p.Block.Y, p.Cell.Y, o.Block.Y, o.Cell.Y)
}

// Less reports whether p is strictly below o on both axes.
func (p Position) Less(o Position) bool {
	x, y := p.Compare(o)
	return x < 0 && y < 0
}

// GreaterOrEqual reports whether p is at or above o on both axes.
func (p Position) GreaterOrEqual(o Position) bool {
	x, y := p.Compare(o)
	return x >= 0 && y >= 0
}

// Ordered returns the two corners rearranged so that start is the per-axis
// minimum and end the per-axis maximum.
func Ordered(start, end Position) (Position, Position) {
	if ComparePosition1(start.Block.X, start.Cell.X, end.Block.X, end.Cell.X) > 0 {
		start.Block.X, end.Block.X = end.Block.X, start.Block.X
		start.Cell.X, end.Cell.X = end.Cell.X, start.Cell.X
	}
	if ComparePosition1(start.Block.Y, start.Cell.Y, end.Block.Y, end.Cell.Y) > 0 {
		start.Block.Y, end.Block.Y = end.Block.Y, start.Block.Y
		start.Cell.Y, end.Cell.Y = end.Cell.Y, start.Cell.Y
	}
	return start, end
}

// RoundToBlock floors a continuous block coordinate: 1.5 -> 1, -0.5 -> -1.
func RoundToBlock(v float32) int32 {
	return int32(math.Floor(float64(v)))
}
