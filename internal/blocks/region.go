package blocks

import "ca-sandbox/internal/core"

// CopyRegion copies the cells of src inside the rectangle [start, end) into a
// new store of the same block size, translated so that start lands on block
// (0,0) cell (0,0). Cells of src that fall in absent blocks are skipped and
// read back as fill in the copy.
func CopyRegion(src *Store, start, end core.Position, fill core.CellState) *Store {
	start, end = core.Ordered(start.Normalised(src.dim), end.Normalised(src.dim))
	dst := NewWithBuckets(int(src.dim), src.Buckets())
	init := func(core.Vec2, core.Vec2) core.CellState { return fill }

	lo := start.Global(src.dim)
	hi := end.Global(src.dim)
	for y := lo.Y; y < hi.Y; y++ {
		for x := lo.X; x < hi.X; x++ {
			g := core.Vec2{X: x, Y: y}
			state, ok := src.Cell(core.GlobalToPosition(g, src.dim))
			if !ok {
				continue
			}
			dst.SetCell(core.GlobalToPosition(g.Sub(lo), dst.dim), state, init)
		}
	}
	return dst
}

// Paste writes every cell of region into dst at offset, a global cell
// coordinate. Blocks missing from dst are created with init.
func Paste(dst, region *Store, offset core.Vec2, init InitFunc) {
	for b := range region.All() {
		var cell core.Vec2
		for cell.Y = 0; cell.Y < region.dim; cell.Y++ {
			for cell.X = 0; cell.X < region.dim; cell.X++ {
				g := core.Position{Block: b.Position, Cell: cell}.Global(region.dim).Add(offset)
				dst.SetCell(core.GlobalToPosition(g, dst.dim), b.State(cell), init)
			}
		}
	}
}
