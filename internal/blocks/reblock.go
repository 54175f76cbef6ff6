package blocks

import "ca-sandbox/internal/core"

// Reblock copies every cell of src into a new store whose blocks are dim on a
// side. Each cell keeps its global position; blocks of the new store that
// receive no cells from src are not created. Cells of a created block not
// covered by src are filled by init.
func Reblock(src *Store, dim int, init InitFunc) *Store {
	dst := NewWithBuckets(dim, src.Buckets())
	for b := range src.All() {
		origin := core.Position{Block: b.Position}
		var cell core.Vec2
		for cell.Y = 0; cell.Y < src.dim; cell.Y++ {
			for cell.X = 0; cell.X < src.dim; cell.X++ {
				g := core.Position{Block: origin.Block, Cell: cell}.Global(src.dim)
				p := core.GlobalToPosition(g, dst.dim)
				nb := dst.GetOrCreate(p.Block, init)
				i := nb.MustIndex(p.Cell)
				nb.Cells[i] = b.Cells[b.MustIndex(cell)]
				nb.Previous[i] = b.Previous[b.MustIndex(cell)]
			}
		}
	}
	return dst
}
