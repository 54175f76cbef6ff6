// Package blocks stores an unbounded grid of cells as a sparse set of square
// tiles, addressed through a fixed-size table of hash buckets.
//
// Blocks live in an arena and are chained per bucket by arena index. Every
// block reachable from bucket h has hash(position) == h.
package blocks

import (
	"iter"

	"ca-sandbox/internal/core"
)

const (
	// DefaultDim is the default side length of a block.
	DefaultDim = 16
	// DefaultBuckets is the number of hash buckets a store starts with.
	DefaultBuckets = 512

	noBlock int32 = -1
)

// Store is a hash map from block position to Block.
type Store struct {
	dim     int32
	buckets []int32
	arena   []*Block
	free    []int32
	count   int
}

// New returns an empty store of dim x dim blocks.
func New(dim int) *Store {
	return NewWithBuckets(dim, DefaultBuckets)
}

// NewWithBuckets returns an empty store using the given bucket count.
func NewWithBuckets(dim, buckets int) *Store {
	if dim <= 0 {
		dim = DefaultDim
	}
	if buckets <= 0 {
		buckets = DefaultBuckets
	}
	s := &Store{dim: int32(dim), buckets: make([]int32, buckets)}
	for i := range s.buckets {
		s.buckets[i] = noBlock
	}
	return s
}

// Dim returns the side length of every block in the store.
func (s *Store) Dim() int32 { return s.dim }

// Len returns the number of blocks.
func (s *Store) Len() int { return s.count }

// Buckets returns the number of hash buckets.
func (s *Store) Buckets() int { return len(s.buckets) }

// Hash returns the bucket for pos: (x*7 + y*13) mod buckets, computed in
// unsigned 32-bit arithmetic so negative positions hash consistently.
func (s *Store) Hash(pos core.Vec2) int {
	h := uint32(pos.X)*7 + uint32(pos.Y)*13
	return int(h % uint32(len(s.buckets)))
}

// find walks the chain for pos. It returns the arena index of the block (or
// noBlock) and the index of its predecessor in the chain (or noBlock when the
// block is, or would be, the bucket head).
func (s *Store) find(pos core.Vec2) (idx, prev int32) {
	prev = noBlock
	idx = s.buckets[s.Hash(pos)]
	for idx != noBlock {
		if s.arena[idx].Position == pos {
			return idx, prev
		}
		prev = idx
		idx = s.arena[idx].next
	}
	return noBlock, prev
}

// Get returns the block at pos, or nil.
func (s *Store) Get(pos core.Vec2) *Block {
	idx, _ := s.find(pos)
	if idx == noBlock {
		return nil
	}
	return s.arena[idx]
}

func (s *Store) insert(pos core.Vec2, prev int32) *Block {
	b := newBlock(pos, s.dim)
	var idx int32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
		s.arena[idx] = b
	} else {
		idx = int32(len(s.arena))
		s.arena = append(s.arena, b)
	}
	if prev == noBlock {
		s.buckets[s.Hash(pos)] = idx
	} else {
		s.arena[prev].next = idx
	}
	s.count++
	return b
}

// CreateUninitialised adds a zero-filled block at pos. It returns the existing
// block and false if one is already present.
func (s *Store) CreateUninitialised(pos core.Vec2) (*Block, bool) {
	idx, prev := s.find(pos)
	if idx != noBlock {
		return s.arena[idx], false
	}
	return s.insert(pos, prev), true
}

// Create adds a block at pos whose cells are set by init, once per cell, and
// copied into the previous-generation buffer. It returns the existing block
// and false if one is already present; init is not called in that case.
func (s *Store) Create(pos core.Vec2, init InitFunc) (*Block, bool) {
	b, created := s.CreateUninitialised(pos)
	if !created {
		return b, false
	}
	if init != nil {
		var cell core.Vec2
		for cell.Y = 0; cell.Y < s.dim; cell.Y++ {
			for cell.X = 0; cell.X < s.dim; cell.X++ {
				i := cell.Y*s.dim + cell.X
				st := init(pos, cell)
				b.Cells[i] = st
				b.Previous[i] = st
			}
		}
	}
	return b, true
}

// GetOrCreate returns the block at pos, creating and initialising it first if
// it does not exist.
func (s *Store) GetOrCreate(pos core.Vec2, init InitFunc) *Block {
	b, _ := s.Create(pos, init)
	return b
}

// Delete removes the block at pos, splicing it out of its chain. It reports
// whether a block was removed.
func (s *Store) Delete(pos core.Vec2) bool {
	idx, prev := s.find(pos)
	if idx == noBlock {
		return false
	}
	next := s.arena[idx].next
	if prev == noBlock {
		s.buckets[s.Hash(pos)] = next
	} else {
		s.arena[prev].next = next
	}
	s.arena[idx] = nil
	s.free = append(s.free, idx)
	s.count--
	return true
}

// Clear removes every block.
func (s *Store) Clear() {
	for i := range s.buckets {
		s.buckets[i] = noBlock
	}
	s.arena = s.arena[:0]
	s.free = s.free[:0]
	s.count = 0
}

// All yields every block, bucket by bucket and chain by chain. The store must
// not be modified during iteration.
func (s *Store) All() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		for _, head := range s.buckets {
			for idx := head; idx != noBlock; idx = s.arena[idx].next {
				if !yield(s.arena[idx]) {
					return
				}
			}
		}
	}
}

// Blocks returns the blocks in iteration order. Unlike All, the result stays
// valid while the store is modified.
func (s *Store) Blocks() []*Block {
	out := make([]*Block, 0, s.count)
	for b := range s.All() {
		out = append(out, b)
	}
	return out
}

// Chain returns the positions chained from bucket h, head first.
func (s *Store) Chain(h int) []core.Vec2 {
	var out []core.Vec2
	for idx := s.buckets[h]; idx != noBlock; idx = s.arena[idx].next {
		out = append(out, s.arena[idx].Position)
	}
	return out
}

// Bounds returns the lowest and highest block coordinates present. ok is
// false for an empty store.
func (s *Store) Bounds() (lo, hi core.Vec2, ok bool) {
	for b := range s.All() {
		p := b.Position
		if !ok {
			lo, hi, ok = p, p, true
			continue
		}
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	return lo, hi, ok
}

// Cell returns the current state at pos. ok is false when the block is absent.
func (s *Store) Cell(pos core.Position) (core.CellState, bool) {
	pos = pos.Normalised(s.dim)
	b := s.Get(pos.Block)
	if b == nil {
		return 0, false
	}
	return b.State(pos.Cell), true
}

// SetCell writes the current state at pos, creating the block with init if
// needed.
func (s *Store) SetCell(pos core.Position, state core.CellState, init InitFunc) {
	pos = pos.Normalised(s.dim)
	s.GetOrCreate(pos.Block, init).SetState(pos.Cell, state)
}
