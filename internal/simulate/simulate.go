// Package simulate advances a block store by one generation using a compiled
// rule tree.
//
// A step has three phases. Every block first copies its current states into
// its previous states. Blocks are then created wherever a non-null cell lies
// in the neighbourhood of a cell whose block is missing, repeating until a
// pass creates nothing. Finally every block within the border is evaluated,
// reading neighbours from the previous generation only.
package simulate

import (
	"errors"
	"fmt"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
	"ca-sandbox/internal/rule"
)

// DefaultMaxBlocks caps the store size DefaultOptions allows a step to grow to.
const DefaultMaxBlocks = 1 << 16

var (
	// ErrTreeNotBuilt is returned when no rule tree is available.
	ErrTreeNotBuilt = errors.New("simulate: rule tree not built")
	// ErrUnboundedExpansion is returned when block creation cannot terminate:
	// an infinite border with no null states, or a store growing past
	// Options.MaxBlocks.
	ErrUnboundedExpansion = errors.New("simulate: block expansion does not terminate")
)

// Options configures a step.
type Options struct {
	Border border.Border

	// MarkUnresolved writes core.DebugState into cells whose neighbourhood
	// reaches past a fixed border. Otherwise they keep their state.
	MarkUnresolved bool

	// MaxBlocks stops expansion once the store holds this many blocks.
	// Zero means no limit.
	MaxBlocks int
}

// DefaultOptions returns an infinite border whose corners, used once the
// border is switched to fixed or torus, span blocks (0,0) to (10,10).
func DefaultOptions() Options {
	return Options{
		Border: border.Border{
			Type: border.Infinite,
			Min:  core.Position{},
			Max:  core.Position{Block: core.Vec2{X: 10, Y: 10}},
		},
		MaxBlocks: DefaultMaxBlocks,
	}
}

// Stats reports what a step did.
type Stats struct {
	Created    int
	Evaluated  int
	Unresolved int
}

type stepper struct {
	opts  Options
	bord  border.Border
	tree  *rule.Tree
	store *blocks.Store
	init  blocks.InitFunc
	dim   int32
	reach core.Vec2

	deltas  []core.Vec2
	nStates int64
	null    core.CellState
	hasNull bool

	stats Stats
}

// Step advances store by one generation. generation must differ from the
// value passed to the previous step; blocks already stamped with it are not
// evaluated again.
func Step(opts Options, tree *rule.Tree, store *blocks.Store, init blocks.InitFunc, generation uint64) (Stats, error) {
	if tree == nil {
		return Stats{}, ErrTreeNotBuilt
	}
	dim := store.Dim()
	if err := opts.Border.Validate(dim); err != nil {
		return Stats{}, fmt.Errorf("simulate: %w", err)
	}
	nulls := tree.NullStates()
	if opts.Border.Type == border.Infinite && len(nulls) == 0 && store.Len() > 0 {
		return Stats{}, fmt.Errorf("%w: infinite border with no null states", ErrUnboundedExpansion)
	}

	s := &stepper{
		opts:    opts,
		bord:    opts.Border.Normalised(dim),
		tree:    tree,
		store:   store,
		init:    init,
		dim:     dim,
		deltas:  tree.Deltas(),
		nStates: int64(tree.NStates()),
	}
	for _, d := range s.deltas {
		s.reach.X = max(s.reach.X, abs(d.X))
		s.reach.Y = max(s.reach.Y, abs(d.Y))
	}
	if len(nulls) > 0 {
		s.null, s.hasNull = nulls[0], true
	}

	for b := range store.All() {
		b.Snapshot()
	}
	if err := s.expand(); err != nil {
		return s.stats, err
	}
	for b := range store.All() {
		if b.LastSimulated == generation {
			continue
		}
		b.LastSimulated = generation
		s.evaluate(b)
	}
	return s.stats, nil
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func (s *stepper) expand() error {
	for {
		created := 0
		for _, b := range s.store.Blocks() {
			n, err := s.expandBlock(b)
			created += n
			if err != nil {
				return err
			}
		}
		if created == 0 {
			return nil
		}
	}
}

// nearEdge reports whether a neighbourhood centred on the cell could reach
// outside its block or, on a torus, across the border.
func (s *stepper) nearEdge(pos core.Position) bool {
	c := pos.Cell
	if c.X < s.reach.X || c.X >= s.dim-s.reach.X || c.Y < s.reach.Y || c.Y >= s.dim-s.reach.Y {
		return true
	}
	if s.bord.Type != border.Torus {
		return false
	}
	lo := pos.Offset(core.Vec2{X: -s.reach.X, Y: -s.reach.Y}, s.dim)
	hi := pos.Offset(s.reach, s.dim)
	return !s.bord.Contains(lo) || !s.bord.Contains(hi)
}

// expandBlock creates the blocks holding cells that have a non-null cell of b
// in their neighbourhood.
func (s *stepper) expandBlock(b *blocks.Block) (int, error) {
	if !s.bord.ContainsBlock(b.Position, s.dim) {
		return 0, nil
	}
	created := 0
	pos := core.Position{Block: b.Position}
	for pos.Cell.Y = 0; pos.Cell.Y < s.dim; pos.Cell.Y++ {
		for pos.Cell.X = 0; pos.Cell.X < s.dim; pos.Cell.X++ {
			st := b.Cells[b.MustIndex(pos.Cell)]
			if s.tree.IsNull(st) || !s.bord.Contains(pos) || !s.nearEdge(pos) {
				continue
			}
			for _, d := range s.deltas {
				target := pos.Offset(core.Vec2{X: -d.X, Y: -d.Y}, s.dim)
				switch s.bord.Type {
				case border.Torus:
					target = s.bord.Wrap(target, s.dim)
				case border.Fixed:
					if !s.bord.Contains(target) {
						continue
					}
				}
				if target.Block == b.Position {
					continue
				}
				if _, ok := s.store.Create(target.Block, s.init); !ok {
					continue
				}
				created++
				s.stats.Created++
				if s.opts.MaxBlocks > 0 && s.store.Len() > s.opts.MaxBlocks {
					return created, fmt.Errorf("%w: more than %d blocks", ErrUnboundedExpansion, s.opts.MaxBlocks)
				}
			}
		}
	}
	return created, nil
}

func (s *stepper) evaluate(b *blocks.Block) {
	if !s.bord.ContainsBlock(b.Position, s.dim) {
		return
	}
	pos := core.Position{Block: b.Position}
	for pos.Cell.Y = 0; pos.Cell.Y < s.dim; pos.Cell.Y++ {
		for pos.Cell.X = 0; pos.Cell.X < s.dim; pos.Cell.X++ {
			if !s.bord.Contains(pos) {
				continue
			}
			s.stats.Evaluated++
			v, ok := s.tree.Walk(func(depth int) (core.CellState, bool) {
				return s.neighbour(b, pos, s.deltas[depth])
			})
			if ok {
				b.Cells[b.MustIndex(pos.Cell)] = v
				continue
			}
			s.stats.Unresolved++
			if s.opts.MarkUnresolved {
				b.Cells[b.MustIndex(pos.Cell)] = core.DebugState
			}
		}
	}
}

// neighbour returns the previous-generation state at pos+delta. Absent blocks
// and states the tree has no branch for read as the first null state.
func (s *stepper) neighbour(b *blocks.Block, pos core.Position, delta core.Vec2) (core.CellState, bool) {
	var st core.CellState
	c := pos.Cell.Add(delta)
	if c.X >= 0 && c.Y >= 0 && c.X < s.dim && c.Y < s.dim &&
		(s.bord.Type == border.Infinite || s.bord.Contains(core.Position{Block: b.Position, Cell: c})) {
		st = b.Previous[c.Y*s.dim+c.X]
	} else {
		var res border.Lookup
		st, res = s.bord.NeighbourState(s.store, delta, pos.Block, pos.Cell)
		switch res {
		case border.Outside:
			return 0, false
		case border.Absent:
			return s.null, s.hasNull
		}
	}
	if int64(st) >= s.nStates {
		return s.null, s.hasNull
	}
	return st, true
}
