package rule

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"
	"slices"
	"sync/atomic"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
)

// cancelEvery is the number of leaves produced between context checks.
const cancelEvery = 1 << 10

// Node is one entry of a tree's node table. Internal nodes have one child
// per named state; Children[s] is followed when the next input is s.
type Node struct {
	Leaf     bool
	Value    core.CellState
	Children []uint32
}

// Progress counts leaves produced by a build. It is safe to read while a
// build writes it.
type Progress struct {
	done  atomic.Uint64
	total atomic.Uint64
}

// Load returns the leaves produced so far and the total to produce.
func (p *Progress) Load() (done, total uint64) {
	return p.done.Load(), p.total.Load()
}

// Fraction returns done/total in [0, 1].
func (p *Progress) Fraction() float64 {
	done, total := p.Load()
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

func (p *Progress) reset(total uint64) {
	p.done.Store(0)
	p.total.Store(total)
}

// Tree is a compiled rule. Identical leaves and identical internal nodes
// share one table slot. A Tree is immutable once compiled and may be read
// from any number of goroutines.
type Tree struct {
	nodes []Node
	root  uint32

	shape   neighbourhood.Shape
	radius  uint32
	nInputs int
	nulls   []core.CellState
	deltas  []core.Vec2
	names   []string
}

// Pow returns base^exp, saturating at math.MaxUint64.
func Pow(base, exp uint64) uint64 {
	result := uint64(1)
	for ; exp > 0; exp-- {
		hi, lo := bits.Mul64(result, base)
		if hi != 0 {
			return math.MaxUint64
		}
		result = lo
	}
	return result
}

// LeafCount returns the number of leaves a build of cfg enumerates.
func LeafCount(cfg *Configuration) uint64 {
	return Pow(uint64(cfg.States.Len()), uint64(cfg.NInputs()))
}

type compiler struct {
	ctx      context.Context
	cfg      *Configuration
	progress *Progress
	nStates  int
	nInputs  int

	inputs  []core.CellState
	scratch [][]uint32
	key     []byte
	leaves  map[core.CellState]uint32
	interns map[string]uint32
	nodes   []Node
	done    uint64
}

// Compile enumerates every input vector of cfg and records the result of
// cfg.Evaluate in a deduplicated tree. progress may be nil. Compile checks
// ctx periodically and returns its error if it is cancelled.
func Compile(ctx context.Context, cfg *Configuration, progress *Progress) (*Tree, error) {
	if cfg == nil {
		return nil, ErrNoConfiguration
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = new(Progress)
	}
	progress.reset(LeafCount(cfg))

	c := &compiler{
		ctx:      ctx,
		cfg:      cfg,
		progress: progress,
		nStates:  cfg.States.Len(),
		nInputs:  cfg.NInputs(),
		leaves:   make(map[core.CellState]uint32),
		interns:  make(map[string]uint32),
	}
	c.inputs = make([]core.CellState, c.nInputs)
	c.scratch = make([][]uint32, c.nInputs)
	for i := range c.scratch {
		c.scratch[i] = make([]uint32, c.nStates)
	}
	c.key = make([]byte, 4*c.nStates)

	root, err := c.build(0)
	if err != nil {
		return nil, err
	}
	progress.done.Store(c.done)

	t := &Tree{
		nodes:   c.nodes,
		root:    root,
		shape:   cfg.Shape,
		radius:  cfg.Radius,
		nInputs: c.nInputs,
		nulls:   slices.Clone(cfg.NullStates),
		deltas:  neighbourhood.Deltas(cfg.Shape, cfg.Radius),
		names:   cfg.States.Names(),
	}
	if err := t.checkNullStability(); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *compiler) build(depth int) (uint32, error) {
	if depth == c.nInputs {
		v := c.cfg.Evaluate(c.inputs)
		c.done++
		if c.done%cancelEvery == 0 {
			c.progress.done.Store(c.done)
			if err := c.ctx.Err(); err != nil {
				return 0, err
			}
		}
		return c.leaf(v)
	}
	children := c.scratch[depth]
	for s := 0; s < c.nStates; s++ {
		c.inputs[depth] = core.CellState(s)
		idx, err := c.build(depth + 1)
		if err != nil {
			return 0, err
		}
		children[s] = idx
	}
	return c.internal(children)
}

func (c *compiler) add(n Node) (uint32, error) {
	if uint64(len(c.nodes)) >= math.MaxUint32 {
		return 0, ErrTreeTooLarge
	}
	c.nodes = append(c.nodes, n)
	return uint32(len(c.nodes) - 1), nil
}

func (c *compiler) leaf(v core.CellState) (uint32, error) {
	if idx, ok := c.leaves[v]; ok {
		return idx, nil
	}
	idx, err := c.add(Node{Leaf: true, Value: v})
	if err != nil {
		return 0, err
	}
	c.leaves[v] = idx
	return idx, nil
}

func (c *compiler) internal(children []uint32) (uint32, error) {
	for i, ch := range children {
		binary.LittleEndian.PutUint32(c.key[4*i:], ch)
	}
	if idx, ok := c.interns[string(c.key)]; ok {
		return idx, nil
	}
	idx, err := c.add(Node{Children: slices.Clone(children)})
	if err != nil {
		return 0, err
	}
	c.interns[string(c.key)] = idx
	return idx, nil
}

func (t *Tree) checkNullStability() error {
	inputs := make([]core.CellState, t.nInputs)
	for _, n := range t.nulls {
		for i := range inputs {
			inputs[i] = n
		}
		out := t.Evaluate(inputs)
		if !slices.Contains(t.nulls, out) {
			return fmt.Errorf("%w: %s becomes %s", ErrNullStateUnstable, t.stateName(n), t.stateName(out))
		}
	}
	return nil
}

func (t *Tree) stateName(s core.CellState) string {
	if int64(s) < int64(len(t.names)) {
		return t.names[s]
	}
	return fmt.Sprintf("#%d", s)
}

// Len returns the number of nodes in the table.
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the index of the root node.
func (t *Tree) Root() uint32 { return t.root }

// Node returns the node at idx.
func (t *Tree) Node(idx uint32) Node { return t.nodes[idx] }

// NStates returns the branching factor of internal nodes.
func (t *Tree) NStates() int { return len(t.names) }

// NInputs returns the depth of the tree.
func (t *Tree) NInputs() int { return t.nInputs }

// Shape returns the neighbourhood shape the tree was compiled for.
func (t *Tree) Shape() neighbourhood.Shape { return t.shape }

// Radius returns the neighbourhood radius the tree was compiled for.
func (t *Tree) Radius() uint32 { return t.radius }

// Deltas returns the neighbour offset read at each depth.
func (t *Tree) Deltas() []core.Vec2 { return t.deltas }

// NullStates returns the null states the tree was compiled with.
func (t *Tree) NullStates() []core.CellState { return t.nulls }

// IsNull reports whether s is a null state.
func (t *Tree) IsNull(s core.CellState) bool { return slices.Contains(t.nulls, s) }

// NaiveNodeCount is the size of the tree without sharing: one node per
// prefix of every input vector, saturating at math.MaxUint64.
func (t *Tree) NaiveNodeCount() uint64 {
	n := uint64(len(t.names))
	var total uint64
	for d := 0; d <= t.nInputs; d++ {
		p := Pow(n, uint64(d))
		if total > math.MaxUint64-p {
			return math.MaxUint64
		}
		total += p
	}
	return total
}

// Walk descends from the root, calling input for the state at each depth.
// It returns the leaf value, or ok=false if input reports failure or yields
// a state the tree has no branch for.
func (t *Tree) Walk(input func(depth int) (core.CellState, bool)) (core.CellState, bool) {
	n := &t.nodes[t.root]
	for depth := 0; !n.Leaf; depth++ {
		s, ok := input(depth)
		if !ok || int64(s) >= int64(len(n.Children)) {
			return 0, false
		}
		n = &t.nodes[n.Children[s]]
	}
	return n.Value, true
}

// Evaluate walks the tree with a complete input vector. States without a
// branch yield core.DebugState.
func (t *Tree) Evaluate(inputs []core.CellState) core.CellState {
	v, ok := t.Walk(func(depth int) (core.CellState, bool) { return inputs[depth], true })
	if !ok {
		return core.DebugState
	}
	return v
}

// Dump writes the node table, one node per line.
func (t *Tree) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "rule tree: %s radius %d, %d nodes, root %d\n", t.shape, t.radius, len(t.nodes), t.root); err != nil {
		return err
	}
	for i, n := range t.nodes {
		var err error
		if n.Leaf {
			_, err = fmt.Fprintf(w, "%6d leaf %s\n", i, t.stateName(n.Value))
		} else {
			_, err = fmt.Fprintf(w, "%6d node %v\n", i, n.Children)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
