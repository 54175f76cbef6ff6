// Package sandbox drives one rule over one universe: it owns the rule build,
// the generation counter and a rectangular viewport, and implements core.Sim
// so any front end can run it.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
	"ca-sandbox/internal/rule"
	"ca-sandbox/internal/simulate"
	"ca-sandbox/internal/universe"
)

// Seeder fills a freshly cleared sandbox.
type Seeder func(sb *Sandbox, rng *core.RNG)

// Sandbox is a rule, a universe and a viewport onto it.
type Sandbox struct {
	name   string
	cfg    Config
	logger *log.Logger

	rule    *rule.Rule
	builder *rule.Builder
	seeder  Seeder

	mu         sync.Mutex
	uni        *universe.Universe
	generation uint64
	stats      simulate.Stats
	err        error
	grid       *core.StateGrid
}

// ViewportBorder returns a border of type t covering the w x h cells from
// the origin.
func ViewportBorder(t border.Type, w, h int, dim int32) border.Border {
	return border.Border{
		Type: t,
		Min:  core.Position{},
		Max:  core.GlobalToPosition(core.Vec2{X: int32(w), Y: int32(h)}, dim),
	}
}

// New returns a sandbox for rc and starts building its tree in the
// background. seeder may be nil, in which case Reset scatters non-null
// states at cfg.Density. A nil logger uses log.Default().
func New(name string, rc *rule.Configuration, cfg Config, seeder Seeder, logger *log.Logger) (*Sandbox, error) {
	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("sandbox %s: %w", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("sandbox %s: viewport %dx%d", name, cfg.Width, cfg.Height)
	}
	u := universe.New(cfg.BlockDim)
	u.Options.Border = ViewportBorder(cfg.Border, cfg.Width, cfg.Height, u.Store.Dim())
	if len(rc.NullStates) > 0 {
		u.Init.States = []core.CellState{rc.NullStates[0]}
	}
	return NewWithUniverse(name, rc, u, cfg, seeder, logger)
}

// NewWithUniverse is New for an existing universe, such as one loaded from a
// snapshot. The universe's own border and block size are kept.
func NewWithUniverse(name string, rc *rule.Configuration, u *universe.Universe, cfg Config, seeder Seeder, logger *log.Logger) (*Sandbox, error) {
	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("sandbox %s: %w", name, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	r := rule.New(rc)
	sb := &Sandbox{
		name:    name,
		cfg:     cfg,
		logger:  logger,
		rule:    r,
		builder: rule.NewBuilder(r, logger),
		seeder:  seeder,
		uni:     u,
		grid:    core.NewStateGrid(cfg.Width, cfg.Height),
	}
	sb.builder.Start(context.Background())
	return sb, nil
}

// Name identifies the sandbox.
func (sb *Sandbox) Name() string { return sb.name }

// Size returns the viewport dimensions.
func (sb *Sandbox) Size() core.Size { return core.Size{W: sb.grid.W, H: sb.grid.H} }

// BlockDim returns the side length of the universe's blocks.
func (sb *Sandbox) BlockDim() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return int(sb.uni.Store.Dim())
}

// Rule returns the rule being simulated.
func (sb *Sandbox) Rule() *rule.Rule { return sb.rule }

// Builder returns the background builder of the rule.
func (sb *Sandbox) Builder() *rule.Builder { return sb.builder }

// WaitBuilt blocks until the current build finishes.
func (sb *Sandbox) WaitBuilt(ctx context.Context) error { return sb.builder.Wait(ctx) }

// Rebuild replaces the rule configuration and starts a new build. The old
// tree keeps stepping the universe until the new one is ready.
func (sb *Sandbox) Rebuild(rc *rule.Configuration) (rule.BuildStatus, error) {
	if err := rc.Validate(); err != nil {
		return 0, err
	}
	if sb.builder.Running() {
		return rule.BuildAlreadyRunning, nil
	}
	sb.rule.SetConfig(rc)
	return sb.builder.Start(context.Background()), nil
}

// Generation returns the number of steps taken since the last reset.
func (sb *Sandbox) Generation() uint64 {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.generation
}

// Universe returns the universe. Callers must not use it concurrently with
// Step.
func (sb *Sandbox) Universe() *universe.Universe { return sb.uni }

// Err returns the error of the last step, if it failed.
func (sb *Sandbox) Err() error {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.err
}

// Reset clears the universe and reseeds it deterministically from seed.
func (sb *Sandbox) Reset(seed int64) {
	sb.mu.Lock()
	sb.uni.Store.Clear()
	sb.generation = 0
	sb.stats = simulate.Stats{}
	sb.err = nil
	sb.mu.Unlock()

	rng := core.NewRNG(seed)
	if sb.seeder != nil {
		sb.seeder(sb, rng)
		return
	}
	sb.scatter(rng)
}

// scatter sets each viewport cell to a random non-null state with
// probability cfg.Density.
func (sb *Sandbox) scatter(rng *core.RNG) {
	cfg := sb.rule.Config()
	var live []core.CellState
	for s := 0; s < cfg.States.Len(); s++ {
		if !cfg.IsNull(core.CellState(s)) {
			live = append(live, core.CellState(s))
		}
	}
	if len(live) == 0 || sb.cfg.Density <= 0 {
		return
	}
	const scale = 1 << 20
	threshold := int(sb.cfg.Density * scale)
	for y := 0; y < sb.grid.H; y++ {
		for x := 0; x < sb.grid.W; x++ {
			if rng.IntN(scale) < threshold {
				sb.Paint(int32(x), int32(y), rng.Pick(live))
			}
		}
	}
}

// Step advances one generation. Errors are kept for Err and logged; while
// the tree is still building Step does nothing.
func (sb *Sandbox) Step() {
	if _, err := sb.Advance(); err != nil && !errors.Is(err, simulate.ErrTreeNotBuilt) {
		sb.logger.Printf("sandbox %s: step %d: %v", sb.name, sb.Generation(), err)
	}
}

// Advance steps one generation and returns its statistics.
func (sb *Sandbox) Advance() (simulate.Stats, error) {
	tree := sb.rule.Tree()
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if tree == nil {
		return simulate.Stats{}, simulate.ErrTreeNotBuilt
	}
	init := sb.uni.Init.Func(core.NewRNG(sb.cfg.Seed + int64(sb.generation)))
	stats, err := simulate.Step(sb.uni.Options, tree, sb.uni.Store, init, sb.generation+1)
	sb.err = err
	if err != nil {
		return stats, err
	}
	sb.generation++
	sb.stats = stats
	return stats, nil
}

// Cells rasterises the viewport. Cells in absent blocks read as the first
// initialisation state.
func (sb *Sandbox) Cells() []core.CellState {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	var fill core.CellState
	if len(sb.uni.Init.States) > 0 {
		fill = sb.uni.Init.States[0]
	}
	sb.grid.Fill(fill)
	dim := sb.uni.Store.Dim()
	w, h := int32(sb.grid.W), int32(sb.grid.H)
	for b := range sb.uni.Store.All() {
		ox, oy := b.Position.X*dim, b.Position.Y*dim
		if ox >= w || oy >= h || ox+dim <= 0 || oy+dim <= 0 {
			continue
		}
		for cy := int32(0); cy < dim; cy++ {
			y := oy + cy
			if y < 0 || y >= h {
				continue
			}
			for cx := int32(0); cx < dim; cx++ {
				x := ox + cx
				if x < 0 || x >= w {
					continue
				}
				sb.grid.Set(int(x), int(y), b.Cells[cy*dim+cx])
			}
		}
	}
	return sb.grid.Cells()
}

// Paint sets the cell at global (x, y), creating its block if needed.
func (sb *Sandbox) Paint(x, y int32, s core.CellState) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.setLocked(x, y, s)
}

func (sb *Sandbox) setLocked(x, y int32, s core.CellState) {
	store := sb.uni.Store
	pos := core.GlobalToPosition(core.Vec2{X: x, Y: y}, store.Dim())
	b := store.GetOrCreate(pos.Block, sb.uni.Init.Func(nil))
	b.SetState(pos.Cell, s)
	b.Previous[b.MustIndex(pos.Cell)] = s
}

// Cycle advances the cell at global (x, y) to the next named state and
// returns it.
func (sb *Sandbox) Cycle(x, y int32) core.CellState {
	cfg := sb.rule.Config()
	sb.mu.Lock()
	defer sb.mu.Unlock()
	cur, _ := sb.uni.Store.Cell(core.GlobalToPosition(core.Vec2{X: x, Y: y}, sb.uni.Store.Dim()))
	next := cfg.States.Advance(cur)
	sb.setLocked(x, y, next)
	return next
}

// At returns the state at global (x, y), or the first initialisation state
// when its block is absent.
func (sb *Sandbox) At(x, y int32) core.CellState {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	s, ok := sb.uni.Store.Cell(core.GlobalToPosition(core.Vec2{X: x, Y: y}, sb.uni.Store.Dim()))
	if !ok && len(sb.uni.Init.States) > 0 {
		return sb.uni.Init.States[0]
	}
	return s
}

// Clear removes every block without reseeding.
func (sb *Sandbox) Clear() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.uni.Store.Clear()
}

// Prune deletes blocks holding only null states.
func (sb *Sandbox) Prune() int {
	cfg := sb.rule.Config()
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return universe.PruneNullBlocks(sb.uni.Store, cfg.IsNull)
}

// Save writes a snapshot of the universe to path.
func (sb *Sandbox) Save(path string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return universe.Save(path, sb.uni)
}

// Load replaces the universe with the snapshot at path and restarts the
// generation count.
func (sb *Sandbox) Load(path string) error {
	u, err := universe.Load(path)
	if err != nil {
		return err
	}
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.uni = u
	sb.generation = 0
	sb.stats = simulate.Stats{}
	sb.err = nil
	return nil
}

// StateNames returns the names of the rule's states in value order.
func (sb *Sandbox) StateNames() []string { return sb.rule.Config().States.Names() }

// Reblock moves the universe onto blocks of side dim, keeping every cell and
// both border corners at the same global position.
func (sb *Sandbox) Reblock(dim int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	old := sb.uni.Store.Dim()
	sb.uni.Store = blocks.Reblock(sb.uni.Store, dim, sb.uni.Init.Func(nil))
	nb := &sb.uni.Options.Border
	nb.Min = core.GlobalToPosition(nb.Min.Global(old), int32(dim))
	nb.Max = core.GlobalToPosition(nb.Max.Global(old), int32(dim))
}
