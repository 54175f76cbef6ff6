// Command tree-sweep compiles a family of synthetic rules over a grid of
// neighbourhood shapes, radii and state counts, and reports how well node
// sharing compresses each tree and how fast it builds and steps.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
	"ca-sandbox/internal/rule"
	"ca-sandbox/internal/simulate"
)

type scenario struct {
	shape   neighbourhood.Shape
	radius  uint32
	nStates int
}

func (s scenario) String() string {
	return fmt.Sprintf("%s r=%d states=%d", s.shape, s.radius, s.nStates)
}

type scenarioResult struct {
	scenario
	leaves    uint64
	nodes     int
	naive     uint64
	buildTime time.Duration
	stepTime  time.Duration
	blocks    int
	err       error
}

func (r scenarioResult) ratio() float64 {
	if r.nodes == 0 {
		return 0
	}
	return float64(r.naive) / float64(r.nodes)
}

func main() {
	steps := flag.Int("steps", 20, "generations to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	maxLeaves := flag.Uint64("max-leaves", 1<<22, "skip scenarios with more leaves than this")
	maxStates := flag.Int("max-states", 4, "largest state count to sweep")
	maxRadius := flag.Uint("max-radius", 2, "largest radius to sweep")
	flag.Parse()

	var sets []scenario
	for _, shape := range []neighbourhood.Shape{neighbourhood.OneDim, neighbourhood.VonNeumann, neighbourhood.Moore} {
		for r := uint32(1); r <= uint32(*maxRadius); r++ {
			for n := 2; n <= *maxStates; n++ {
				sc := scenario{shape: shape, radius: r, nStates: n}
				if rule.LeafCount(sweepRule(sc)) > *maxLeaves {
					continue
				}
				sets = append(sets, sc)
			}
		}
	}

	fmt.Printf("Sweeping %d scenarios (%d workers, %d steps)\n", len(sets), *workers, *steps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	var (
		mu  sync.Mutex
		all []scenarioResult
	)
	start := time.Now()
	for _, sc := range sets {
		g.Go(func() error {
			res := runScenario(ctx, sc, *steps)
			if res.err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			mu.Lock()
			all = append(all, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("sweep interrupted: %v", err)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ratio() > all[j].ratio() })
	fmt.Printf("\nResults (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i, res := range all {
		if res.err != nil {
			fmt.Printf("%2d) %-28s error: %v\n", i+1, res.scenario, res.err)
			continue
		}
		fmt.Printf("%2d) %-28s leaves=%d nodes=%d naive=%d sharing=%.1fx build=%s step=%s blocks=%d\n",
			i+1, res.scenario, res.leaves, res.nodes, res.naive, res.ratio(),
			res.buildTime.Round(time.Microsecond), res.stepTime.Round(time.Microsecond), res.blocks)
	}
}

// sweepRule returns a multi-state spreading rule: an empty cell takes state k
// when at least two neighbours hold k, and a cell in state k with no
// neighbour in state k empties.
func sweepRule(sc scenario) *rule.Configuration {
	names := make([]string, sc.nStates)
	for i := range names {
		names[i] = fmt.Sprintf("S%d", i)
	}
	cfg := &rule.Configuration{
		Shape:      sc.shape,
		Radius:     sc.radius,
		States:     rule.MustNamedStates(names...),
		NullStates: []core.CellState{0},
	}
	n := cfg.NInputs()
	centred := func(self core.CellState) []rule.PatternCell {
		cells := make([]rule.PatternCell, n)
		for i := range cells {
			cells[i] = rule.Any()
		}
		cells[cfg.CentreIndex()] = rule.Is(self)
		return cells
	}
	for k := 1; k < sc.nStates; k++ {
		s := core.CellState(k)
		group, _ := rule.NewStateGroup(s)
		birth := cfg.AddPattern(s, "birth", centred(0)...)
		birth.Count = rule.CountMatching{Enabled: true, Group: group, Op: rule.GreaterOrEqual, Threshold: 2}
		death := cfg.AddPattern(0, "isolation", centred(s)...)
		death.Count = rule.CountMatching{Enabled: true, Group: group, Op: rule.Less, Threshold: 1}
	}
	return cfg
}

func runScenario(ctx context.Context, sc scenario, steps int) scenarioResult {
	res := scenarioResult{scenario: sc}
	cfg := sweepRule(sc)
	res.leaves = rule.LeafCount(cfg)

	begin := time.Now()
	tree, err := rule.Compile(ctx, cfg, nil)
	res.buildTime = time.Since(begin)
	if err != nil {
		res.err = err
		return res
	}
	res.nodes = tree.Len()
	res.naive = tree.NaiveNodeCount()

	opts := simulate.DefaultOptions()
	opts.Border.Type = border.Torus
	store := blocks.New(blocks.DefaultDim)
	rng := core.NewRNG(1337)
	live := make([]core.CellState, 0, sc.nStates)
	for k := 0; k < sc.nStates; k++ {
		live = append(live, core.CellState(k))
	}
	init := blocks.Initialisation{States: live}.Func(rng)
	for y := int32(0); y < 4; y++ {
		for x := int32(0); x < 4; x++ {
			store.Create(core.Vec2{X: x, Y: y}, init)
		}
	}
	zero := blocks.DefaultInitialisation().Func(nil)

	begin = time.Now()
	for gen := 1; gen <= steps; gen++ {
		if ctx.Err() != nil {
			res.err = ctx.Err()
			return res
		}
		if _, err := simulate.Step(opts, tree, store, zero, uint64(gen)); err != nil {
			res.err = err
			return res
		}
	}
	if steps > 0 {
		res.stepTime = time.Since(begin) / time.Duration(steps)
	}
	res.blocks = store.Len()
	return res
}
