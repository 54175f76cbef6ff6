package rule

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// BuildStatus is the outcome of Builder.Start.
type BuildStatus uint8

const (
	// BuildStarted means a new build is running in the background.
	BuildStarted BuildStatus = iota
	// BuildAlreadyRunning means a build was in flight and nothing changed.
	BuildAlreadyRunning
)

func (s BuildStatus) String() string {
	if s == BuildAlreadyRunning {
		return "already running"
	}
	return "started"
}

// Builder runs at most one background build of a Rule at a time.
type Builder struct {
	rule   *Rule
	logger *log.Logger

	progress Progress

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
	lastTime time.Duration
}

// NewBuilder returns a builder for r. A nil logger uses log.Default().
func NewBuilder(r *Rule, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	done := make(chan struct{})
	close(done)
	return &Builder{rule: r, logger: logger, done: done}
}

// Rule returns the rule being built.
func (b *Builder) Rule() *Rule { return b.rule }

// Start begins building the rule's current configuration unless a build is
// already running. The build stops early if ctx or Cancel cancels it.
func (b *Builder) Start(ctx context.Context) BuildStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return BuildAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	b.running = true
	b.cancel = cancel
	b.err = nil
	b.done = make(chan struct{})
	cfg := b.rule.Config()
	if cfg != nil {
		b.progress.reset(LeafCount(cfg))
	}
	go b.run(ctx, cfg, b.done)
	return BuildStarted
}

func (b *Builder) run(ctx context.Context, cfg *Configuration, done chan struct{}) {
	start := time.Now()
	if cfg != nil {
		_, total := b.progress.Load()
		b.logger.Printf("rule: building tree, %d leaves", total)
	}
	t, err := Compile(ctx, cfg, &b.progress)
	elapsed := time.Since(start)
	switch {
	case err == nil:
		b.rule.tree.Store(t)
		b.logger.Printf("rule: tree built, %d nodes in %s", t.Len(), elapsed.Round(time.Millisecond))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		b.logger.Printf("rule: build cancelled after %s", elapsed.Round(time.Millisecond))
	default:
		b.logger.Printf("rule: build failed: %v", err)
	}

	b.mu.Lock()
	b.running = false
	b.err = err
	if err == nil {
		b.lastTime = elapsed
	}
	b.cancel()
	b.mu.Unlock()
	close(done)
}

// Running reports whether a build is in flight.
func (b *Builder) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Progress returns the leaves produced by the current or last build and the
// total it will produce.
func (b *Builder) Progress() (done, total uint64) { return b.progress.Load() }

// Fraction returns the progress of the current or last build in [0, 1].
func (b *Builder) Fraction() float64 { return b.progress.Fraction() }

// Cancel stops the running build, if any. It does not wait.
func (b *Builder) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running && b.cancel != nil {
		b.cancel()
	}
}

// Wait blocks until the current build finishes and returns its error. It
// returns ctx.Err() if ctx ends first. With no build started it returns nil.
func (b *Builder) Wait(ctx context.Context) error {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Err returns the error of the last finished build.
func (b *Builder) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// LastDuration returns the wall-clock time of the last successful build.
func (b *Builder) LastDuration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastTime
}
