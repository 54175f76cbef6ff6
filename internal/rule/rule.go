// Package rule compiles declarative transition patterns into a decision tree
// over every neighbourhood input combination.
//
// A Rule pairs a Configuration with the last tree built from it. Trees are
// built into fresh storage and published with an atomic swap, so a reader
// holding a *Tree is never affected by a rebuild.
package rule

import (
	"context"
	"sync"
	"sync/atomic"
)

// Rule is a configuration and its compiled tree.
type Rule struct {
	mu     sync.Mutex
	config *Configuration
	tree   atomic.Pointer[Tree]
}

// New returns a rule for cfg with no tree built.
func New(cfg *Configuration) *Rule {
	return &Rule{config: cfg}
}

// Config returns a copy of the current configuration.
func (r *Rule) Config() *Configuration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.config == nil {
		return nil
	}
	return r.config.Clone()
}

// SetConfig replaces the configuration. The current tree stays in place
// until the next build completes.
func (r *Rule) SetConfig(cfg *Configuration) {
	r.mu.Lock()
	r.config = cfg
	r.mu.Unlock()
}

// Tree returns the built tree, or nil.
func (r *Rule) Tree() *Tree { return r.tree.Load() }

// Built reports whether a tree is available.
func (r *Rule) Built() bool { return r.tree.Load() != nil }

// Build compiles the current configuration and publishes the result. On
// error the previous tree is kept.
func (r *Rule) Build(ctx context.Context, progress *Progress) (*Tree, error) {
	t, err := Compile(ctx, r.Config(), progress)
	if err != nil {
		return nil, err
	}
	r.tree.Store(t)
	return t, nil
}

// Destroy drops the built tree.
func (r *Rule) Destroy() { r.tree.Store(nil) }
