// Package sims links every preset into the core registry and opens either a
// preset or a YAML rule file as a sandbox.
package sims

import (
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"strings"

	"ca-sandbox/internal/core"
	"ca-sandbox/internal/ruleconfig"
	"ca-sandbox/internal/sandbox"
	"ca-sandbox/internal/sims/briansbrain"
	"ca-sandbox/internal/sims/elementary"
	"ca-sandbox/internal/sims/life"
	"ca-sandbox/internal/sims/wireworld"
)

// Names returns the registered presets in sorted order.
func Names() []string {
	var out []string
	for name := range core.Sims() {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Open returns the preset called name, configured from params. A nil logger
// uses log.Default().
func Open(name string, params map[string]string, logger *log.Logger) (*sandbox.Sandbox, error) {
	switch name {
	case "life":
		return life.New(life.FromMap(params), logger)
	case "briansbrain":
		return briansbrain.New(briansbrain.FromMap(params), logger)
	case "elementary":
		return elementary.New(elementary.FromMap(params), logger)
	case "wireworld":
		return wireworld.New(wireworld.FromMap(params), logger)
	}
	factory, ok := core.Sims()[name]
	if !ok {
		return nil, fmt.Errorf("unknown sim %q (have %s)", name, strings.Join(Names(), ", "))
	}
	sim, err := factory(params)
	if err != nil {
		return nil, err
	}
	sb, ok := sim.(*sandbox.Sandbox)
	if !ok {
		return nil, fmt.Errorf("sim %q is not a sandbox", name)
	}
	return sb, nil
}

// Load opens a YAML rule file with the viewport and seeding taken from
// params.
func Load(path string, params map[string]string, logger *log.Logger) (*sandbox.Sandbox, error) {
	doc, err := ruleconfig.LoadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return doc.Sandbox(name, sandbox.FromMap(params, sandbox.DefaultConfig()), logger)
}

// OpenOrLoad calls Load when rulePath is set and Open otherwise.
func OpenOrLoad(name, rulePath string, params map[string]string, logger *log.Logger) (*sandbox.Sandbox, error) {
	if rulePath != "" {
		return Load(rulePath, params, logger)
	}
	return Open(name, params, logger)
}
