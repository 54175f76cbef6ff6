package sandbox

import (
	"strconv"

	"ca-sandbox/internal/core"
)

// Parameters describes the rule, build and universe for display.
func (sb *Sandbox) Parameters() core.ParameterSnapshot {
	cfg := sb.rule.Config()
	done, total := sb.builder.Progress()
	nodes := "-"
	if t := sb.rule.Tree(); t != nil {
		nodes = strconv.Itoa(t.Len())
	}
	build := core.ProgressParam("build", "Build", done, total)
	if sb.builder.Running() {
		build.Description = "building"
	} else if err := sb.builder.Err(); err != nil {
		build.Description = err.Error()
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()
	opts := sb.uni.Options
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Rule",
			Params: []core.Parameter{
				core.TextParam("shape", "Shape", cfg.Shape.String()),
				core.UintParam("radius", "Radius", uint64(cfg.Radius)),
				core.IntParam("states", "States", int64(cfg.States.Len())),
				core.IntParam("patterns", "Patterns", int64(len(cfg.Patterns))),
				core.TextParam("nodes", "Nodes", nodes),
				build,
				core.TextParam("build_time", "Build time", sb.builder.LastDuration().String()),
			},
		},
		{
			Name: "Universe",
			Params: []core.Parameter{
				core.UintParam("generation", "Generation", sb.generation),
				core.IntParam("blocks", "Blocks", int64(sb.uni.Store.Len())),
				core.IntParam("block_dim", "Block size", int64(sb.uni.Store.Dim())),
				core.TextParam("border", "Border", opts.Border.Type.String()),
			},
		},
		{
			Name: "Last step",
			Params: []core.Parameter{
				core.IntParam("created", "Created", int64(sb.stats.Created)),
				core.IntParam("evaluated", "Evaluated", int64(sb.stats.Evaluated)),
				core.IntParam("unresolved", "Unresolved", int64(sb.stats.Unresolved)),
			},
		},
	}}
}
