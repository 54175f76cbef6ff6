// Command ca-run runs a preset or YAML rule headless for a number of
// generations and writes the result as a snapshot, a PNG or both.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"ca-sandbox/internal/render"
	"ca-sandbox/internal/ruleconfig"
	"ca-sandbox/internal/sims"
)

func main() {
	sim := flag.String("sim", "life", "preset to run")
	rulePath := flag.String("rule", "", "YAML rule file; overrides -sim")
	load := flag.String("load", "", "snapshot to start from instead of a seeded universe")
	steps := flag.Int("steps", 100, "generations to run")
	seed := flag.Int64("seed", 42, "seed for the initial universe")
	out := flag.String("out", "", "write the final universe snapshot here")
	pngPath := flag.String("png", "", "write the final viewport as a PNG here")
	scale := flag.Int("scale", 2, "PNG pixel scale")
	dump := flag.String("dump", "", "write the compiled rule tree here")
	export := flag.String("export", "", "write the rule as YAML here")
	timeout := flag.Duration("build-timeout", time.Minute, "give up if the rule tree takes longer to build")
	params := map[string]string{}
	for _, key := range []string{"w", "h", "block", "border", "density", "rulestring"} {
		flag.Func(key, "preset parameter "+key, func(v string) error {
			if key == "rulestring" {
				params["rule"] = v
				return nil
			}
			params[key] = v
			return nil
		})
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sb, err := sims.OpenOrLoad(*sim, *rulePath, params, nil)
	if err != nil {
		log.Fatal(err)
	}

	buildCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	if err := sb.WaitBuilt(buildCtx); err != nil {
		sb.Builder().Cancel()
		log.Fatalf("rule build: %v", err)
	}
	if err := sb.Builder().Err(); err != nil {
		log.Fatalf("rule build: %v", err)
	}

	if *export != "" {
		data, err := ruleconfig.FromConfiguration(sb.Rule().Config()).Marshal()
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*export, data, 0o644); err != nil {
			log.Fatal(err)
		}
	}
	if *dump != "" {
		f, err := os.Create(*dump)
		if err != nil {
			log.Fatal(err)
		}
		if err := sb.Rule().Tree().Dump(f); err != nil {
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
	}

	if *load != "" {
		if err := sb.Load(*load); err != nil {
			log.Fatal(err)
		}
	} else {
		sb.Reset(*seed)
	}

	start := time.Now()
	for i := 0; i < *steps; i++ {
		if ctx.Err() != nil {
			log.Printf("interrupted at generation %d", sb.Generation())
			break
		}
		stats, err := sb.Advance()
		if err != nil {
			log.Fatalf("generation %d: %v", sb.Generation()+1, err)
		}
		if stats.Unresolved > 0 && i == 0 {
			log.Printf("%d cells unresolved at the border", stats.Unresolved)
		}
	}
	elapsed := time.Since(start)
	log.Printf("%s: %d generations in %s, %d blocks", sb.Name(), sb.Generation(), elapsed.Round(time.Millisecond), sb.Universe().Store.Len())

	if *out != "" {
		if err := sb.Save(*out); err != nil {
			log.Fatal(err)
		}
	}
	if *pngPath != "" {
		if err := render.SavePNG(*pngPath, sb.Cells(), sb.Size(), *scale); err != nil {
			log.Fatal(err)
		}
	}
}
