// Command ca-term runs a sandbox in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"ca-sandbox/internal/sims"
	"ca-sandbox/internal/term"
)

func main() {
	sim := flag.String("sim", "life", "preset to run")
	rulePath := flag.String("rule", "", "YAML rule file; overrides -sim")
	tps := flag.Int("tps", 10, "generations per second")
	seed := flag.Int64("seed", 42, "seed for simulation reset")
	logPath := flag.String("log", "", "append log output here instead of discarding it")
	flag.Parse()

	logger := log.New(io.Discard, "", log.LstdFlags)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	cols, rows := screen.Size()
	params := map[string]string{"w": fmt.Sprint(cols), "h": fmt.Sprint(2 * (rows - 1))}

	sb, err := sims.OpenOrLoad(*sim, *rulePath, params, logger)
	if err != nil {
		screen.Fini()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sb.Reset(*seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	term.NewViewer(screen, sb, *tps, *seed).Run(ctx)
	screen.Fini()
}
