// Command ca-serve runs a sandbox and streams it to websocket clients on /ws.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ca-sandbox/internal/sims"
	"ca-sandbox/internal/stream"
)

func main() {
	cfg := stream.DefaultConfig()
	sim := flag.String("sim", "life", "preset to run")
	rulePath := flag.String("rule", "", "YAML rule file; overrides -sim")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.IntVar(&cfg.TPS, "tps", cfg.TPS, "generations per second")
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "frames broadcast per second")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the initial universe")
	w := flag.String("w", "128", "viewport width")
	h := flag.String("h", "128", "viewport height")
	flag.Parse()

	sb, err := sims.OpenOrLoad(*sim, *rulePath, map[string]string{"w": *w, "h": *h}, nil)
	if err != nil {
		log.Fatal(err)
	}
	sb.Reset(cfg.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := stream.NewServer(sb, cfg, nil).ListenAndServe(ctx); err != nil {
		log.Fatal(err)
	}
}
