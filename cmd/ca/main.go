//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"ca-sandbox/internal/app"
	"ca-sandbox/internal/sims"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	sb, err := sims.OpenOrLoad(cfg.Sim, cfg.Rule, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	sb.Reset(cfg.Seed)

	game := app.New(sb, cfg)
	size := sb.Size()

	ebiten.SetWindowTitle("ca-sandbox: " + sb.Name())
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.Panel, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
