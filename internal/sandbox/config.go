package sandbox

import (
	"strconv"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/border"
)

// Config holds the viewport and seeding parameters shared by every preset.
type Config struct {
	Width  int
	Height int

	BlockDim int
	Border   border.Type

	Seed    int64
	Density float64
}

// DefaultConfig returns the standard configuration: a 256x256 torus.
func DefaultConfig() Config {
	return Config{
		Width:    256,
		Height:   256,
		BlockDim: blocks.DefaultDim,
		Border:   border.Torus,
		Seed:     1337,
		Density:  0.2,
	}
}

// FromMap overrides base with flag-style key/value pairs: w, h, block,
// border, seed and density. Unparseable values are ignored.
func FromMap(cfg map[string]string, base Config) Config {
	c := base
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["block"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.BlockDim = parsed
		}
	}
	if v, ok := cfg["border"]; ok {
		if parsed, err := border.ParseType(v); err == nil {
			c.Border = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Density = parsed
		}
	}
	return c
}
