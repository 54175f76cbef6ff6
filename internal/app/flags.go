package app

import "flag"

// Config represents the command-line parameters for the application.
type Config struct {
	Sim   string
	Rule  string
	Scale int
	TPS   int
	Seed  int64
	Panel int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "life", Scale: 3, TPS: 30, Seed: 42, Panel: 260}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "preset to run")
	fs.StringVar(&c.Rule, "rule", c.Rule, "YAML rule file; overrides -sim")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "generations per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.Panel, "panel", c.Panel, "width of the parameter panel in pixels, 0 to hide")
}
