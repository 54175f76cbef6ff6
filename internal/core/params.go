package core

import (
	"fmt"
	"strconv"
)

// Parameter describes a single value exposed by a simulation for display.
type Parameter struct {
	Key         string
	Label       string
	Value       string
	Description string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name    string
	Params  []Parameter
	Summary string
}

// ParameterSnapshot captures the current set of values exposed by a sim.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// ParameterProvider is implemented by sims that describe their state.
type ParameterProvider interface {
	Parameters() ParameterSnapshot
}

// Lookup returns the parameter with the given key.
func (s ParameterSnapshot) Lookup(key string) (Parameter, bool) {
	for _, g := range s.Groups {
		for _, p := range g.Params {
			if p.Key == key {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

// IntParam builds a Parameter holding an integer value.
func IntParam(key, label string, v int64) Parameter {
	return Parameter{Key: key, Label: label, Value: strconv.FormatInt(v, 10)}
}

// UintParam builds a Parameter holding an unsigned value.
func UintParam(key, label string, v uint64) Parameter {
	return Parameter{Key: key, Label: label, Value: strconv.FormatUint(v, 10)}
}

// TextParam builds a Parameter holding free text.
func TextParam(key, label, v string) Parameter {
	return Parameter{Key: key, Label: label, Value: v}
}

// ProgressParam formats done/total as a percentage parameter.
func ProgressParam(key, label string, done, total uint64) Parameter {
	pct := 100.0
	if total > 0 {
		pct = 100 * float64(done) / float64(total)
	}
	return Parameter{Key: key, Label: label, Value: fmt.Sprintf("%.1f%% (%d/%d)", pct, done, total)}
}
