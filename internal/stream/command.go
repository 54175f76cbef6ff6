package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Op names a client command.
type Op string

const (
	OpRandom Op = "random"
	OpClear  Op = "clear"
	OpPause  Op = "pause"
	OpResume Op = "resume"
	OpStep   Op = "step"
	OpPrune  Op = "prune"
	OpPaint  Op = "paint"
)

// ErrBadCommand is returned by ParseCommand.
var ErrBadCommand = errors.New("stream: bad command")

// Command is a parsed client message. State is only used by OpPaint; when it
// is nil the cell cycles to its next state.
type Command struct {
	Op    Op      `json:"op"`
	X     int32   `json:"x"`
	Y     int32   `json:"y"`
	State *uint32 `json:"state,omitempty"`
}

// ParseCommand accepts either a bare op name or a JSON object. A JSON object
// without an op is a paint request, so {"x":1,"y":2} toggles a cell.
func ParseCommand(p []byte) (Command, error) {
	text := strings.TrimSpace(string(p))
	if !strings.HasPrefix(text, "{") {
		switch op := Op(strings.ToLower(text)); op {
		case OpRandom, OpClear, OpPause, OpResume, OpStep, OpPrune:
			return Command{Op: op}, nil
		}
		return Command{}, fmt.Errorf("%w: %q", ErrBadCommand, text)
	}
	var c Command
	if err := json.Unmarshal(p, &c); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrBadCommand, err)
	}
	if c.Op == "" {
		c.Op = OpPaint
	}
	return c, nil
}
