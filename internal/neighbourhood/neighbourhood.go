// Package neighbourhood enumerates the input cells of a transition function.
//
// Inputs are numbered left-to-right, top-to-bottom, including the centre
// cell, so that index n of a rule pattern always refers to the same offset.
package neighbourhood

import (
	"errors"
	"fmt"
	"strings"

	"ca-sandbox/internal/core"
)

// Shape selects the set of cells feeding a transition.
type Shape uint8

const (
	// VonNeumann is a plus shape: four spokes of length radius.
	VonNeumann Shape = iota
	// Moore is the full square of side 2*radius+1.
	Moore
	// OneDim is a horizontal line of 2*radius+1 cells.
	OneDim
)

// ErrUnknownShape is returned by ParseShape for unrecognised names.
var ErrUnknownShape = errors.New("neighbourhood: unknown shape")

var shapeNames = [...]string{
	VonNeumann: "VON_NEUMANN",
	Moore:      "MOORE",
	OneDim:     "ONE_DIM",
}

// String returns the canonical upper-case name of the shape.
func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", s)
}

// ParseShape accepts the canonical names, case-insensitively.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if strings.EqualFold(name, n) {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

// NCells returns the number of inputs including the centre.
func NCells(shape Shape, radius uint32) uint32 {
	switch shape {
	case VonNeumann:
		return 4*radius + 1
	case Moore:
		side := 2*radius + 1
		return side * side
	case OneDim:
		return 2*radius + 1
	}
	return 0
}

// CentreIndex returns the input index of the subject cell. NCells is odd for
// every shape, so this is the exact middle.
func CentreIndex(shape Shape, radius uint32) uint32 {
	return NCells(shape, radius) / 2
}

// Coverage returns the size of the bounding box of the neighbourhood.
func Coverage(shape Shape, radius uint32) core.Vec2 {
	side := int32(2*radius + 1)
	if shape == OneDim {
		return core.Vec2{X: side, Y: 1}
	}
	return core.Vec2{X: side, Y: side}
}

// Delta maps an input index to its offset from the centre cell. It panics if
// index is not below NCells.
func Delta(shape Shape, radius uint32, index uint32) core.Vec2 {
	if index >= NCells(shape, radius) {
		panic(fmt.Sprintf("neighbourhood: index %d out of range for %s radius %d", index, shape, radius))
	}
	r := int32(radius)
	i := int32(index)
	switch shape {
	case Moore:
		side := 2*r + 1
		return core.Vec2{X: i%side - r, Y: i/side - r}
	case VonNeumann:
		switch {
		case i < r:
			return core.Vec2{X: 0, Y: -(r - i)}
		case i < 2*r:
			return core.Vec2{X: -(2*r - i), Y: 0}
		case i == 2*r:
			return core.Vec2{}
		case i < 3*r+1:
			return core.Vec2{X: i - 2*r, Y: 0}
		default:
			return core.Vec2{X: 0, Y: i - 3*r}
		}
	case OneDim:
		return core.Vec2{X: i - r, Y: 0}
	}
	return core.Vec2{}
}

// Index is the inverse of Delta. ok is false when delta lies outside the
// neighbourhood.
func Index(shape Shape, radius uint32, delta core.Vec2) (index uint32, ok bool) {
	r := int32(radius)
	abs := func(v int32) int32 {
		if v < 0 {
			return -v
		}
		return v
	}
	switch shape {
	case Moore:
		if abs(delta.X) > r || abs(delta.Y) > r {
			return 0, false
		}
		side := 2*r + 1
		return uint32((delta.Y+r)*side + delta.X + r), true
	case VonNeumann:
		switch {
		case delta.X == 0 && delta.Y == 0:
			return uint32(2 * r), true
		case delta.X == 0 && delta.Y < 0 && -delta.Y <= r:
			return uint32(r + delta.Y), true
		case delta.Y == 0 && delta.X < 0 && -delta.X <= r:
			return uint32(2*r + delta.X), true
		case delta.Y == 0 && delta.X > 0 && delta.X <= r:
			return uint32(2*r + delta.X), true
		case delta.X == 0 && delta.Y > 0 && delta.Y <= r:
			return uint32(3*r + delta.Y), true
		}
		return 0, false
	case OneDim:
		if delta.Y != 0 || abs(delta.X) > r {
			return 0, false
		}
		return uint32(delta.X + r), true
	}
	return 0, false
}

// Deltas returns every offset in input order.
func Deltas(shape Shape, radius uint32) []core.Vec2 {
	n := NCells(shape, radius)
	out := make([]core.Vec2, n)
	for i := uint32(0); i < n; i++ {
		out[i] = Delta(shape, radius, i)
	}
	return out
}
