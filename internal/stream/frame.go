// Package stream serves a sandbox over websockets: every tick the viewport
// is broadcast to all clients as a snappy-compressed frame, and clients send
// back text commands or JSON paint requests.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/snappy"

	"ca-sandbox/internal/core"
)

const headerLen = 16

// DebugByte is the frame value of core.DebugState and of any state that
// does not fit in a byte.
const DebugByte = 0xff

// ErrBadFrame is returned by DecodeFrame.
var ErrBadFrame = errors.New("stream: bad frame")

// Frame is one decoded viewport.
type Frame struct {
	Generation uint64
	Size       core.Size
	Cells      []byte
}

// EncodeFrame packs the viewport as a 16 byte little-endian header (width,
// height, generation) followed by one byte per cell, snappy-compressed.
func EncodeFrame(generation uint64, size core.Size, cells []core.CellState) []byte {
	raw := make([]byte, headerLen+len(cells))
	binary.LittleEndian.PutUint32(raw[0:], uint32(size.W))
	binary.LittleEndian.PutUint32(raw[4:], uint32(size.H))
	binary.LittleEndian.PutUint64(raw[8:], generation)
	for i, s := range cells {
		if s >= DebugByte {
			raw[headerLen+i] = DebugByte
			continue
		}
		raw[headerLen+i] = byte(s)
	}
	return snappy.Encode(nil, raw)
}

// DecodeFrame reverses EncodeFrame.
func DecodeFrame(data []byte) (Frame, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if len(raw) < headerLen {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrBadFrame, len(raw))
	}
	f := Frame{
		Size: core.Size{
			W: int(binary.LittleEndian.Uint32(raw[0:])),
			H: int(binary.LittleEndian.Uint32(raw[4:])),
		},
		Generation: binary.LittleEndian.Uint64(raw[8:]),
		Cells:      raw[headerLen:],
	}
	if len(f.Cells) != f.Size.W*f.Size.H {
		return Frame{}, fmt.Errorf("%w: %d cells for %dx%d", ErrBadFrame, len(f.Cells), f.Size.W, f.Size.H)
	}
	return f, nil
}
