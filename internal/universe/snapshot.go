package universe

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
)

const (
	magic   = "CAUV"
	version = 1

	// maxDim bounds the block size accepted from a snapshot.
	maxDim = 1 << 12
)

var (
	// ErrBadMagic is returned when the stream is not a universe snapshot.
	ErrBadMagic = errors.New("universe: not a universe snapshot")
	// ErrVersion is returned for snapshots written by a newer format.
	ErrVersion = errors.New("universe: unsupported snapshot version")
	// ErrCorrupt is returned when a snapshot field is out of range.
	ErrCorrupt = errors.New("universe: corrupt snapshot")
)

type encoder struct {
	w   io.Writer
	buf [binary.MaxVarintLen64]byte
	err error
}

func (e *encoder) uvarint(v uint64) {
	if e.err != nil {
		return
	}
	n := binary.PutUvarint(e.buf[:], v)
	_, e.err = e.w.Write(e.buf[:n])
}

func (e *encoder) varint(v int64) {
	if e.err != nil {
		return
	}
	n := binary.PutVarint(e.buf[:], v)
	_, e.err = e.w.Write(e.buf[:n])
}

func (e *encoder) position(p core.Position) {
	e.varint(int64(p.Block.X))
	e.varint(int64(p.Block.Y))
	e.varint(int64(p.Cell.X))
	e.varint(int64(p.Cell.Y))
}

// Write stores u as a snappy-framed stream of varints: block size, simulate
// options, initialisation options, then every block with its current states.
func Write(w io.Writer, u *Universe) error {
	sw := snappy.NewBufferedWriter(w)
	e := &encoder{w: sw}
	if _, err := io.WriteString(sw, magic); err != nil {
		return err
	}
	e.uvarint(version)
	e.uvarint(uint64(u.Store.Dim()))
	e.uvarint(uint64(u.Store.Buckets()))

	e.uvarint(uint64(u.Options.Border.Type))
	e.position(u.Options.Border.Min)
	e.position(u.Options.Border.Max)
	mark := uint64(0)
	if u.Options.MarkUnresolved {
		mark = 1
	}
	e.uvarint(mark)
	e.uvarint(uint64(u.Options.MaxBlocks))

	e.uvarint(uint64(u.Init.Type))
	e.uvarint(uint64(len(u.Init.States)))
	for _, s := range u.Init.States {
		e.uvarint(uint64(s))
	}

	e.uvarint(uint64(u.Store.Len()))
	for b := range u.Store.All() {
		e.varint(int64(b.Position.X))
		e.varint(int64(b.Position.Y))
		for _, s := range b.Cells {
			e.uvarint(uint64(s))
		}
	}
	if e.err != nil {
		return fmt.Errorf("universe: write: %w", e.err)
	}
	return sw.Close()
}

type decoder struct {
	r   *bufio.Reader
	err error
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, err := binary.ReadUvarint(d.r)
	if err != nil {
		d.err = err
	}
	return v
}

func (d *decoder) varint() int64 {
	if d.err != nil {
		return 0
	}
	v, err := binary.ReadVarint(d.r)
	if err != nil {
		d.err = err
	}
	return v
}

// bounded reads a uvarint and fails the decode if it exceeds limit.
func (d *decoder) bounded(what string, limit uint64) uint64 {
	v := d.uvarint()
	if d.err == nil && v > limit {
		d.err = fmt.Errorf("%w: %s %d exceeds %d", ErrCorrupt, what, v, limit)
	}
	return v
}

func (d *decoder) coord() int32 {
	v := d.varint()
	if d.err == nil && (v < -1<<31 || v > 1<<31-1) {
		d.err = fmt.Errorf("%w: coordinate %d", ErrCorrupt, v)
	}
	return int32(v)
}

func (d *decoder) position() core.Position {
	var p core.Position
	p.Block.X = d.coord()
	p.Block.Y = d.coord()
	p.Cell.X = d.coord()
	p.Cell.Y = d.coord()
	return p
}

// Read loads a universe written by Write.
func Read(r io.Reader) (*Universe, error) {
	br := bufio.NewReader(snappy.NewReader(r))
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, fmt.Errorf("universe: read header: %w", err)
	}
	if string(head) != magic {
		return nil, ErrBadMagic
	}
	d := &decoder{r: br}
	if v := d.uvarint(); d.err == nil && v != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	dim := d.bounded("block size", maxDim)
	buckets := d.bounded("bucket count", 1<<24)

	var u Universe
	u.Options.Border.Type = border.Type(d.bounded("border type", uint64(border.Torus)))
	u.Options.Border.Min = d.position()
	u.Options.Border.Max = d.position()
	u.Options.MarkUnresolved = d.bounded("mark unresolved", 1) == 1
	u.Options.MaxBlocks = int(d.bounded("max blocks", 1<<31-1))

	u.Init.Type = blocks.InitType(d.bounded("init type", uint64(blocks.InitRandom)))
	n := d.bounded("init states", 1<<16)
	for i := uint64(0); i < n && d.err == nil; i++ {
		u.Init.States = append(u.Init.States, core.CellState(d.bounded("state", 1<<32-1)))
	}
	if d.err != nil {
		return nil, fmt.Errorf("universe: read options: %w", d.err)
	}
	if dim == 0 {
		return nil, fmt.Errorf("%w: block size 0", ErrCorrupt)
	}
	u.Store = blocks.NewWithBuckets(int(dim), int(buckets))

	count := d.uvarint()
	for i := uint64(0); i < count && d.err == nil; i++ {
		pos := core.Vec2{X: d.coord(), Y: d.coord()}
		if d.err != nil {
			break
		}
		b, created := u.Store.CreateUninitialised(pos)
		if !created {
			return nil, fmt.Errorf("%w: block %v repeated", ErrCorrupt, pos)
		}
		for j := range b.Cells {
			b.Cells[j] = core.CellState(d.bounded("state", 1<<32-1))
		}
		copy(b.Previous, b.Cells)
	}
	if d.err != nil {
		if errors.Is(d.err, io.EOF) {
			d.err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("universe: read blocks: %w", d.err)
	}
	return &u, nil
}

// Save writes u to the named file.
func Save(path string, u *Universe) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, u); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a universe from the named file.
func Load(path string) (*Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
