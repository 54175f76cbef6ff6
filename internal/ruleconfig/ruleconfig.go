// Package ruleconfig reads and writes rule and universe descriptions as YAML.
//
// Pattern cells are written as whitespace separated tokens, one per
// neighbourhood input in input order:
//
//	*          any state
//	Alive      the state Alive
//	A|B        A or B
//	!A|B       anything but A or B
//	(A|B)      an OR cell: at least one OR cell of the pattern must hold A or B
package ruleconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ca-sandbox/internal/blocks"
	"ca-sandbox/internal/border"
	"ca-sandbox/internal/core"
	"ca-sandbox/internal/neighbourhood"
	"ca-sandbox/internal/rule"
	"ca-sandbox/internal/sandbox"
	"ca-sandbox/internal/universe"
)

// ErrBadToken is returned for a pattern cell token that cannot be parsed.
var ErrBadToken = errors.New("ruleconfig: bad pattern token")

// Document is the YAML layout of a rule file with an optional universe.
type Document struct {
	Neighbourhood Neighbourhood `yaml:"neighbourhood"`
	States        []string      `yaml:"states"`
	NullStates    []string      `yaml:"null_states,omitempty"`
	Patterns      []PatternDoc  `yaml:"patterns"`
	Universe      *UniverseDoc  `yaml:"universe,omitempty"`
}

// Neighbourhood names the shape and radius.
type Neighbourhood struct {
	Shape  string `yaml:"shape"`
	Radius uint32 `yaml:"radius"`
}

// PatternDoc is one rule pattern.
type PatternDoc struct {
	Comment string    `yaml:"comment,omitempty"`
	Cells   string    `yaml:"cells"`
	Result  string    `yaml:"result"`
	Count   *CountDoc `yaml:"count,omitempty"`
}

// CountDoc is a count-matching constraint.
type CountDoc struct {
	States []string `yaml:"states"`
	Op     string   `yaml:"op"`
	N      uint32   `yaml:"n"`
}

// UniverseDoc describes the block size, border and initialisation of a new
// universe. Cell contents are stored in snapshots, not here.
type UniverseDoc struct {
	BlockDim int        `yaml:"block_dim"`
	Border   BorderDoc  `yaml:"border"`
	Init     InitDoc    `yaml:"init"`
	Options  OptionsDoc `yaml:"options,omitempty"`
}

// BorderDoc holds a border type and its corners as [block x, block y, cell x,
// cell y].
type BorderDoc struct {
	Type string   `yaml:"type"`
	Min  [4]int32 `yaml:"min,flow"`
	Max  [4]int32 `yaml:"max,flow"`
}

// InitDoc names the initialisation type and its states.
type InitDoc struct {
	Type   string   `yaml:"type"`
	States []string `yaml:"states,flow"`
}

// OptionsDoc holds the remaining simulate options.
type OptionsDoc struct {
	MarkUnresolved bool `yaml:"mark_unresolved,omitempty"`
	MaxBlocks      int  `yaml:"max_blocks,omitempty"`
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("ruleconfig: %w", err)
	}
	return &doc, nil
}

// Read decodes a YAML document from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadFile decodes the named file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Marshal encodes doc as YAML.
func (doc *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Configuration converts the document into a validated rule configuration.
func (doc *Document) Configuration() (*rule.Configuration, error) {
	shape, err := neighbourhood.ParseShape(doc.Neighbourhood.Shape)
	if err != nil {
		return nil, err
	}
	states, err := rule.NewNamedStates(doc.States...)
	if err != nil {
		return nil, err
	}
	cfg := &rule.Configuration{Shape: shape, Radius: doc.Neighbourhood.Radius, States: states}
	if cfg.NullStates, err = lookupAll(states, doc.NullStates); err != nil {
		return nil, fmt.Errorf("null_states: %w", err)
	}
	for i, pd := range doc.Patterns {
		p, err := pd.pattern(states)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		cfg.Patterns = append(cfg.Patterns, p)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func lookupAll(states rule.NamedStates, names []string) ([]core.CellState, error) {
	out := make([]core.CellState, 0, len(names))
	for _, n := range names {
		v, ok := states.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", rule.ErrUnknownState, n)
		}
		out = append(out, v)
	}
	return out, nil
}

func group(states rule.NamedStates, names []string) (rule.StateGroup, error) {
	vals, err := lookupAll(states, names)
	if err != nil {
		return rule.StateGroup{}, err
	}
	return rule.NewStateGroup(vals...)
}

func (pd PatternDoc) pattern(states rule.NamedStates) (rule.Pattern, error) {
	var p rule.Pattern
	p.Comment = pd.Comment
	result, ok := states.Lookup(pd.Result)
	if !ok {
		return p, fmt.Errorf("result: %w: %q", rule.ErrUnknownState, pd.Result)
	}
	p.Result = result
	for _, tok := range strings.Fields(pd.Cells) {
		cell, err := ParseToken(states, tok)
		if err != nil {
			return p, err
		}
		p.Cells = append(p.Cells, cell)
	}
	if pd.Count != nil {
		g, err := group(states, pd.Count.States)
		if err != nil {
			return p, fmt.Errorf("count: %w", err)
		}
		op, err := rule.ParseComparisonOp(pd.Count.Op)
		if err != nil {
			return p, fmt.Errorf("count: %w", err)
		}
		p.Count = rule.CountMatching{Enabled: true, Group: g, Op: op, Threshold: pd.Count.N}
	}
	return p, nil
}

// ParseToken parses one pattern cell token.
func ParseToken(states rule.NamedStates, tok string) (rule.PatternCell, error) {
	if tok == "*" {
		return rule.Any(), nil
	}
	kind := rule.State
	body := tok
	switch {
	case strings.HasPrefix(tok, "!"):
		kind, body = rule.NotState, tok[1:]
	case strings.HasPrefix(tok, "(") && strings.HasSuffix(tok, ")") && len(tok) > 2:
		kind, body = rule.OrState, tok[1:len(tok)-1]
	}
	if body == "" {
		return rule.PatternCell{}, fmt.Errorf("%w: %q", ErrBadToken, tok)
	}
	g, err := group(states, strings.Split(body, "|"))
	if err != nil {
		return rule.PatternCell{}, fmt.Errorf("%w %q: %w", ErrBadToken, tok, err)
	}
	return rule.PatternCell{Kind: kind, Group: g}, nil
}

// FormatToken renders a pattern cell in the token syntax read by ParseToken.
func FormatToken(states rule.NamedStates, c rule.PatternCell) string {
	if c.Kind == rule.Wildcard {
		return "*"
	}
	names := make([]string, 0, c.Group.Len())
	for _, s := range c.Group.States() {
		names = append(names, states.Name(s))
	}
	body := strings.Join(names, "|")
	switch c.Kind {
	case rule.NotState:
		return "!" + body
	case rule.OrState:
		return "(" + body + ")"
	}
	return body
}

// FromConfiguration builds a document for cfg. Pattern cells are laid out
// one neighbourhood row per line.
func FromConfiguration(cfg *rule.Configuration) *Document {
	doc := &Document{
		Neighbourhood: Neighbourhood{Shape: cfg.Shape.String(), Radius: cfg.Radius},
		States:        cfg.States.Names(),
	}
	for _, s := range cfg.NullStates {
		doc.NullStates = append(doc.NullStates, cfg.States.Name(s))
	}
	for _, p := range cfg.Patterns {
		doc.Patterns = append(doc.Patterns, patternDoc(cfg, p))
	}
	return doc
}

func patternDoc(cfg *rule.Configuration, p rule.Pattern) PatternDoc {
	pd := PatternDoc{Comment: p.Comment, Result: cfg.States.Name(p.Result)}
	var sb strings.Builder
	deltas := neighbourhood.Deltas(cfg.Shape, cfg.Radius)
	for i, c := range p.Cells {
		if i > 0 {
			if i < len(deltas) && deltas[i].Y != deltas[i-1].Y {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(FormatToken(cfg.States, c))
	}
	pd.Cells = sb.String()
	if p.Count.Enabled {
		cd := &CountDoc{Op: p.Count.Op.String(), N: p.Count.Threshold}
		for _, s := range p.Count.Group.States() {
			cd.States = append(cd.States, cfg.States.Name(s))
		}
		pd.Count = cd
	}
	return pd
}

// NewUniverse builds an empty universe as described by the document. It
// returns universe.New defaults when the document has no universe section.
func (doc *Document) NewUniverse(states rule.NamedStates) (*universe.Universe, error) {
	ud := doc.Universe
	if ud == nil {
		return universe.New(blocks.DefaultDim), nil
	}
	dim := ud.BlockDim
	if dim <= 0 {
		dim = blocks.DefaultDim
	}
	u := universe.New(dim)
	typ, err := border.ParseType(ud.Border.Type)
	if err != nil {
		return nil, err
	}
	u.Options.Border = border.Border{Type: typ, Min: corner(ud.Border.Min), Max: corner(ud.Border.Max)}
	if err := u.Options.Border.Validate(int32(dim)); err != nil {
		return nil, err
	}
	u.Options.MarkUnresolved = ud.Options.MarkUnresolved
	if ud.Options.MaxBlocks > 0 {
		u.Options.MaxBlocks = ud.Options.MaxBlocks
	}
	if ud.Init.Type != "" {
		if u.Init.Type, err = blocks.ParseInitType(ud.Init.Type); err != nil {
			return nil, err
		}
	}
	if len(ud.Init.States) > 0 {
		if u.Init.States, err = lookupAll(states, ud.Init.States); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}
	return u, nil
}

func corner(v [4]int32) core.Position {
	return core.Position{Block: core.Vec2{X: v[0], Y: v[1]}, Cell: core.Vec2{X: v[2], Y: v[3]}}
}

// DescribeUniverse returns the universe section for u.
func DescribeUniverse(u *universe.Universe, states rule.NamedStates) *UniverseDoc {
	b := u.Options.Border
	ud := &UniverseDoc{
		BlockDim: int(u.Store.Dim()),
		Border: BorderDoc{
			Type: b.Type.String(),
			Min:  [4]int32{b.Min.Block.X, b.Min.Block.Y, b.Min.Cell.X, b.Min.Cell.Y},
			Max:  [4]int32{b.Max.Block.X, b.Max.Block.Y, b.Max.Cell.X, b.Max.Cell.Y},
		},
		Init:    InitDoc{Type: u.Init.Type.String()},
		Options: OptionsDoc{MarkUnresolved: u.Options.MarkUnresolved, MaxBlocks: u.Options.MaxBlocks},
	}
	for _, s := range u.Init.States {
		ud.Init.States = append(ud.Init.States, states.Name(s))
	}
	return ud
}

// Sandbox compiles the document into a running sandbox. The universe section,
// when present, overrides cfg's block size and border.
func (doc *Document) Sandbox(name string, cfg sandbox.Config, logger *log.Logger) (*sandbox.Sandbox, error) {
	rc, err := doc.Configuration()
	if err != nil {
		return nil, err
	}
	if doc.Universe == nil {
		return sandbox.New(name, rc, cfg, nil, logger)
	}
	u, err := doc.NewUniverse(rc.States)
	if err != nil {
		return nil, err
	}
	return sandbox.NewWithUniverse(name, rc, u, cfg, nil, logger)
}
