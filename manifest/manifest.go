// Package manifest describes one generation session in a machine-readable form:
// the type table, the emitted blocks and members, and the trampoline set with its
// fingerprint. A runtime host can compare the fingerprint against the trampolines
// it actually registers to catch glue generated from a different binding set.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/monobind/emitter"
)

// Manifest is the serialized description of a session.
type Manifest struct {
	Tool        string       `json:"tool" yaml:"tool" toml:"tool"`
	Version     string       `json:"version" yaml:"version" toml:"version"`
	Fingerprint string       `json:"fingerprint" yaml:"fingerprint" toml:"fingerprint"`
	Types       []Type       `json:"types" yaml:"types" toml:"types"`
	Blocks      []Block      `json:"blocks" yaml:"blocks" toml:"blocks"`
	Trampolines []Trampoline `json:"trampolines" yaml:"trampolines" toml:"trampolines"`
}

type Type struct {
	GoType string `json:"goType" yaml:"goType" toml:"goType"`
	Name   string `json:"name" yaml:"name" toml:"name"`
}

type Block struct {
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Kind    string   `json:"kind" yaml:"kind" toml:"kind"`
	GoType  string   `json:"goType" yaml:"goType" toml:"goType"`
	Members []Member `json:"members" yaml:"members" toml:"members"`
}

type Member struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	Kind   string `json:"kind" yaml:"kind" toml:"kind"`
	Type   string `json:"type" yaml:"type" toml:"type"`
	Field  string `json:"field,omitempty" yaml:"field,omitempty" toml:"field,omitempty"`
	Offset int64  `json:"offset" yaml:"offset" toml:"offset"` // -1 for properties
	Getter string `json:"getter,omitempty" yaml:"getter,omitempty" toml:"getter,omitempty"`
	Setter string `json:"setter,omitempty" yaml:"setter,omitempty" toml:"setter,omitempty"`
}

type Trampoline struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Signature string `json:"signature" yaml:"signature" toml:"signature"`
}

// FromEmitter snapshots e.
func FromEmitter(e *emitter.Emitter, version string) *Manifest {
	m := &Manifest{
		Tool:        "monobind",
		Version:     version,
		Fingerprint: e.Session().Fingerprint(),
	}
	for _, entry := range e.Types().Entries() {
		m.Types = append(m.Types, Type{GoType: entry.Type.String(), Name: entry.Name})
	}
	for _, b := range e.Blocks() {
		mb := Block{Name: b.Name, Kind: b.Kind.String(), GoType: b.GoType.String()}
		for _, mem := range b.Members {
			mb.Members = append(mb.Members, Member{
				Name:   mem.Name,
				Kind:   string(mem.Kind),
				Type:   mem.Type,
				Field:  mem.Field,
				Offset: mem.Offset,
				Getter: mem.Getter,
				Setter: mem.Setter,
			})
		}
		m.Blocks = append(m.Blocks, mb)
	}
	for _, t := range e.Session().Trampolines() {
		m.Trampolines = append(m.Trampolines, Trampoline{Name: t.Name, Signature: t.Sig.String()})
	}
	return m
}

// NormalizeFormat maps user spellings to json, yaml or toml, or "" if unknown.
func NormalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// FormatOf derives the format from a file extension, defaulting to json.
func FormatOf(path string) string {
	if f := NormalizeFormat(strings.TrimPrefix(filepath.Ext(path), ".")); f != "" {
		return f
	}
	return "json"
}

func (m *Manifest) Marshal(format string) ([]byte, error) {
	switch NormalizeFormat(format) {
	case "json":
		return json.MarshalIndent(m, "", "  ")
	case "yaml":
		return yaml.Marshal(m)
	case "toml":
		return toml.Marshal(m)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", format)
	}
}

func Unmarshal(format string, data []byte) (*Manifest, error) {
	m := &Manifest{}
	var err error
	switch NormalizeFormat(format) {
	case "json":
		err = json.Unmarshal(data, m)
	case "yaml":
		err = yaml.Unmarshal(data, m)
	case "toml":
		err = toml.Unmarshal(data, m)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s manifest: %w", format, err)
	}
	return m, nil
}

// Write stores m at path in the format implied by its extension.
func Write(path string, m *Manifest) error {
	data, err := m.Marshal(FormatOf(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Unmarshal(FormatOf(path), data)
}

// Diff lists trampoline names present in only one of a and b.
func Diff(a, b *Manifest) (onlyA, onlyB []string) {
	inB := make(map[string]bool, len(b.Trampolines))
	for _, t := range b.Trampolines {
		inB[t.Name] = true
	}
	inA := make(map[string]bool, len(a.Trampolines))
	for _, t := range a.Trampolines {
		inA[t.Name] = true
		if !inB[t.Name] {
			onlyA = append(onlyA, t.Name)
		}
	}
	for _, t := range b.Trampolines {
		if !inA[t.Name] {
			onlyB = append(onlyB, t.Name)
		}
	}
	return onlyA, onlyB
}

// DiffBlocks describes every difference between the blocks of a and b that shows
// up in generated C#: block names and kinds, member names, kinds, C# types,
// offsets and accessor names. Go field paths and Go type names are ignored.
func DiffBlocks(a, b *Manifest) []string {
	var out []string
	inB := make(map[string]Block, len(b.Blocks))
	for _, blk := range b.Blocks {
		inB[blk.Name] = blk
	}
	inA := make(map[string]bool, len(a.Blocks))
	for _, ba := range a.Blocks {
		inA[ba.Name] = true
		bb, ok := inB[ba.Name]
		if !ok {
			out = append(out, fmt.Sprintf("block %s removed", ba.Name))
			continue
		}
		if ba.Kind != bb.Kind {
			out = append(out, fmt.Sprintf("block %s: kind %s -> %s", ba.Name, ba.Kind, bb.Kind))
		}
		out = append(out, diffMembers(ba, bb)...)
	}
	for _, bb := range b.Blocks {
		if !inA[bb.Name] {
			out = append(out, fmt.Sprintf("block %s added", bb.Name))
		}
	}
	return out
}

func diffMembers(a, b Block) []string {
	var out []string
	inB := make(map[string]Member, len(b.Members))
	for _, m := range b.Members {
		inB[m.Name] = m
	}
	inA := make(map[string]bool, len(a.Members))
	for _, ma := range a.Members {
		inA[ma.Name] = true
		mb, ok := inB[ma.Name]
		if !ok {
			out = append(out, fmt.Sprintf("member %s.%s removed", a.Name, ma.Name))
			continue
		}
		if ma.Kind != mb.Kind {
			out = append(out, fmt.Sprintf("member %s.%s: kind %s -> %s", a.Name, ma.Name, ma.Kind, mb.Kind))
		}
		if ma.Type != mb.Type {
			out = append(out, fmt.Sprintf("member %s.%s: type %s -> %s", a.Name, ma.Name, ma.Type, mb.Type))
		}
		if ma.Offset != mb.Offset {
			out = append(out, fmt.Sprintf("member %s.%s: offset %d -> %d", a.Name, ma.Name, ma.Offset, mb.Offset))
		}
		if ma.Getter != mb.Getter || ma.Setter != mb.Setter {
			out = append(out, fmt.Sprintf("member %s.%s: accessors %q/%q -> %q/%q",
				a.Name, ma.Name, ma.Getter, ma.Setter, mb.Getter, mb.Setter))
		}
	}
	for _, mb := range b.Members {
		if !inA[mb.Name] {
			out = append(out, fmt.Sprintf("member %s.%s added", a.Name, mb.Name))
		}
	}
	return out
}
