// Package emitter writes C# declarations for Go types exposed to an embedded Mono
// runtime and collects the Go trampolines those declarations call.
//
// Every accessor-backed member produces two artifacts at once: extern declarations
// in the text and trampolines in the session, under the same get_/set_ names.
// All type names, offsets and names are checked before anything is written, so a
// failed call leaves both the output and the session untouched.
//
// An Emitter describes one type block at a time:
//
//	e, _ := emitter.New(w)
//	_ = emitter.StructHeader[Vec3](e, "Vector3")
//	_ = emitter.StructField[float32](e, "x", "X")
//	_ = e.Footer()
//	_ = e.Commit(registrar)
//
// An Emitter is not safe for concurrent use.
package emitter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"text/template"

	"github.com/Alia5/monobind/layout"
	"github.com/Alia5/monobind/trampoline"
	"github.com/Alia5/monobind/typereg"
)

// Kind distinguishes value aggregates from reference aggregates.
type Kind int

const (
	// KindClass is a reference aggregate reached through an opaque handle.
	KindClass Kind = iota
	// KindStruct is a value aggregate with explicit field offsets.
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MemberKind names one of the eight member variants.
type MemberKind string

const (
	MemberStructField            MemberKind = "struct_field"
	MemberReadonlyStructField    MemberKind = "readonly_struct_field"
	MemberClassField             MemberKind = "class_field"
	MemberReadonlyClassField     MemberKind = "readonly_class_field"
	MemberClassProperty          MemberKind = "class_property"
	MemberReadonlyClassProperty  MemberKind = "readonly_class_property"
	MemberStructProperty         MemberKind = "struct_property"
	MemberReadonlyStructProperty MemberKind = "readonly_struct_property"
)

// Member records one emitted member.
type Member struct {
	Kind MemberKind
	Name string
	// Type is the resolved C# type name.
	Type string
	// Field is the Go field path for field variants.
	Field string
	// Offset is the byte offset for field variants, -1 otherwise.
	Offset int64
	Getter string
	Setter string
}

// Block records one emitted type.
type Block struct {
	Name    string
	Kind    Kind
	GoType  reflect.Type
	Members []Member
}

// Tracer observes every chunk written to the output.
type Tracer interface {
	Trace(block, member string, chunk []byte)
}

type Option func(*Emitter)

func WithLogger(l *slog.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithTracer(t Tracer) Option {
	return func(e *Emitter) { e.tracer = t }
}

// WithBanner prefixes the output with an auto-generated notice naming version.
func WithBanner(version string) Option {
	return func(e *Emitter) { e.banner = version }
}

// Emitter is one generation session.
type Emitter struct {
	out     io.Writer
	types   *typereg.Registry
	session *trampoline.Session
	logger  *slog.Logger
	tracer  Tracer
	banner  string

	blocks    []*Block
	open      *Block
	written   int64
	err       error
	committed bool
}

// New starts a session writing to w and emits the using prelude.
func New(w io.Writer, opts ...Option) (*Emitter, error) {
	e := &Emitter{
		out:     w,
		types:   typereg.New(),
		session: trampoline.NewSession(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	typereg.Add[trampoline.Handle](e.types, "IntPtr")

	var buf bytes.Buffer
	if err := preludeTmpl.Execute(&buf, struct{ Banner string }{e.banner}); err != nil {
		return nil, fmt.Errorf("render prelude: %w", err)
	}
	if err := e.write("", "prelude", buf.Bytes()); err != nil {
		return nil, err
	}
	return e, nil
}

// Types returns the session's type registry.
func (e *Emitter) Types() *typereg.Registry { return e.types }

// Session returns the collected trampolines.
func (e *Emitter) Session() *trampoline.Session { return e.session }

// Written returns the number of bytes written so far.
func (e *Emitter) Written() int64 { return e.written }

// Blocks returns copies of the blocks emitted so far, including an open one.
func (e *Emitter) Blocks() []Block {
	out := make([]Block, len(e.blocks))
	for i, b := range e.blocks {
		out[i] = *b
		out[i].Members = append([]Member(nil), b.Members...)
	}
	return out
}

// Register adds a type name without emitting a block for it.
func Register[T any](e *Emitter, name string) bool {
	return typereg.Add[T](e.types, name)
}

// ClassHeader opens a reference aggregate block for T.
func ClassHeader[T any](e *Emitter, name string) error {
	return e.header(reflect.TypeFor[T](), name, KindClass, classHeaderTmpl)
}

// StructHeader opens a value aggregate block for T, which must be a struct.
func StructHeader[T any](e *Emitter, name string) error {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("struct header %q: %w: %s", name, layout.ErrNotStruct, t)
	}
	return e.header(t, name, KindStruct, structHeaderTmpl)
}

func (e *Emitter) header(t reflect.Type, name string, kind Kind, tmpl *template.Template) error {
	if err := e.usable(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%s header: %w", kind, ErrEmptyName)
	}
	if e.open != nil {
		return fmt.Errorf("%s header %q: %w (%s)", kind, name, ErrBlockOpen, e.open.Name)
	}

	if registered, ok := e.types.Lookup(t); ok && registered != name {
		return fmt.Errorf("%s header %q: %w (%s is %s)", kind, name, ErrTypeRenamed, t, registered)
	}
	for _, b := range e.blocks {
		if b.GoType == t || b.Name == name {
			return fmt.Errorf("%s header %q: %w (%s %s for %s)", kind, name, ErrDuplicateBlock, b.Kind, b.Name, b.GoType)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Name string }{name}); err != nil {
		return fmt.Errorf("render %s header: %w", kind, err)
	}
	if err := e.write(name, "header", buf.Bytes()); err != nil {
		return err
	}
	e.types.Register(t, name)

	b := &Block{Name: name, Kind: kind, GoType: t}
	e.blocks = append(e.blocks, b)
	e.open = b
	e.logger.Debug("Opened type block", "kind", kind, "name", name, "type", t)
	return nil
}

// Footer closes the open block.
func (e *Emitter) Footer() error {
	if err := e.usable(); err != nil {
		return err
	}
	if e.open == nil {
		return fmt.Errorf("footer: %w", ErrNoBlock)
	}
	if err := e.write(e.open.Name, "footer", []byte(footerText)); err != nil {
		return err
	}
	e.logger.Debug("Closed type block", "name", e.open.Name, "members", len(e.open.Members))
	e.open = nil
	return nil
}

// Commit hands the collected trampolines to r. The session must have no open
// block and cannot emit anything afterwards.
func (e *Emitter) Commit(r trampoline.Registrar) error {
	if e.err != nil {
		return e.err
	}
	if e.open != nil {
		return fmt.Errorf("commit: %w (%s)", ErrBlockOpen, e.open.Name)
	}
	e.committed = true
	if err := e.session.Commit(r); err != nil {
		return err
	}
	e.logger.Info("Committed trampolines", "count", e.session.Len(), "fingerprint", e.session.Fingerprint())
	return nil
}

func (e *Emitter) usable() error {
	if e.err != nil {
		return e.err
	}
	if e.committed {
		return ErrCommitted
	}
	return nil
}

func (e *Emitter) write(block, member string, chunk []byte) error {
	n, err := e.out.Write(chunk)
	e.written += int64(n)
	if err == nil && n < len(chunk) {
		err = io.ErrShortWrite
	}
	if err != nil {
		e.err = &WriteError{Err: err}
		return e.err
	}
	if e.tracer != nil {
		e.tracer.Trace(block, member, chunk)
	}
	return nil
}

// memberPlan is everything a member emission needs, computed before any side effect.
type memberPlan struct {
	member      Member
	owner       string
	trampolines []trampoline.Trampoline
}

// emit runs the shared member pipeline: check state, plan, check names, render,
// write, then record.
func (e *Emitter) emit(kind MemberKind, want Kind, name string, plan func(b *Block) (memberPlan, error)) error {
	if err := e.usable(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%s: %w", kind, ErrEmptyName)
	}
	b := e.open
	if b == nil {
		return fmt.Errorf("%s %q: %w", kind, name, ErrNoBlock)
	}
	if b.Kind != want {
		return fmt.Errorf("%s %q in %s %s: %w", kind, name, b.Kind, b.Name, ErrWrongBlockKind)
	}

	p, err := plan(b)
	if err != nil {
		return fmt.Errorf("%s %s.%s: %w", kind, b.Name, name, err)
	}
	p.member.Kind = kind
	p.member.Name = name

	names := make([]string, len(p.trampolines))
	for i, t := range p.trampolines {
		names[i] = t.Name
	}
	if err := e.session.Check(names...); err != nil {
		return fmt.Errorf("%s %s.%s: %w", kind, b.Name, name, err)
	}

	data := struct {
		Member
		Owner string
	}{p.member, p.owner}
	var buf bytes.Buffer
	if err := memberTemplates[kind].Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s %s.%s: %w", kind, b.Name, name, err)
	}
	if err := e.write(b.Name, name, buf.Bytes()); err != nil {
		return err
	}
	if err := e.session.Add(p.trampolines...); err != nil {
		// Check passed above and nothing else touches the session.
		e.err = err
		return err
	}

	b.Members = append(b.Members, p.member)
	e.logger.Debug("Emitted member",
		"block", b.Name,
		"member", name,
		"kind", kind,
		"type", p.member.Type,
		"trampolines", len(p.trampolines))
	return nil
}

func newTrampolines(pairs ...any) ([]trampoline.Trampoline, error) {
	out := make([]trampoline.Trampoline, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		t, err := trampoline.New(pairs[i].(string), pairs[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
