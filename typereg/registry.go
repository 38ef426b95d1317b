// Package typereg maps Go type identities to the type names used in generated C#.
//
// A Registry is seeded with the fixed-width primitives, bool, and two flavors each
// of text and character. Further entries are added by the binding author before
// the types are used as member value types. The first name registered for a type
// wins; later registrations for the same type are ignored.
//
// Several Go types may project onto the same C# name (for example string and
// WString both become "string"). A Registry is not safe for concurrent use.
package typereg

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// ErrUnregisteredType is matched by every *UnregisteredTypeError.
var ErrUnregisteredType = errors.New("typereg: type was not registered before use")

// UnregisteredTypeError reports a lookup for a type that has no registered name.
type UnregisteredTypeError struct {
	Type reflect.Type
}

func (e *UnregisteredTypeError) Error() string {
	if e.Type == nil {
		return "typereg: nil type was not registered before use"
	}
	return fmt.Sprintf("typereg: type %s was not registered before use", e.Type)
}

func (e *UnregisteredTypeError) Is(target error) bool {
	return target == ErrUnregisteredType
}

// Char is an 8-bit native character. It is distinct from byte so that it can carry
// its own C# name.
type Char uint8

// WChar is a 16-bit native (UTF-16) character.
type WChar uint16

// WString is native text marshaled as UTF-16.
type WString string

// Entry is one registered mapping.
type Entry struct {
	Type reflect.Type
	Name string
}

// Registry maps reflect.Type to C# type names.
type Registry struct {
	names map[reflect.Type]string
}

// New returns a Registry seeded with the primitive table.
func New() *Registry {
	r := &Registry{names: make(map[reflect.Type]string)}
	for _, e := range primitives() {
		r.Register(e.Type, e.Name)
	}
	return r
}

func primitives() []Entry {
	nativeInt, nativeUint := "long", "ulong"
	if strconv.IntSize == 32 {
		nativeInt, nativeUint = "int", "uint"
	}
	return []Entry{
		{reflect.TypeFor[Char](), "byte"},
		{reflect.TypeFor[WChar](), "char"},
		{reflect.TypeFor[float32](), "float"},
		{reflect.TypeFor[float64](), "double"},
		{reflect.TypeFor[bool](), "bool"},
		{reflect.TypeFor[int8](), "sbyte"},
		{reflect.TypeFor[uint8](), "byte"},
		{reflect.TypeFor[int16](), "short"},
		{reflect.TypeFor[uint16](), "ushort"},
		{reflect.TypeFor[int32](), "int"},
		{reflect.TypeFor[uint32](), "uint"},
		{reflect.TypeFor[int64](), "long"},
		{reflect.TypeFor[uint64](), "ulong"},
		{reflect.TypeFor[int](), nativeInt},
		{reflect.TypeFor[uint](), nativeUint},
		{reflect.TypeFor[uintptr](), "UIntPtr"},
		{reflect.TypeFor[string](), "string"},
		{reflect.TypeFor[WString](), "string"},
	}
}

// Register associates t with name unless t already has a name.
// It reports whether a new entry was added.
func (r *Registry) Register(t reflect.Type, name string) bool {
	if t == nil || name == "" {
		return false
	}
	if _, ok := r.names[t]; ok {
		return false
	}
	r.names[t] = name
	return true
}

// Resolve returns the C# name of t or an *UnregisteredTypeError.
func (r *Registry) Resolve(t reflect.Type) (string, error) {
	if name, ok := r.Lookup(t); ok {
		return name, nil
	}
	return "", &UnregisteredTypeError{Type: t}
}

// Lookup returns the C# name of t if present.
func (r *Registry) Lookup(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := r.names[t]
	return name, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.names)
}

// Entries returns all mappings sorted by C# name, then by Go type string.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.names))
	for t, n := range r.names {
		out = append(out, Entry{Type: t, Name: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Type.String() < out[j].Type.String()
	})
	return out
}

// Add registers T under name.
func Add[T any](r *Registry, name string) bool {
	return r.Register(reflect.TypeFor[T](), name)
}

// NameOf resolves the C# name of T.
func NameOf[T any](r *Registry) (string, error) {
	return r.Resolve(reflect.TypeFor[T]())
}
