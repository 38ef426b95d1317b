// Package layout describes where fields live inside Go structs that are exposed to
// C# with explicit layout. Offsets are read from reflect; no instance of the owning
// struct is ever created.
package layout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrNotStruct = errors.New("layout: owner is not a struct")
	ErrNoField   = errors.New("layout: no such field")
	// ErrIndirect is returned when a field path passes through a pointer, which has no
	// fixed offset inside the owner.
	ErrIndirect = errors.New("layout: field path crosses a pointer")
)

// Field is a resolved field path.
type Field struct {
	Owner  reflect.Type
	Path   string
	Type   reflect.Type
	Offset uintptr
}

// End returns the offset one past the last byte of the field.
func (f Field) End() uintptr {
	return f.Offset + f.Type.Size()
}

// Resolve finds the field addressed by path inside owner. Path segments are
// separated by dots and may name promoted fields of embedded structs.
func Resolve(owner reflect.Type, path string) (Field, error) {
	if owner == nil || owner.Kind() != reflect.Struct {
		return Field{}, fmt.Errorf("%w: %v", ErrNotStruct, owner)
	}
	if path == "" {
		return Field{}, fmt.Errorf("%w: empty path in %s", ErrNoField, owner)
	}

	cur := owner
	var off uintptr
	for _, seg := range strings.Split(path, ".") {
		if cur.Kind() != reflect.Struct {
			return Field{}, fmt.Errorf("%w: %q in %s (%s is not a struct)", ErrNoField, path, owner, cur)
		}
		sf, ok := cur.FieldByName(seg)
		if !ok {
			return Field{}, fmt.Errorf("%w: %q in %s", ErrNoField, path, owner)
		}
		// Walk the index path so promoted fields add the offsets of their embedders.
		t := cur
		for i, idx := range sf.Index {
			if t.Kind() == reflect.Pointer {
				return Field{}, fmt.Errorf("%w: %q in %s", ErrIndirect, path, owner)
			}
			f := t.Field(idx)
			off += f.Offset
			t = f.Type
			if i < len(sf.Index)-1 && t.Kind() == reflect.Pointer {
				return Field{}, fmt.Errorf("%w: %q in %s", ErrIndirect, path, owner)
			}
		}
		cur = sf.Type
	}

	return Field{Owner: owner, Path: path, Type: cur, Offset: off}, nil
}

// Of resolves path inside T.
func Of[T any](path string) (Field, error) {
	return Resolve(reflect.TypeFor[T](), path)
}

// Fields lists the direct fields of owner in declaration order.
func Fields(owner reflect.Type) ([]Field, error) {
	if owner == nil || owner.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, owner)
	}
	out := make([]Field, 0, owner.NumField())
	for i := 0; i < owner.NumField(); i++ {
		f := owner.Field(i)
		out = append(out, Field{Owner: owner, Path: f.Name, Type: f.Type, Offset: f.Offset})
	}
	return out, nil
}

// PointerFree reports whether values of t can be copied as raw bytes without
// hiding Go pointers from the garbage collector.
func PointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || PointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !PointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
