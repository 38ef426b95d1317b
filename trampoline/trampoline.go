// Package trampoline holds the native side of generated bindings: the Go functions
// the managed runtime calls through extern declarations, the handles passed to
// them, and the session that collects them until they are handed to a runtime.
package trampoline

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrDuplicateName is matched by every *DuplicateNameError.
	ErrDuplicateName = errors.New("trampoline: duplicate name")
	ErrNotFunc       = errors.New("trampoline: implementation is not a function")
	ErrEmptyName     = errors.New("trampoline: empty name")
)

// DuplicateNameError reports a second trampoline registered under a taken name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("trampoline: duplicate name %q", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// Signature is the Go parameter and result list of a trampoline.
type Signature struct {
	Params  []reflect.Type
	Results []reflect.Type
}

// SignatureOf returns the signature of the function type ft.
func SignatureOf(ft reflect.Type) (Signature, error) {
	if ft == nil || ft.Kind() != reflect.Func || ft.IsVariadic() {
		return Signature{}, fmt.Errorf("%w: %v", ErrNotFunc, ft)
	}
	sig := Signature{
		Params:  make([]reflect.Type, ft.NumIn()),
		Results: make([]reflect.Type, ft.NumOut()),
	}
	for i := range sig.Params {
		sig.Params[i] = ft.In(i)
	}
	for i := range sig.Results {
		sig.Results[i] = ft.Out(i)
	}
	return sig, nil
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteString("func(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	switch len(s.Results) {
	case 0:
	case 1:
		b.WriteByte(' ')
		b.WriteString(s.Results[0].String())
	default:
		b.WriteString(" (")
		for i, r := range s.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Trampoline is a named native function callable from generated glue.
type Trampoline struct {
	Name string
	Sig  Signature
	Fn   any
}

// New builds a Trampoline from a Go function value.
func New(name string, fn any) (Trampoline, error) {
	if name == "" {
		return Trampoline{}, ErrEmptyName
	}
	sig, err := SignatureOf(reflect.TypeOf(fn))
	if err != nil {
		return Trampoline{}, fmt.Errorf("trampoline %q: %w", name, err)
	}
	if reflect.ValueOf(fn).IsNil() {
		return Trampoline{}, fmt.Errorf("trampoline %q: %w: nil function", name, ErrNotFunc)
	}
	return Trampoline{Name: name, Sig: sig, Fn: fn}, nil
}

// Getter and Setter build the conventional accessor names.
func Getter(member string) string { return "get_" + member }
func Setter(member string) string { return "set_" + member }
