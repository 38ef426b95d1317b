package trampoline

import (
	"fmt"
	"reflect"
	"sort"
)

// MapRegistrar is an in-memory Registrar. It is what tests and dry runs commit to.
type MapRegistrar struct {
	funcs map[string]Trampoline
	order []string
}

func NewMapRegistrar() *MapRegistrar {
	return &MapRegistrar{funcs: make(map[string]Trampoline)}
}

func (m *MapRegistrar) Register(t Trampoline) error {
	if t.Name == "" {
		return ErrEmptyName
	}
	if _, ok := m.funcs[t.Name]; ok {
		return &DuplicateNameError{Name: t.Name}
	}
	m.funcs[t.Name] = t
	m.order = append(m.order, t.Name)
	return nil
}

func (m *MapRegistrar) Lookup(name string) (Trampoline, bool) {
	t, ok := m.funcs[name]
	return t, ok
}

// Names returns the registered names in registration order.
func (m *MapRegistrar) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// SortedNames returns the registered names in lexical order.
func (m *MapRegistrar) SortedNames() []string {
	out := m.Names()
	sort.Strings(out)
	return out
}

func (m *MapRegistrar) Len() int { return len(m.funcs) }

// Call invokes the trampoline registered under name the way a runtime would,
// through reflection.
func (m *MapRegistrar) Call(name string, args ...any) ([]any, error) {
	t, ok := m.funcs[name]
	if !ok {
		return nil, fmt.Errorf("trampoline %q is not registered", name)
	}
	if len(args) != len(t.Sig.Params) {
		return nil, fmt.Errorf("trampoline %q: want %d arguments, got %d", name, len(t.Sig.Params), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		v := reflect.ValueOf(a)
		if !v.IsValid() || !v.Type().AssignableTo(t.Sig.Params[i]) {
			return nil, fmt.Errorf("trampoline %q: argument %d: want %s, got %T", name, i, t.Sig.Params[i], a)
		}
		in[i] = v
	}
	outs := reflect.ValueOf(t.Fn).Call(in)
	res := make([]any, len(outs))
	for i, o := range outs {
		res[i] = o.Interface()
	}
	return res, nil
}
