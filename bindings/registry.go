// Package bindings keeps the process-wide table of named binding sets. A binding
// set describes a group of Go types to an emitter; packages register theirs from
// init functions and the CLI looks them up by name.
package bindings

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Alia5/monobind/emitter"
)

// Set describes Go types to an emitter.
type Set interface {
	// Name is the lookup key. It is case-insensitive.
	Name() string
	Description() string
	// Describe emits every block of the set into e.
	Describe(e *emitter.Emitter) error
}

type funcSet struct {
	name, desc string
	fn         func(e *emitter.Emitter) error
}

func (s funcSet) Name() string                      { return s.name }
func (s funcSet) Description() string               { return s.desc }
func (s funcSet) Describe(e *emitter.Emitter) error { return s.fn(e) }

// NewSet wraps fn as a Set.
func NewSet(name, description string, fn func(e *emitter.Emitter) error) Set {
	return funcSet{name: name, desc: description, fn: fn}
}

var (
	sets   = make(map[string]Set)
	setsMu sync.RWMutex
)

// Register adds s to the table. Registering a second set under the same name is a
// programming error and panics.
func Register(s Set) {
	setsMu.Lock()
	defer setsMu.Unlock()
	key := strings.ToLower(s.Name())
	if _, ok := sets[key]; ok {
		panic(fmt.Sprintf("bindings: set %q registered twice", s.Name()))
	}
	sets[key] = s
}

// Get returns the set registered under name, or nil.
func Get(name string) Set {
	setsMu.RLock()
	defer setsMu.RUnlock()
	return sets[strings.ToLower(name)]
}

// List returns all registered sets sorted by name.
func List() []Set {
	setsMu.RLock()
	defer setsMu.RUnlock()
	out := make([]Set, 0, len(sets))
	for _, s := range sets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name()) < strings.ToLower(out[j].Name())
	})
	return out
}

// Resolve returns the sets named in names, or every set when names is empty.
func Resolve(names []string) ([]Set, error) {
	if len(names) == 0 {
		all := List()
		if len(all) == 0 {
			return nil, fmt.Errorf("no binding sets are registered")
		}
		return all, nil
	}
	out := make([]Set, 0, len(names))
	for _, n := range names {
		s := Get(n)
		if s == nil {
			var known []string
			for _, k := range List() {
				known = append(known, k.Name())
			}
			return nil, fmt.Errorf("unknown binding set '%s' (registered: %v)", n, known)
		}
		out = append(out, s)
	}
	return out, nil
}

// DescribeAll runs every set against e in order.
func DescribeAll(e *emitter.Emitter, sets []Set) error {
	for _, s := range sets {
		if err := s.Describe(e); err != nil {
			return fmt.Errorf("describe binding set %s: %w", s.Name(), err)
		}
	}
	return nil
}
