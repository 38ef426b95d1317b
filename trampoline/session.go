package trampoline

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// ErrCommitted is returned when a session is modified or committed a second time.
var ErrCommitted = errors.New("trampoline: session already committed")

// Registrar accepts trampolines on behalf of an embedded runtime. Implementations
// must reject duplicate names with a *DuplicateNameError.
type Registrar interface {
	Register(t Trampoline) error
}

// Session collects the trampolines of one generation run. Nothing reaches a
// runtime until Commit hands over the complete set, in the order it was added.
type Session struct {
	list      []Trampoline
	names     map[string]int
	committed bool
}

func NewSession() *Session {
	return &Session{names: make(map[string]int)}
}

// Check reports whether all names are free, without changing the session.
func (s *Session) Check(names ...string) error {
	if s.committed {
		return ErrCommitted
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return ErrEmptyName
		}
		if _, ok := s.names[n]; ok {
			return &DuplicateNameError{Name: n}
		}
		if _, ok := seen[n]; ok {
			return &DuplicateNameError{Name: n}
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Add appends ts. Either all of them are added or none are.
func (s *Session) Add(ts ...Trampoline) error {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	if err := s.Check(names...); err != nil {
		return err
	}
	for _, t := range ts {
		s.names[t.Name] = len(s.list)
		s.list = append(s.list, t)
	}
	return nil
}

// Lookup returns the trampoline registered under name.
func (s *Session) Lookup(name string) (Trampoline, bool) {
	i, ok := s.names[name]
	if !ok {
		return Trampoline{}, false
	}
	return s.list[i], true
}

// Trampolines returns a copy of the collected set in insertion order.
func (s *Session) Trampolines() []Trampoline {
	out := make([]Trampoline, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Session) Len() int { return len(s.list) }

func (s *Session) Committed() bool { return s.committed }

// Commit registers every trampoline with r. The first registrar error stops the
// commit and is returned; the session is spent either way.
func (s *Session) Commit(r Registrar) error {
	if s.committed {
		return ErrCommitted
	}
	s.committed = true
	for _, t := range s.list {
		if err := r.Register(t); err != nil {
			return fmt.Errorf("register trampoline %q: %w", t.Name, err)
		}
	}
	return nil
}

// Fingerprint hashes the sorted name and signature of every trampoline. Generated
// glue and a runtime agree on their bindings when their fingerprints match.
func (s *Session) Fingerprint() string {
	lines := make([]string, len(s.list))
	for i, t := range s.list {
		lines[i] = t.Name + "|" + t.Sig.String()
	}
	sort.Strings(lines)

	h, _ := blake2b.New256(nil)
	for _, l := range lines {
		_, _ = h.Write([]byte(l))
		_, _ = h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
