package testing

import (
	"errors"
	"testing"

	"github.com/Alia5/monobind/trampoline"
)

// ErrSinkFull is returned by a LimitedWriter once its budget is spent.
var ErrSinkFull = errors.New("sink full")

// LimitedWriter accepts up to Limit bytes and then fails every write.
type LimitedWriter struct {
	Limit int
	Data  []byte
}

func (w *LimitedWriter) Write(p []byte) (int, error) {
	room := w.Limit - len(w.Data)
	if room <= 0 {
		return 0, ErrSinkFull
	}
	if len(p) > room {
		w.Data = append(w.Data, p[:room]...)
		return room, ErrSinkFull
	}
	w.Data = append(w.Data, p...)
	return len(p), nil
}

type mockRegistrar struct {
	t        *testing.T
	reject   map[string]error
	accepted []string
}

func (m *mockRegistrar) Register(tr trampoline.Trampoline) error {
	if err, ok := m.reject[tr.Name]; ok {
		m.t.Logf("mock registrar rejecting %q", tr.Name)
		return err
	}
	m.accepted = append(m.accepted, tr.Name)
	return nil
}

func (m *mockRegistrar) Accepted() []string {
	return m.accepted
}

// MockRegistrar accepts everything except the names in reject, which fail with
// the mapped error.
type MockRegistrar interface {
	trampoline.Registrar
	Accepted() []string
}

func CreateMockRegistrar(t *testing.T, reject map[string]error) MockRegistrar {
	return &mockRegistrar{t: t, reject: reject}
}
