package wasmhost

import (
	"sync"

	"github.com/Alia5/monobind/trampoline"
)

// HandleTable hands out guest-visible ids for native handles. A wasm guest never
// sees a Go address; it passes the id back and the host resolves it. Id 0 is the
// nil handle.
type HandleTable struct {
	mu   sync.RWMutex
	next uint64
	m    map[uint64]trampoline.Handle
}

func NewHandleTable() *HandleTable {
	return &HandleTable{m: make(map[uint64]trampoline.Handle)}
}

// Insert stores h and returns its id. Nil handles map to 0 and are not stored.
func (t *HandleTable) Insert(h trampoline.Handle) uint64 {
	if h.IsNil() {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.m[t.next] = h
	return t.next
}

// Get resolves id. Id 0 resolves to the nil handle.
func (t *HandleTable) Get(id uint64) (trampoline.Handle, bool) {
	if id == 0 {
		return trampoline.Handle{}, true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.m[id]
	return h, ok
}

// Remove drops id and reports whether it was present.
func (t *HandleTable) Remove(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m[id]; !ok {
		return false
	}
	delete(t.m, id)
	return true
}

func (t *HandleTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.m)
}
