package trampoline_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/monobind/trampoline"
)

type stats struct {
	Count int64
	Scale float32
}

type other struct {
	Count int64
	Scale float32
}

func mustNew(t *testing.T, name string, fn any) trampoline.Trampoline {
	t.Helper()
	tr, err := trampoline.New(name, fn)
	require.NoError(t, err)
	return tr
}

func TestNewSignature(t *testing.T) {
	tr := mustNew(t, "get_count", trampoline.FieldGetter[int64](reflect.TypeFor[stats]()))
	assert.Equal(t, "func(trampoline.Handle, uint32) int64", tr.Sig.String())

	tr = mustNew(t, "set_count", trampoline.FieldSetter[int64](reflect.TypeFor[stats]()))
	assert.Equal(t, "func(trampoline.Handle, uint32, int64)", tr.Sig.String())

	tr = mustNew(t, "pair", func() (int32, bool) { return 0, false })
	assert.Equal(t, "func() (int32, bool)", tr.Sig.String())
}

func TestNewRejects(t *testing.T) {
	_, err := trampoline.New("", func() {})
	assert.ErrorIs(t, err, trampoline.ErrEmptyName)

	_, err = trampoline.New("x", 42)
	assert.ErrorIs(t, err, trampoline.ErrNotFunc)

	var nilFn func()
	_, err = trampoline.New("x", nilFn)
	assert.ErrorIs(t, err, trampoline.ErrNotFunc)

	_, err = trampoline.New("x", func(...int) {})
	assert.ErrorIs(t, err, trampoline.ErrNotFunc)
}

func TestFieldTrampolinesReadAndWrite(t *testing.T) {
	owner := reflect.TypeFor[stats]()
	get := trampoline.FieldGetter[int64](owner)
	set := trampoline.FieldSetter[float32](owner)

	s := stats{Count: 41, Scale: 1.5}
	h := trampoline.HandleOf(&s)

	assert.Equal(t, int64(41), get(h, 0))
	set(h, 8, 2.25)
	assert.Equal(t, float32(2.25), s.Scale)
}

func TestFieldTrampolinesPanicOnMisuse(t *testing.T) {
	owner := reflect.TypeFor[stats]()
	get := trampoline.FieldGetter[int64](owner)

	assert.PanicsWithValue(t, trampoline.ErrNilHandle, func() {
		get(trampoline.Handle{}, 0)
	})

	o := other{Count: 1}
	assert.PanicsWithError(t, "trampoline: handle to trampoline_test.other used where trampoline_test.stats was expected", func() {
		get(trampoline.HandleOf(&o), 0)
	})

	s := stats{}
	assert.Panics(t, func() {
		get(trampoline.HandleOf(&s), 12)
	})
}

func TestFieldTrampolinesRejectMisalignedOffset(t *testing.T) {
	owner := reflect.TypeFor[stats]()
	get := trampoline.FieldGetter[int64](owner)
	set := trampoline.FieldSetter[float32](owner)
	s := stats{}
	h := trampoline.HandleOf(&s)

	tests := []struct {
		name string
		call func()
	}{
		{"int64 at 4", func() { get(h, 4) }},
		{"int64 at 1", func() { get(h, 1) }},
		{"float32 at 10", func() { set(h, 10, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				err, ok := r.(error)
				require.True(t, ok)
				assert.ErrorIs(t, err, trampoline.ErrOffsetRange)
				assert.Contains(t, err.Error(), "aligned")
			}()
			tt.call()
		})
	}

	assert.NotPanics(t, func() { set(h, 8, 1) })
	assert.Equal(t, float32(1), s.Scale)
}

func TestDerefChecksTag(t *testing.T) {
	s := stats{Count: 3}
	h := trampoline.HandleOf(&s)
	assert.Same(t, &s, trampoline.Deref[stats](h))
	assert.Equal(t, reflect.TypeFor[stats](), h.Tag())
	assert.False(t, h.IsNil())

	raw := trampoline.Raw(h.Pointer())
	assert.Nil(t, raw.Tag())
	assert.Equal(t, h.Addr(), raw.Addr())
	assert.Equal(t, int64(3), trampoline.Deref[stats](raw).Count)

	assert.Panics(t, func() { trampoline.Deref[other](h) })
	assert.True(t, trampoline.HandleOf[stats](nil).IsNil())
}

func TestSessionRejectsDuplicates(t *testing.T) {
	s := trampoline.NewSession()
	a := mustNew(t, "get_count", func(trampoline.Handle) int64 { return 0 })
	b := mustNew(t, "set_count", func(trampoline.Handle, int64) {})

	require.NoError(t, s.Add(a, b))
	assert.Equal(t, 2, s.Len())

	err := s.Add(mustNew(t, "get_scale", func(trampoline.Handle) float32 { return 0 }), a)
	assert.ErrorIs(t, err, trampoline.ErrDuplicateName)
	assert.Equal(t, 2, s.Len(), "failed add must not leave a partial set")
	_, ok := s.Lookup("get_scale")
	assert.False(t, ok)

	assert.ErrorIs(t, s.Check("x", "x"), trampoline.ErrDuplicateName)
	assert.ErrorIs(t, s.Check(""), trampoline.ErrEmptyName)
	assert.NoError(t, s.Check("get_scale"))
}

func TestSessionCommit(t *testing.T) {
	s := trampoline.NewSession()
	require.NoError(t, s.Add(
		mustNew(t, "get_count", trampoline.FieldGetter[int64](reflect.TypeFor[stats]())),
		mustNew(t, "set_count", trampoline.FieldSetter[int64](reflect.TypeFor[stats]())),
	))

	reg := trampoline.NewMapRegistrar()
	require.NoError(t, s.Commit(reg))
	assert.True(t, s.Committed())
	assert.Equal(t, []string{"get_count", "set_count"}, reg.Names())

	assert.ErrorIs(t, s.Commit(reg), trampoline.ErrCommitted)
	assert.ErrorIs(t, s.Add(mustNew(t, "x", func() {})), trampoline.ErrCommitted)

	st := stats{Count: 7}
	h := trampoline.HandleOf(&st)
	out, err := reg.Call("get_count", h, uint32(0))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7)}, out)

	_, err = reg.Call("set_count", h, uint32(0), int64(9))
	require.NoError(t, err)
	assert.Equal(t, int64(9), st.Count)

	_, err = reg.Call("set_count", h, uint32(0), "nine")
	assert.Error(t, err)
	_, err = reg.Call("get_count", h)
	assert.Error(t, err)
	_, err = reg.Call("missing")
	assert.Error(t, err)
}

func TestCommitPropagatesRegistrarRejection(t *testing.T) {
	reg := trampoline.NewMapRegistrar()
	require.NoError(t, reg.Register(mustNew(t, "get_count", func() {})))

	s := trampoline.NewSession()
	require.NoError(t, s.Add(mustNew(t, "get_count", func() {})))

	err := s.Commit(reg)
	assert.ErrorIs(t, err, trampoline.ErrDuplicateName)
	assert.Equal(t, 1, reg.Len())
}

func TestFingerprint(t *testing.T) {
	build := func(names ...string) *trampoline.Session {
		s := trampoline.NewSession()
		for _, n := range names {
			require.NoError(t, s.Add(mustNew(t, n, func(trampoline.Handle) int32 { return 0 })))
		}
		return s
	}

	a := build("get_a", "get_b")
	b := build("get_b", "get_a")
	c := build("get_a", "get_c")

	assert.Len(t, a.Fingerprint(), 64)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "order must not matter")
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}
