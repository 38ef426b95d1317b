package wasmhost_test

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/Alia5/monobind/emitter"
	"github.com/Alia5/monobind/trampoline"
	"github.com/Alia5/monobind/wasmhost"
)

type stats struct {
	Count int64
	Scale float32
	Small int16
}

type vec struct {
	X, Y float32
}

func mustNew(t *testing.T, name string, fn any) trampoline.Trampoline {
	t.Helper()
	tr, err := trampoline.New(name, fn)
	require.NoError(t, err)
	return tr
}

func TestRegisterLowersPrimitivesAndHandles(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	owner := reflect.TypeFor[stats]()
	r := wasmhost.New()
	require.NoError(t, r.Register(mustNew(t, "get_count", trampoline.FieldGetter[int64](owner))))
	require.NoError(t, r.Register(mustNew(t, "set_scale", trampoline.FieldSetter[float32](owner))))
	require.NoError(t, r.Register(mustNew(t, "get_small", trampoline.FieldGetter[int16](owner))))
	require.NoError(t, r.Register(mustNew(t, "get_live", func(h trampoline.Handle) bool {
		return trampoline.Deref[stats](h).Count > 0
	})))
	assert.Equal(t, 4, r.Len())

	mod, err := r.Instantiate(ctx, rt)
	require.NoError(t, err)

	s := stats{Count: 12, Small: -3}
	id := r.Handles().Insert(trampoline.HandleOf(&s))

	out, err := mod.ExportedFunction("get_count").Call(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(12), int64(out[0]))

	_, err = mod.ExportedFunction("set_scale").Call(ctx, id, 8, api.EncodeF32(0.5))
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), s.Scale)

	out, err = mod.ExportedFunction("get_small").Call(ctx, id, 12)
	require.NoError(t, err)
	assert.Equal(t, int32(-3), api.DecodeI32(out[0]))

	out, err = mod.ExportedFunction("get_live").Call(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out[0])

	def := mod.ExportedFunction("get_count").Definition()
	assert.Equal(t, []api.ValueType{api.ValueTypeI64, api.ValueTypeI32}, def.ParamTypes())
	assert.Equal(t, []api.ValueType{api.ValueTypeI64}, def.ResultTypes())
}

func TestTrampolinePanicsBecomeTraps(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	r := wasmhost.New(wasmhost.WithModuleName("host"))
	require.NoError(t, r.Register(mustNew(t, "get_count", trampoline.FieldGetter[int64](reflect.TypeFor[stats]()))))
	mod, err := r.Instantiate(ctx, rt)
	require.NoError(t, err)
	assert.Equal(t, "host", mod.Name())

	_, err = mod.ExportedFunction("get_count").Call(ctx, 0, 0)
	assert.Error(t, err, "nil handle must trap")

	_, err = mod.ExportedFunction("get_count").Call(ctx, 99, 0)
	assert.Error(t, err, "unknown handle id must trap")

	v := vec{}
	id := r.Handles().Insert(trampoline.HandleOf(&v))
	_, err = mod.ExportedFunction("get_count").Call(ctx, id, 0)
	assert.Error(t, err, "mistagged handle must trap")
}

func TestRegisterRejections(t *testing.T) {
	r := wasmhost.New()

	require.NoError(t, r.Register(mustNew(t, "get_a", func() int32 { return 1 })))
	err := r.Register(mustNew(t, "get_a", func() int32 { return 2 }))
	assert.ErrorIs(t, err, trampoline.ErrDuplicateName)

	err = r.Register(mustNew(t, "get_name", func(trampoline.Handle) string { return "" }))
	assert.ErrorIs(t, err, wasmhost.ErrUnsupported)

	err = r.Register(mustNew(t, "get_vec", func(trampoline.Handle) vec { return vec{} }))
	assert.ErrorIs(t, err, wasmhost.ErrUnsupported)

	err = r.Register(mustNew(t, "get_s", func(*stats) []byte { return nil }))
	assert.ErrorIs(t, err, wasmhost.ErrUnsupported)

	assert.Equal(t, 1, r.Len())
}

func TestLenientSkipsUnsupported(t *testing.T) {
	r := wasmhost.New(wasmhost.WithLenient(true))

	require.NoError(t, r.Register(mustNew(t, "get_name", func(trampoline.Handle) string { return "" })))
	require.NoError(t, r.Register(mustNew(t, "get_x", func(v *vec) float32 { return v.X })))
	assert.Equal(t, []string{"get_name"}, r.Skipped())
	assert.Equal(t, 1, r.Len())

	err := r.Register(mustNew(t, "get_name", func(trampoline.Handle) int32 { return 0 }))
	assert.ErrorIs(t, err, trampoline.ErrDuplicateName)
}

func TestInstantiateEmpty(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	_, err := wasmhost.New().Instantiate(ctx, rt)
	assert.ErrorIs(t, err, wasmhost.ErrNoFunctions)
}

func TestCommitFromEmitter(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	var buf bytes.Buffer
	e, err := emitter.New(&buf)
	require.NoError(t, err)
	require.NoError(t, emitter.ClassHeader[stats](e, "Stats"))
	require.NoError(t, emitter.ClassField[int64](e, "count", "Count"))
	require.NoError(t, e.Footer())

	r := wasmhost.New()
	require.NoError(t, e.Commit(r))
	mod, err := r.Instantiate(ctx, rt)
	require.NoError(t, err)

	s := stats{}
	id := r.Handles().Insert(trampoline.HandleOf(&s))
	_, err = mod.ExportedFunction("set_count").Call(ctx, id, 0, 77)
	require.NoError(t, err)
	assert.Equal(t, int64(77), s.Count)
}

func TestHandleTable(t *testing.T) {
	tbl := wasmhost.NewHandleTable()
	assert.Equal(t, uint64(0), tbl.Insert(trampoline.Handle{}))

	s := stats{}
	id := tbl.Insert(trampoline.HandleOf(&s))
	assert.NotZero(t, id)
	h, ok := tbl.Get(id)
	require.True(t, ok)
	assert.Equal(t, trampoline.HandleOf(&s).Addr(), h.Addr())

	nilH, ok := tbl.Get(0)
	assert.True(t, ok)
	assert.True(t, nilH.IsNil())

	assert.True(t, tbl.Remove(id))
	assert.False(t, tbl.Remove(id))
	_, ok = tbl.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())
}
