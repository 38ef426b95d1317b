package demo_test

import (
	"bytes"
	"context"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/Alia5/monobind/bindings"
	"github.com/Alia5/monobind/bindings/demo"
	"github.com/Alia5/monobind/emitter"
	"github.com/Alia5/monobind/trampoline"
	"github.com/Alia5/monobind/wasmhost"
)

var externName = regexp.MustCompile(`private static extern \S+ (\w+)\(`)

func TestDemoIsRegistered(t *testing.T) {
	s := bindings.Get("DEMO")
	require.NotNil(t, s)
	assert.Equal(t, "demo", s.Name())
}

func TestDemoDescribe(t *testing.T) {
	var buf bytes.Buffer
	e, err := emitter.New(&buf)
	require.NoError(t, err)
	require.NoError(t, demo.Describe(e))

	out := buf.String()
	assert.Contains(t, out, "struct Vector3\n{\n\t[FieldOffset(0)] public float x;\n\n\t[FieldOffset(4)] public float y;\n\n\t[FieldOffset(8)] public float z;\n\n")
	assert.Contains(t, out, "\t[FieldOffset(0)] public long count;\n\n\t[FieldOffset(8)] private float _scale;\n")
	assert.Contains(t, out, "private static extern Vector3 get_position(IntPtr _self, uint _offset);")
	assert.Contains(t, out, "public float magnitude { get => get_magnitude(ref this); set => set_magnitude(ref this, value); }")

	var declared []string
	for _, m := range externName.FindAllStringSubmatch(out, -1) {
		declared = append(declared, m[1])
	}
	sort.Strings(declared)

	reg := trampoline.NewMapRegistrar()
	require.NoError(t, e.Commit(reg))
	assert.Equal(t, reg.SortedNames(), declared)

	b := demo.NewBody(7, "crate")
	h := trampoline.HandleOf(b)

	res, err := reg.Call("get_id", h, uint32(0))
	require.NoError(t, err)
	assert.Equal(t, uint32(7), res[0])

	_, err = reg.Call("set_name", h, "barrel")
	require.NoError(t, err)
	assert.Equal(t, "barrel", b.Name())

	v := demo.Vec3{X: 3, Y: 4}
	_, err = reg.Call("set_magnitude", &v, float32(10))
	require.NoError(t, err)
	assert.InDelta(t, 6.0, float64(v.X), 1e-5)
	assert.InDelta(t, 8.0, float64(v.Y), 1e-5)
}

func TestDemoLowersToWasm(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	var buf bytes.Buffer
	e, err := emitter.New(&buf)
	require.NoError(t, err)
	require.NoError(t, demo.Describe(e))

	r := wasmhost.New(wasmhost.WithLenient(true))
	require.NoError(t, e.Commit(r))
	assert.ElementsMatch(t, []string{"get_position", "set_position", "get_name", "set_name"}, r.Skipped())

	mod, err := r.Instantiate(ctx, rt)
	require.NoError(t, err)

	b := demo.NewBody(1, "b")
	id := r.Handles().Insert(trampoline.HandleOf(b))
	_, err = mod.ExportedFunction("set_sleeping").Call(ctx, id, 32, 1)
	require.NoError(t, err)
	assert.True(t, b.Sleeping)
}
