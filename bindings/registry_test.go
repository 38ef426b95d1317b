package bindings_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/monobind/bindings"
	"github.com/Alia5/monobind/emitter"
)

type point struct {
	X, Y int32
}

func noop(*emitter.Emitter) error { return nil }

func TestSetRegistry(t *testing.T) {
	bindings.Register(bindings.NewSet("RegistryAlpha", "first", noop))
	bindings.Register(bindings.NewSet("registrybeta", "second", noop))

	tests := []struct {
		name       string
		lookupName string
		shouldFind bool
		expected   string
	}{
		{name: "exact match", lookupName: "registrybeta", shouldFind: true, expected: "registrybeta"},
		{name: "case insensitive lookup", lookupName: "registryalpha", shouldFind: true, expected: "RegistryAlpha"},
		{name: "uppercase lookup", lookupName: "REGISTRYBETA", shouldFind: true, expected: "registrybeta"},
		{name: "unknown set", lookupName: "registrygamma", shouldFind: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := bindings.Get(tt.lookupName)
			if !tt.shouldFind {
				assert.Nil(t, s)
				return
			}
			require.NotNil(t, s)
			assert.Equal(t, tt.expected, s.Name())
		})
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	bindings.Register(bindings.NewSet("registrydup", "", noop))
	assert.Panics(t, func() {
		bindings.Register(bindings.NewSet("RegistryDup", "", noop))
	})
}

func TestListIsSorted(t *testing.T) {
	bindings.Register(bindings.NewSet("listzz", "", noop))
	bindings.Register(bindings.NewSet("ListAA", "", noop))

	var names []string
	for _, s := range bindings.List() {
		names = append(names, s.Name())
	}
	assert.IsNonDecreasing(t, lower(names))
	assert.Contains(t, names, "ListAA")
	assert.Contains(t, names, "listzz")
}

func TestResolve(t *testing.T) {
	bindings.Register(bindings.NewSet("resolveone", "", noop))

	all, err := bindings.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, len(bindings.List()), len(all))

	got, err := bindings.Resolve([]string{"ResolveOne"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "resolveone", got[0].Name())

	_, err = bindings.Resolve([]string{"resolveone", "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown binding set 'nope'")
}

func TestDescribeAll(t *testing.T) {
	var buf bytes.Buffer
	e, err := emitter.New(&buf)
	require.NoError(t, err)

	points := bindings.NewSet("points", "", func(e *emitter.Emitter) error {
		if err := emitter.StructHeader[point](e, "Point"); err != nil {
			return err
		}
		if err := emitter.StructField[int32](e, "x", "X"); err != nil {
			return err
		}
		return e.Footer()
	})
	require.NoError(t, bindings.DescribeAll(e, []bindings.Set{points}))
	assert.Contains(t, buf.String(), "struct Point\n{\n\t[FieldOffset(0)] public int x;\n\n}\n\n")

	boom := errors.New("boom")
	failing := bindings.NewSet("failing", "", func(*emitter.Emitter) error { return boom })
	err = bindings.DescribeAll(e, []bindings.Set{failing})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

func lower(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		b := []byte(s)
		for j, c := range b {
			if c >= 'A' && c <= 'Z' {
				b[j] = c + 'a' - 'A'
			}
		}
		out[i] = string(b)
	}
	return out
}
