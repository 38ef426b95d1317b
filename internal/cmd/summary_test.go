package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/monobind/manifest"
)

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &Result{
		Bytes: 120,
		Manifest: &manifest.Manifest{
			Fingerprint: "abc123",
			Trampolines: []manifest.Trampoline{
				{Name: "set_name", Signature: "func(trampoline.Handle, string)"},
				{Name: "get_mass", Signature: "func(trampoline.Handle, uint32) float32"},
			},
		},
		Skipped: []string{"set_name"},
	})

	out := buf.String()
	assert.Contains(t, out, "TRAMPOLINE")
	assert.Contains(t, out, "get_mass")
	assert.Contains(t, out, "skipped")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("get_mass")), bytes.Index(buf.Bytes(), []byte("set_name")))
	assert.Contains(t, out, "2 trampolines, 120 bytes, fingerprint abc123")
}

func TestConfigKey(t *testing.T) {
	tests := map[string]string{
		"Level":     "level",
		"TraceFile": "trace_file",
		"Output":    "output",
		"WASMHost":  "wasm_host",
	}
	for in, want := range tests {
		assert.Equal(t, want, configKey(in), in)
	}
}
