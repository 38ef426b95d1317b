package configpaths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExt(t *testing.T) {
	assert.Equal(t, "json", Ext("json"))
	assert.Equal(t, "yaml", Ext("YML"))
	assert.Equal(t, "yaml", Ext("yaml"))
	assert.Equal(t, "toml", Ext("toml"))
	assert.Equal(t, "json", Ext("ini"))
}

func TestDefaultNamedConfigPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Setenv("AppData", t.TempDir())
	} else {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	}
	p, err := DefaultNamedConfigPath("generate", "toml")
	require.NoError(t, err)
	assert.Equal(t, "generate.toml", filepath.Base(p))
	assert.Equal(t, "monobind", filepath.Base(filepath.Dir(p)))
}

func TestConfigCandidatePathsUserFirst(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"custom.json", "json"},
		{"custom.YAML", "yaml"},
		{"custom.yml", "yaml"},
		{"custom.toml", "toml"},
		{"custom.conf", "json"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			j, y, tm := ConfigCandidatePaths(tt.path)
			first := map[string]string{"json": j[0], "yaml": y[0], "toml": tm[0]}
			assert.Equal(t, tt.path, first[tt.want])
		})
	}
}

func TestConfigCandidatePathsSystemDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no system config dir on windows")
	}
	j, _, _ := ConfigCandidatePaths("")
	assert.Equal(t, filepath.Join(SystemConfigDir, "generate.json"), j[len(j)-1])
}

func TestFindUserConfig(t *testing.T) {
	t.Setenv(EnvConfig, "")
	assert.Equal(t, "a.yaml", FindUserConfig([]string{"generate", "--config=a.yaml"}))
	assert.Equal(t, "b.toml", FindUserConfig([]string{"--config", "b.toml", "list"}))
	assert.Equal(t, "", FindUserConfig([]string{"generate", "--config"}))

	t.Setenv(EnvConfig, "env.json")
	assert.Equal(t, "env.json", FindUserConfig([]string{"list"}))
	assert.Equal(t, "flag.json", FindUserConfig([]string{"--config=flag.json"}))
}
