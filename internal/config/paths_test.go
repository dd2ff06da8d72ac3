package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigPath_Extended(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single segment", "proxy", []string{"proxy"}, false},
		{"two segments", "proxy.port", []string{"proxy", "port"}, false},
		{"three segments", "proxy.tls.enabled", []string{"proxy", "tls", "enabled"}, false},
		{"empty", "", nil, true},
		{"empty segment", "proxy..port", nil, true},
		{"leading dot", ".proxy", nil, true},
		{"trailing dot", "proxy.", nil, true},
		{"blocked __proto__", "foo.__proto__.bar", nil, true},
		{"blocked prototype", "prototype.x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGetSetUnsetValueAtPath(t *testing.T) {
	root := map[string]any{
		"proxy": map[string]any{
			"port": 3000,
			"bind": "loopback",
		},
		"simple": "value",
	}

	val, ok := GetValueAtPath(root, []string{"proxy", "port"})
	assert.True(t, ok)
	assert.Equal(t, 3000, val)

	_, ok = GetValueAtPath(root, []string{"simple", "sub"})
	assert.False(t, ok)

	SetValueAtPath(root, []string{"store", "breeds", "validate"}, true)
	val, ok = GetValueAtPath(root, []string{"store", "breeds", "validate"})
	assert.True(t, ok)
	assert.Equal(t, true, val)

	SetValueAtPath(root, []string{"simple", "nested"}, 1)
	val, ok = GetValueAtPath(root, []string{"simple", "nested"})
	assert.True(t, ok)
	assert.Equal(t, 1, val)

	assert.True(t, UnsetValueAtPath(root, []string{"proxy", "port"}))
	_, ok = GetValueAtPath(root, []string{"proxy", "port"})
	assert.False(t, ok)
	val, ok = GetValueAtPath(root, []string{"proxy", "bind"})
	assert.True(t, ok)
	assert.Equal(t, "loopback", val)

	assert.False(t, UnsetValueAtPath(root, []string{"proxy", "nonexistent"}))
	assert.False(t, UnsetValueAtPath(root, []string{"missing", "port"}))
}

func TestResolvePathsDefaultHome(t *testing.T) {
	t.Setenv("ROSTER_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".roster"), paths.Base)
	assert.Equal(t, filepath.Join(home, ".roster", "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(home, ".roster", "data", "roster.db"), paths.DatabasePath())
}

func TestResolvePathsCustomHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("ROSTER_HOME", tmp)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, tmp, paths.Base)
	assert.Equal(t, filepath.Join(tmp, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(tmp, "logs"), paths.Logs)
}

func TestEnsureDirs(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("ROSTER_HOME", tmp)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirs())

	for _, d := range []string{paths.Base, paths.Data, paths.Logs} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
