package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 3000, cfg.Proxy.Port)
	assert.Equal(t, "loopback", cfg.Proxy.Bind)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 30, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, 8000, cfg.Store.Port)
	assert.False(t, cfg.Store.Breeds.Validate)
	assert.Equal(t, DefaultBreedsURL, cfg.Store.Breeds.URL)
	assert.Equal(t, "http://localhost:3000", cfg.Dashboard.ProxyURL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Proxy.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
proxy:
  port: 4000
  bind: lan
  allowedOrigins:
    - "http://localhost:5173"
backend:
  baseUrl: http://records.internal:9000
  token: ${ROSTER_TEST_TOKEN}
store:
  port: 9000
  path: /var/lib/roster/roster.db
  breeds:
    validate: true
logging:
  level: debug
  consoleStyle: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("ROSTER_TEST_TOKEN", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Proxy.Port)
	assert.Equal(t, "lan", cfg.Proxy.Bind)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Proxy.AllowedOrigins)
	assert.Equal(t, "http://records.internal:9000", cfg.Backend.BaseURL)
	assert.Equal(t, "s3cret", cfg.Backend.Token)
	assert.Equal(t, 30, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, 9000, cfg.Store.Port)
	assert.Equal(t, "/var/lib/roster/roster.db", cfg.Store.Path)
	assert.True(t, cfg.Store.Breeds.Validate)
	assert.Equal(t, DefaultBreedsURL, cfg.Store.Breeds.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ROSTER_PROXY_PORT", "12345")
	t.Setenv("ROSTER_BACKEND_URL", "http://backend:8080")
	t.Setenv("ROSTER_PROXY_URL", "http://proxy:3001")
	t.Setenv("ROSTER_LOG_LEVEL", "TRACE")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.Proxy.Port)
	assert.Equal(t, "http://backend:8080", cfg.Backend.BaseURL)
	assert.Equal(t, "http://proxy:3001", cfg.Dashboard.ProxyURL)
	assert.Equal(t, "trace", cfg.Logging.Level)
}

func TestExpandEnvVarsLeavesUnsetAlone(t *testing.T) {
	assert.Equal(t, "${ROSTER_DEFINITELY_UNSET}", expandEnvVars("${ROSTER_DEFINITELY_UNSET}"))
}

func TestParseConfigPath(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{"proxy.port", []string{"proxy", "port"}, false},
		{"store.breeds.validate", []string{"store", "breeds", "validate"}, false},
		{"", nil, true},
		{"a..b", nil, true},
		{"__proto__.x", nil, true},
		{"x.constructor", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	raw := map[string]any{
		"backend": map[string]any{
			"baseUrl": "http://localhost:9999",
		},
	}

	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(loaded, []string{"backend", "baseUrl"})
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:9999", val)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.Backend.BaseURL)
}

func TestLoadRawEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	raw, err := LoadRaw(path)
	require.NoError(t, err)
	assert.NotNil(t, raw)
}

func TestListenAddr(t *testing.T) {
	tests := []struct {
		bind string
		host string
		want string
	}{
		{"loopback", "", "127.0.0.1:3000"},
		{"lan", "", "0.0.0.0:3000"},
		{"auto", "", "0.0.0.0:3000"},
		{"custom", "10.0.0.5", "10.0.0.5:3000"},
		{"custom", "", "0.0.0.0:3000"},
		{"", "", "127.0.0.1:3000"},
	}
	for _, tt := range tests {
		t.Run(tt.bind+"/"+tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, ListenAddr(tt.bind, tt.host, 3000))
		})
	}

	cfg := Defaults()
	assert.Equal(t, "127.0.0.1:3000", cfg.Proxy.Addr())
	assert.Equal(t, "127.0.0.1:8000", cfg.Store.Addr())
}
