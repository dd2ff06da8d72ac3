package config

// Config is the root configuration for roster.
type Config struct {
	Proxy     ProxyConfig     `yaml:"proxy,omitempty"`
	Backend   BackendConfig   `yaml:"backend,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Dashboard DashboardConfig `yaml:"dashboard,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// ProxyConfig controls the dashboard-facing proxy server.
type ProxyConfig struct {
	Port           int       `yaml:"port,omitempty"`
	Bind           string    `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost string    `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string  `yaml:"allowedOrigins,omitempty"`
	TLS            TLSConfig `yaml:"tls,omitempty"`
}

// TLSConfig configures TLS for a listener.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// BackendConfig tells the proxy where the record store lives.
type BackendConfig struct {
	BaseURL        string `yaml:"baseUrl,omitempty"`
	Token          string `yaml:"token,omitempty"` // capability token forwarded as a bearer credential
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// StoreConfig controls the record store service.
type StoreConfig struct {
	Port           int          `yaml:"port,omitempty"`
	Bind           string       `yaml:"bind,omitempty"`
	CustomBindHost string       `yaml:"customBindHost,omitempty"`
	Path           string       `yaml:"path,omitempty"` // sqlite file; empty means <data>/roster.db
	Token          string       `yaml:"token,omitempty"`
	Breeds         BreedsConfig `yaml:"breeds,omitempty"`
}

// BreedsConfig controls breed validation against an external catalog.
type BreedsConfig struct {
	Validate bool   `yaml:"validate,omitempty"`
	URL      string `yaml:"url,omitempty"`
}

// DashboardConfig points the dashboard at a proxy.
type DashboardConfig struct {
	ProxyURL string `yaml:"proxyUrl,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
