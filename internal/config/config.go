package config

import "fmt"

// Local development defaults.
const (
	DefaultProxyPort   = 3000
	DefaultStorePort   = 8000
	DefaultBackendURL  = "http://localhost:8000"
	DefaultProxyURL    = "http://localhost:3000"
	DefaultBreedsURL   = "https://api.thecatapi.com/v1/breeds"
	DefaultTimeoutSecs = 30
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Proxy: ProxyConfig{
			Port: DefaultProxyPort,
			Bind: "loopback",
		},
		Backend: BackendConfig{
			BaseURL:        DefaultBackendURL,
			TimeoutSeconds: DefaultTimeoutSecs,
		},
		Store: StoreConfig{
			Port: DefaultStorePort,
			Bind: "loopback",
			Breeds: BreedsConfig{
				URL: DefaultBreedsURL,
			},
		},
		Dashboard: DashboardConfig{
			ProxyURL: DefaultProxyURL,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// ListenAddr computes a listen address from a bind mode.
func ListenAddr(bind, customHost string, port int) string {
	switch bind {
	case "lan", "auto":
		return fmt.Sprintf("0.0.0.0:%d", port)
	case "custom":
		host := customHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", port)
	}
}

// Addr returns the proxy listen address.
func (c ProxyConfig) Addr() string { return ListenAddr(c.Bind, c.CustomBindHost, c.Port) }

// Addr returns the record store listen address.
func (c StoreConfig) Addr() string { return ListenAddr(c.Bind, c.CustomBindHost, c.Port) }
