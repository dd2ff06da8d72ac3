package config

import (
	"fmt"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

var validBinds = []string{"auto", "lan", "loopback", "custom"}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	issues = append(issues, validateListener("proxy", cfg.Proxy.Port, cfg.Proxy.Bind)...)
	issues = append(issues, validateListener("store", cfg.Store.Port, cfg.Store.Bind)...)

	if cfg.Proxy.TLS.Enabled && (cfg.Proxy.TLS.CertPath == "" || cfg.Proxy.TLS.KeyPath == "") {
		issues = append(issues, ValidationIssue{
			Path:    "proxy.tls",
			Message: "certPath and keyPath are required when TLS is enabled",
		})
	}

	issues = append(issues, validateURL("backend.baseUrl", cfg.Backend.BaseURL)...)
	issues = append(issues, validateURL("dashboard.proxyUrl", cfg.Dashboard.ProxyURL)...)
	if cfg.Store.Breeds.Validate {
		issues = append(issues, validateURL("store.breeds.url", cfg.Store.Breeds.URL)...)
	}

	if cfg.Backend.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "backend.timeoutSeconds",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Backend.TimeoutSeconds),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}

func validateListener(section string, port int, bind string) []ValidationIssue {
	var issues []ValidationIssue
	if port < 0 || port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    section + ".port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", port),
		})
	}
	if bind != "" && !slices.Contains(validBinds, bind) {
		issues = append(issues, ValidationIssue{
			Path:    section + ".bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, bind),
		})
	}
	return issues
}

func validateURL(path, raw string) []ValidationIssue {
	if raw == "" {
		return []ValidationIssue{{Path: path, Message: "url is required"}}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return []ValidationIssue{{Path: path, Message: fmt.Sprintf("must be an http(s) URL, got %q", raw)}}
	}
	return nil
}
