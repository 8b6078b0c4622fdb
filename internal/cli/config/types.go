// Package config provides configuration management for the apidash CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	BaseURL        string       `koanf:"base_url"`
	TimeoutSeconds int          `koanf:"timeout_seconds"`
	ExportDir      string       `koanf:"export_dir"`
	OutputFormat   string       `koanf:"output"`
	Verbose        bool         `koanf:"verbose"`
	Serve          *ServeConfig `koanf:"serve"`
}

// ServeConfig holds configuration for the web dashboard server.
type ServeConfig struct {
	Port     int  `koanf:"port"`
	AutoOpen bool `koanf:"auto_open"`
	Watch    bool `koanf:"watch"`
}

// Timeout returns the fetch timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetServeConfig returns the serve config with defaults applied for any
// unset values.
func (c *Config) GetServeConfig() *ServeConfig {
	if c.Serve == nil {
		return &ServeConfig{Port: DefaultServePort, AutoOpen: true}
	}
	s := c.Serve
	if s.Port == 0 {
		s.Port = DefaultServePort
	}
	return s
}

// Default configuration values.
const (
	DefaultBaseURL        = "https://jsonplaceholder.typicode.com"
	DefaultTimeoutSeconds = 5
	DefaultExportDir      = "."
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServePort      = 8765
)
