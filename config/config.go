// Package config provides configuration parsing for resource-pulse.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the resource-pulse configuration.
type Config struct {
	// Collector holds settings for the remote metrics collector.
	Collector CollectorConfig `yaml:"collector"`

	// History holds chart history settings.
	History HistoryConfig `yaml:"history"`

	// Downloads holds report download settings.
	Downloads DownloadsConfig `yaml:"downloads"`

	// Log holds logging settings.
	Log LogConfig `yaml:"log"`

	// Server holds settings for the embedded collector service (-serve).
	Server ServerConfig `yaml:"server"`
}

// CollectorConfig holds remote collector settings.
type CollectorConfig struct {
	// URL is the base URL of the collector service.
	URL string `yaml:"url"`
	// PollInterval is a duration string (e.g. "1s") between snapshot polls.
	PollInterval string `yaml:"poll_interval"`
	// Timeout is the per-request duration string. Empty means one polling
	// period.
	Timeout string `yaml:"timeout"`
}

// HistoryConfig holds chart history settings.
type HistoryConfig struct {
	// Capacity is the number of samples retained per series.
	Capacity int `yaml:"capacity"`
}

// DownloadsConfig holds report download settings.
type DownloadsConfig struct {
	// Dir is the directory downloaded reports are written to.
	Dir string `yaml:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// File is the log output path. Empty means stderr.
	File string `yaml:"file"`
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
}

// ServerConfig holds embedded collector service settings.
type ServerConfig struct {
	// Listen is the address the service binds to.
	Listen string `yaml:"listen"`
	// RecordingDuration is the capture-window duration string.
	RecordingDuration string `yaml:"recording_duration"`
	// ReportDir is where generated reports are written.
	ReportDir string `yaml:"report_dir"`
	// DataDir is where recorded sessions are persisted.
	DataDir string `yaml:"data_dir"`
}

// Default returns the default configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(xdgDataHome(home), "resource-pulse")

	return &Config{
		Collector: CollectorConfig{
			URL:          "http://localhost:5000",
			PollInterval: "1s",
		},
		History: HistoryConfig{
			Capacity: 60,
		},
		Downloads: DownloadsConfig{
			Dir: filepath.Join(dataDir, "reports"),
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Listen:            ":5000",
			RecordingDuration: "5m",
			ReportDir:         filepath.Join(dataDir, "reports"),
			DataDir:           dataDir,
		},
	}
}

// Load reads configuration from the standard config path. Search order:
//
//  1. $XDG_CONFIG_HOME/resource-pulse/config.yaml
//  2. ~/.config/resource-pulse/config.yaml
//
// If no file exists, returns Default().
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. Missing files
// fall back to defaults; malformed files are an error.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets environment variables override file values, for
// running against ad-hoc collectors without editing config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RESOURCE_PULSE_URL"); v != "" {
		cfg.Collector.URL = v
	}
	if v := os.Getenv("RESOURCE_PULSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// configSearchPaths returns candidate config file locations in priority order.
func configSearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "resource-pulse", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "resource-pulse", "config.yaml"))
	}
	return paths
}

// xdgDataHome returns $XDG_DATA_HOME or the ~/.local/share fallback.
func xdgDataHome(home string) string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(home, ".local", "share")
}

// PollInterval parses the configured poll cadence, falling back to one
// second on missing or malformed values.
func (c *Config) PollInterval() time.Duration {
	return parseDuration(c.Collector.PollInterval, 1*time.Second)
}

// RequestTimeout parses the per-request timeout, defaulting to one polling
// period.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Collector.Timeout, c.PollInterval())
}

// RecordingDuration parses the embedded server's capture-window duration,
// falling back to five minutes.
func (c *Config) RecordingDuration() time.Duration {
	return parseDuration(c.Server.RecordingDuration, 5*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
