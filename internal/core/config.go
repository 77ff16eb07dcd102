// internal/core/config.go
// Configuration management using Koanf

package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the complete application configuration.
type Config struct {
	Scan    ScanConfig    `koanf:"scan"`
	Output  OutputConfig  `koanf:"output"`
	History HistoryConfig `koanf:"history"`
	Log     LogConfig     `koanf:"log"`
}

// ScanConfig contains scan engine settings.
type ScanConfig struct {
	// Targets is a list of CIDRs or single IPs.
	Targets []string `koanf:"targets"`
	// Ports is a port spec: "22", "1:1024", "22,80,443".
	Ports string `koanf:"ports"`
	// Processes bounds concurrently scanned addresses and sets the chunk
	// count; 0 means derive from available CPU parallelism.
	Processes int `koanf:"processes"`
	// Workers bounds concurrent connect attempts within one address.
	Workers int `koanf:"workers"`
	// Timeout bounds each connect attempt.
	Timeout time.Duration `koanf:"timeout"`
	// RateLimit caps connect attempts per second; 0 means unlimited.
	RateLimit int `koanf:"rate_limit"`
	// MaxTargets aborts before scanning more addresses than this.
	MaxTargets int64 `koanf:"max_targets"`
}

// OutputConfig contains result output settings.
type OutputConfig struct {
	// Formats lists enabled formatters: json, console.
	Formats    []string `koanf:"formats"`
	Directory  string   `koanf:"directory"`
	FilePrefix string   `koanf:"file_prefix"`
}

// HistoryConfig contains scan history settings.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, console
	File   string `koanf:"file"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Scan: ScanConfig{
			Targets:    nil,
			Ports:      "1:1024",
			Processes:  0,
			Workers:    100,
			Timeout:    time.Second,
			RateLimit:  0,
			MaxTargets: 1 << 20,
		},
		Output: OutputConfig{
			Formats:    []string{"console"},
			Directory:  "./results",
			FilePrefix: "portsweep",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "portsweep.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration in priority order: defaults < config file
// < environment (SWEEP_ prefix, "__" for nesting) < explicit overrides
// (typically command-line flags).
func Load(configPath string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	def := Default()
	if err := k.Load(structs.Provider(def, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	// SWEEP_SCAN__WORKERS=200 -> scan.workers
	envProvider := env.Provider("SWEEP_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "SWEEP_"))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the scan engine cannot run with.
func Validate(cfg *Config) error {
	if cfg.Scan.Workers < 1 || cfg.Scan.Workers > 65535 {
		return fmt.Errorf("invalid workers: %d (must be between 1 and 65535)", cfg.Scan.Workers)
	}
	if cfg.Scan.Processes < 0 {
		return fmt.Errorf("invalid processes: %d (must be >= 0, 0 = auto)", cfg.Scan.Processes)
	}
	if cfg.Scan.Timeout < 10*time.Millisecond || cfg.Scan.Timeout > 5*time.Minute {
		return fmt.Errorf("invalid timeout: %v (must be between 10ms and 5m)", cfg.Scan.Timeout)
	}
	if cfg.Scan.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit: %d (must be >= 0, 0 = unlimited)", cfg.Scan.RateLimit)
	}
	for _, format := range cfg.Output.Formats {
		if format != "json" && format != "console" {
			return fmt.Errorf("invalid output format: %s (must be json or console)", format)
		}
	}
	return nil
}
