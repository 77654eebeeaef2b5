package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"Ascend/pkg/session"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "Ascend"
	configFileName = "config.yaml"
)

// Config is the optional user configuration. Every field has a default;
// the file only overrides what it sets.
type Config struct {
	BinDir       string        `yaml:"bin_dir"`
	DebloatDB    string        `yaml:"debloat_db"`
	PollInterval time.Duration `yaml:"poll_interval"`
	StartupDelay time.Duration `yaml:"startup_delay"`
	DefaultPath  string        `yaml:"default_path"`

	Log    LogSettings    `yaml:"log"`
	Remote RemoteSettings `yaml:"remote"`
	MCP    MCPSettings    `yaml:"mcp"`
}

type LogSettings struct {
	Level       string      `yaml:"level"`
	File        bool        `yaml:"file"`
	Compression Compression `yaml:"compression"`
}

// RemoteSettings limits how fast remote key events reach the device
type RemoteSettings struct {
	Rate  float64 `yaml:"rate"` // events per second
	Burst int     `yaml:"burst"`
}

type MCPSettings struct {
	Enabled bool `yaml:"enabled"`
}

// resourceDir is where bundled binaries and data live: the directory of
// the running executable.
func resourceDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return defaultConfigAt(resourceDir())
}

func defaultConfigAt(dir string) Config {
	return Config{
		BinDir:       filepath.Join(dir, "bin"),
		DebloatDB:    filepath.Join(dir, "data", "debloat_db.json"),
		PollInterval: session.DefaultPollInterval,
		StartupDelay: 500 * time.Millisecond,
		DefaultPath:  session.DefaultPath,
		Log: LogSettings{
			Level:       "info",
			File:        true,
			Compression: CompressionGzip,
		},
		Remote: RemoteSettings{Rate: 10, Burst: 5},
	}
}

// ConfigPath returns <UserConfigDir>/Ascend/config.yaml
func ConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// LoadConfig overlays the YAML file at path on the defaults. A missing
// file is not an error.
func LoadConfig(path string) (Config, error) {
	return loadConfigOver(DefaultConfig(), path)
}

func loadConfigOver(cfg Config, path string) (Config, error) {
	base := filepath.Dir(cfg.BinDir)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.BinDir = resolvePath(base, cfg.BinDir)
	cfg.DebloatDB = resolvePath(base, cfg.DebloatDB)
	return cfg, cfg.validate()
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (c Config) validate() error {
	if c.BinDir == "" {
		return errors.New("bin_dir must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.StartupDelay < 0 {
		return fmt.Errorf("startup_delay must not be negative, got %s", c.StartupDelay)
	}
	if c.Remote.Rate <= 0 || c.Remote.Burst <= 0 {
		return fmt.Errorf("remote rate and burst must be positive")
	}
	switch c.Log.Compression {
	case CompressionNone, CompressionGzip, CompressionBrotli:
	default:
		return fmt.Errorf("unknown log compression %q", c.Log.Compression)
	}
	return nil
}

// LogConfig turns the log settings into a logger configuration rooted at
// the user config directory.
func (c Config) LogConfig(appDataPath string) LogConfig {
	lc := DefaultLogConfig()
	if c.Log.File && appDataPath != "" {
		lc = PersistentLogConfig(appDataPath)
	}
	lc.Level = ParseLogLevel(c.Log.Level)
	lc.Compression = c.Log.Compression
	return lc
}
