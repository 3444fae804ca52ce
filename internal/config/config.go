package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pastebin/internal/logs"
)

// Default values, matching the command line defaults of earlier releases.
const (
	DefaultBindAddr        = "0.0.0.0:7278"
	DefaultBasePath        = "-"
	DefaultMaxPasteSize    = 32 * 1024
	DefaultBufferSize      = 1000
	DefaultReportInterval  = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogBufferSize   = 1000
)

// Environment variables that override the file configuration.
const (
	EnvBindAddr     = "BIN_BIND_ADDR"
	EnvBasePath     = "BIN_BASE_PATH"
	EnvMaxPasteSize = "BIN_MAX_PASTE_SIZE"
	EnvBufferSize   = "BIN_BUFFER_SIZE"
	EnvLogLevel     = "BIN_LOG_LEVEL"
	EnvListPastes   = "BIN_LIST_PASTES"
)

// DefaultEnvFile is loaded into the process environment when present.
const DefaultEnvFile = ".env"

// Config holds the whole server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds the HTTP transport settings.
type ServerConfig struct {
	// BindAddr is the host:port the HTTP server listens on.
	BindAddr string `yaml:"bind_addr"`

	// BasePath prefixes every paste route. "-" serves pastes at /-/{id}.
	BasePath string `yaml:"base_path"`

	// MaxPasteSize is the largest accepted request body in bytes.
	MaxPasteSize int64 `yaml:"max_paste_size"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// ListPastes mounts GET /admin/pastes, which lists every live id.
	// Off by default: anyone who can reach the server could enumerate pastes.
	ListPastes bool `yaml:"list_pastes"`
}

// StoreConfig sizes the paste store. It is read once at startup.
type StoreConfig struct {
	// BufferSize is the maximum number of live pastes before the oldest
	// are evicted.
	BufferSize int `yaml:"buffer_size"`

	// ReportInterval controls how often store occupancy is logged.
	ReportInterval time.Duration `yaml:"report_interval"`
}

// LogConfig controls the in-memory logger.
type LogConfig struct {
	// Level is one of debug | info | warn | error. It can change at runtime.
	Level string `yaml:"level"`

	// BufferSize is how many recent log entries are kept for /admin/health.
	BufferSize int `yaml:"buffer_size"`
}

// NormalizedBasePath returns the base path with a single leading slash and
// no trailing slash. The root path is returned as "".
func (s ServerConfig) NormalizedBasePath() string {
	p := strings.Trim(s.BasePath, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// LogLevel returns the parsed log level.
func (l LogConfig) LogLevel() logs.Level {
	level, err := logs.ParseLevel(l.Level)
	if err != nil {
		return logs.INFO
	}
	return level
}

// Defaults returns a Config pre-populated with default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddr:        DefaultBindAddr,
			BasePath:        DefaultBasePath,
			MaxPasteSize:    DefaultMaxPasteSize,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Store: StoreConfig{
			BufferSize:     DefaultBufferSize,
			ReportInterval: DefaultReportInterval,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			BufferSize: DefaultLogBufferSize,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then environment variables. envFiles are loaded into
// the environment first without overriding variables that are already set;
// with no envFiles, DefaultEnvFile is tried. Missing env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load env file %q: %w", f, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides cfg with any BIN_* variables found by lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBindAddr); ok && v != "" {
		cfg.Server.BindAddr = v
	}
	if v, ok := lookup(EnvBasePath); ok {
		cfg.Server.BasePath = v
	}
	if v, ok := lookup(EnvMaxPasteSize); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxPasteSize, err)
		}
		cfg.Server.MaxPasteSize = n
	}
	if v, ok := lookup(EnvBufferSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBufferSize, err)
		}
		cfg.Store.BufferSize = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvListPastes); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvListPastes, err)
		}
		cfg.Server.ListPastes = b
	}
	return nil
}

// Validate checks structural constraints on the configuration.
func Validate(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.BindAddr); err != nil {
		return fmt.Errorf("server.bind_addr %q: %w", cfg.Server.BindAddr, err)
	}
	if cfg.Server.MaxPasteSize <= 0 {
		return fmt.Errorf("server.max_paste_size must be positive, got %d", cfg.Server.MaxPasteSize)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if cfg.Store.BufferSize < 0 {
		return fmt.Errorf("store.buffer_size must not be negative, got %d", cfg.Store.BufferSize)
	}
	if cfg.Store.ReportInterval <= 0 {
		return fmt.Errorf("store.report_interval must be positive")
	}
	if _, err := logs.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Log.BufferSize < 0 {
		return fmt.Errorf("log.buffer_size must not be negative, got %d", cfg.Log.BufferSize)
	}
	return nil
}
