package config

import (
	"flag"
	"fmt"
)

// Flags are the command line overrides. Only flags set explicitly on the
// command line replace file and environment values.
type Flags struct {
	ConfigPath   string
	BufferSize   int
	MaxPasteSize int64
	BasePath     string
	LogLevel     string
}

// RegisterFlags defines the server flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "path to a YAML config file (optional)")
	fs.IntVar(&f.BufferSize, "buffer-size", DefaultBufferSize, "maximum amount of pastes to store before rotating")
	fs.Int64Var(&f.MaxPasteSize, "max-paste-size", DefaultMaxPasteSize, "maximum paste size in bytes")
	fs.StringVar(&f.BasePath, "base-path", DefaultBasePath, "base path for the application")
	fs.StringVar(&f.LogLevel, "log-level", DefaultLogLevel, "log level: debug|info|warn|error")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] [bind_addr]\n\na pastebin.\n\n", fs.Name())
		fs.PrintDefaults()
	}
	return f
}

// Apply copies explicitly set flags, and the optional positional bind
// address, onto cfg and re-validates it. fs must already be parsed.
func (f *Flags) Apply(cfg *Config, fs *flag.FlagSet) error {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "buffer-size":
			cfg.Store.BufferSize = f.BufferSize
		case "max-paste-size":
			cfg.Server.MaxPasteSize = f.MaxPasteSize
		case "base-path":
			cfg.Server.BasePath = f.BasePath
		case "log-level":
			cfg.Log.Level = f.LogLevel
		}
	})

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Server.BindAddr = fs.Arg(0)
	default:
		return fmt.Errorf("config: unexpected arguments %v", fs.Args()[1:])
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Reload returns a loader for Watch that re-reads the config file and
// re-applies the command line on top, so a reload resolves to the same
// overrides as startup. fs must be the set f was registered on.
func (f *Flags) Reload(fs *flag.FlagSet) func() (*Config, error) {
	return func() (*Config, error) {
		cfg, err := Load(f.ConfigPath)
		if err != nil {
			return nil, err
		}
		if err := f.Apply(cfg, fs); err != nil {
			return nil, err
		}
		return cfg, nil
	}
}
