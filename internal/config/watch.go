package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"pastebin/internal/logs"
)

// Watch calls onChange with the result of load every time the file at path
// is written or replaced, until ctx is cancelled. A failed load is logged
// and onChange is skipped, so the running config stays in effect.
//
// The parent directory is watched rather than the file: editors that save
// by writing a temp file and renaming it over path replace the inode, and a
// watch on the old inode would never fire again.
func Watch(
	ctx context.Context,
	path string,
	logger *logs.Logger,
	load func() (*Config, error),
	onChange func(*Config),
) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}
	defer watcher.Close()

	dir, name := filepath.Dir(path), filepath.Base(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("config: watch %q: %w", dir, err)
	}

	logger.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			// A rename over path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := load()
			if err != nil {
				logger.Error("config: reload failed, keeping running config", "path", path, "err", err)
				continue
			}

			logger.Info("config: reloaded", "path", path, "op", event.Op.String())
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config: watcher error", "err", err)
		}
	}
}

// Reloader applies the runtime-tunable parts of a reloaded config.
// Store capacity is fixed at startup; a changed buffer_size is only reported.
type Reloader struct {
	logger     *logs.Logger
	bufferSize int
}

// NewReloader creates a Reloader for a server started with current.
func NewReloader(current *Config, logger *logs.Logger) *Reloader {
	return &Reloader{
		logger:     logger,
		bufferSize: current.Store.BufferSize,
	}
}

// Apply is suitable as the onChange callback of Watch.
func (r *Reloader) Apply(cfg *Config) {
	level := cfg.Log.LogLevel()
	if level != r.logger.Level() {
		r.logger.SetLevel(level)
		r.logger.Info("config: log level changed", "level", string(level))
	}

	if cfg.Store.BufferSize != r.bufferSize {
		r.logger.Warn("config: store.buffer_size changes require a restart",
			"running", r.bufferSize, "configured", cfg.Store.BufferSize)
	}
}
