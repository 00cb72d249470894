package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"sdnscreen/internal/config"
)

// loadConfig reads the project file. A missing file at the default location
// falls back to the built-in defaults so the pipeline runs without init.
func loadConfig() (*config.ProjectConfig, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && configPath == config.DefaultFileName {
		return config.Default(), nil
	}
	return nil, err
}

func newLogger(cfg *config.ProjectConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Logging.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
