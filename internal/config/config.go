package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/export"
)

type Config struct {
	InputPath   string `toml:"input_path"`
	OutputDir   string `toml:"output_dir"`
	OnError     string `toml:"on_error"`
	MaxTitleLen int    `toml:"max_title_len"`
	CRLF        bool   `toml:"crlf"`
	LogLevel    string `toml:"log_level"`

	path string // config file consulted, set even if it does not exist
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputPath:   "conversations.json",
		OutputDir:   "export",
		OnError:     string(export.Abort),
		MaxTitleLen: export.DefaultMaxTitleLen,
		LogLevel:    "info",
		path:        filepath.Join(home, ".config", "cgx", "config.toml"),
	}

	if _, err := os.Stat(cfg.path); err == nil {
		if _, err := toml.DecodeFile(cfg.path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfg.path, err)
		}
	}

	if _, err := export.ParsePolicy(cfg.OnError); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfg.path, err)
	}
	if cfg.MaxTitleLen < 0 {
		return nil, fmt.Errorf("config %s: max_title_len must not be negative", cfg.path)
	}

	// expand ~ in paths
	cfg.InputPath = expandHome(cfg.InputPath, home)
	cfg.OutputDir = expandHome(cfg.OutputDir, home)

	return cfg, nil
}

// Path returns the config file location.
func (c *Config) Path() string {
	return c.path
}

// ExportOptions builds export options from the config.
func (c *Config) ExportOptions(logger *slog.Logger) export.Options {
	policy, _ := export.ParsePolicy(c.OnError)
	return export.Options{
		OnError:     policy,
		MaxTitleLen: c.MaxTitleLen,
		CRLF:        c.CRLF,
		Logger:      logger,
	}
}

// Level maps log_level to a slog level; unknown names mean info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
