package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "cgx")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "conversations.json", cfg.InputPath)
	assert.Equal(t, "export", cfg.OutputDir)
	assert.Equal(t, "abort", cfg.OnError)
	assert.Equal(t, 50, cfg.MaxTitleLen)
	assert.False(t, cfg.CRLF)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, filepath.Join(home, ".config", "cgx", "config.toml"), cfg.Path())
}

func TestLoad_File(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, `
input_path = "~/Downloads/conversations.json"
output_dir = "/tmp/chats"
on_error = "continue"
max_title_len = 30
crlf = true
log_level = "debug"
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Downloads", "conversations.json"), cfg.InputPath)
	assert.Equal(t, "/tmp/chats", cfg.OutputDir)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	opts := cfg.ExportOptions(nil)
	assert.Equal(t, export.Continue, opts.OnError)
	assert.Equal(t, 30, opts.MaxTitleLen)
	assert.True(t, opts.CRLF)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, `on_error = "retry"`)

	_, err := Load()
	assert.ErrorContains(t, err, "unknown error policy")
}

func TestLoad_MalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, `output_dir = `)

	_, err := Load()
	assert.ErrorContains(t, err, "parse config")
}

func TestLevel_Unknown(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}
