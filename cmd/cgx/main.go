package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/config"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/scan"
	"github.com/spf13/cobra"
)

var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	input   string
	verbose bool
}

func main() {
	var gf globalFlags

	rootCmd := &cobra.Command{
		Use:           "cgx",
		Short:         "ChatGPT Exporter - export conversations from a chat data export to CSV",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&gf.input, "input", "i", "", "conversations.json, export .zip, or a directory containing one")
	rootCmd.PersistentFlags().BoolVarP(&gf.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(listCmd(&gf))
	rootCmd.AddCommand(exportCmd(&gf))
	rootCmd.AddCommand(previewCmd(&gf))
	rootCmd.AddCommand(searchCmd(&gf))
	rootCmd.AddCommand(browseCmd(&gf))
	rootCmd.AddCommand(doctorCmd(&gf))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var le *archive.LoadError
		if errors.As(err, &le) {
			fmt.Fprintln(os.Stderr, le.Hint())
		}
		os.Exit(1)
	}
}

// setup loads config and configures the default logger.
func setup(gf *globalFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if gf.input != "" {
		cfg.InputPath = gf.input
	}

	level := cfg.Level()
	if gf.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// loadArchive resolves the configured input and loads it.
func loadArchive(cfg *config.Config, logger *slog.Logger) (*archive.Archive, error) {
	path, err := scan.FindArchive(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("find archive in %s: %w", cfg.InputPath, err)
	}
	if path != cfg.InputPath {
		logger.Debug("resolved input", "dir", cfg.InputPath, "archive", path)
	}

	a, err := archive.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("archive loaded", "path", path, "conversations", a.Len())
	return a, nil
}
