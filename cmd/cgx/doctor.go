package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/scan"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/transcript"
	"github.com/spf13/cobra"
)

func doctorCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, input archive, and output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(gf)
			if err != nil {
				return err
			}

			fmt.Println("=== Config ===")
			if _, err := os.Stat(cfg.Path()); err != nil {
				fmt.Printf("  File:   %s (not present, using defaults)\n", cfg.Path())
			} else {
				fmt.Printf("  File:   %s (OK)\n", cfg.Path())
			}
			fmt.Printf("  Policy: on_error=%s max_title_len=%d crlf=%t\n", cfg.OnError, cfg.MaxTitleLen, cfg.CRLF)

			fmt.Println("\n=== Input ===")
			path, err := scan.FindArchive(cfg.InputPath)
			if err != nil {
				fmt.Printf("  %s: %v\n", cfg.InputPath, err)
			} else {
				checkArchive(path)
			}

			fmt.Println("\n=== Output ===")
			checkOutputDir(cfg.OutputDir)

			return nil
		},
	}
}

func checkArchive(path string) {
	fmt.Printf("  Path: %s\n", path)
	if info, err := os.Stat(path); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		fmt.Printf("  Size: %.1f MB\n", sizeMB)
	}

	a, err := archive.Load(path)
	if err != nil {
		fmt.Printf("  Status: %v\n", err)
		return
	}

	messages, empty := 0, 0
	roles := make(map[string]int)
	for _, c := range a.Conversations {
		entries := transcript.Extract(c.Mapping)
		if len(entries) == 0 {
			empty++
		}
		messages += len(entries)
		for role, n := range transcript.Stats(entries) {
			roles[role] += n
		}
	}
	fmt.Printf("  Conversations: %d (%d empty)\n", a.Len(), empty)
	fmt.Printf("  Messages:      %d\n", messages)
	for _, role := range []string{"user", "assistant", "system", "tool"} {
		if n := roles[role]; n > 0 {
			fmt.Printf("    %-10s %d\n", role, n)
		}
	}
	fmt.Println("  Status: OK")
}

func checkOutputDir(dir string) {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		fmt.Printf("  %s (will be created on export)\n", dir)
		return
	case err != nil:
		fmt.Printf("  %s: %v\n", dir, err)
		return
	case !info.IsDir():
		fmt.Printf("  %s (NOT A DIRECTORY)\n", dir)
		return
	}

	probe, err := os.CreateTemp(dir, ".cgx-doctor-*")
	if err != nil {
		fmt.Printf("  %s (NOT WRITABLE: %v)\n", dir, err)
		return
	}
	probe.Close()
	os.Remove(probe.Name())

	existing, _ := filepath.Glob(filepath.Join(dir, "*.csv"))
	fmt.Printf("  %s (OK, %d csv files)\n", dir, len(existing))
}
