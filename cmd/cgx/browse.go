package main

import (
	"github.com/Zuo-Peng/chatgpt-exporter/internal/tui"
	"github.com/spf13/cobra"
)

func browseCmd(gf *globalFlags) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Pick conversations interactively and export them",
		Long:  `Opens a TUI listing every conversation. Type to filter, Tab to select, Enter to export the selection, Ctrl-Y to copy the highlighted transcript.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(gf)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.OutputDir = outDir
			}
			a, err := loadArchive(cfg, logger)
			if err != nil {
				return err
			}

			return tui.Run(a, tui.Settings{
				OutputDir: cfg.OutputDir,
				Export:    cfg.ExportOptions(nil), // log lines would tear the alt screen
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")

	return cmd
}
