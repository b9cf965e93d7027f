package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd(gf *globalFlags) *cobra.Command {
	var outDir, onError string
	var all, crlf bool
	var maxTitle int

	cmd := &cobra.Command{
		Use:   "export [INDEX|A-B]...",
		Short: "Export selected conversations to CSV files",
		Long: `Writes each selected conversation to <out>/<title>.csv (UTF-8 with BOM),
with a "role,content" header and one row per message in conversation order.

Indices come from 'cgx list'. Ranges are inclusive: 'cgx export 0 3-5'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(gf)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.OutputDir = outDir
			}
			if cmd.Flags().Changed("on-error") {
				cfg.OnError = onError
			}
			if cmd.Flags().Changed("crlf") {
				cfg.CRLF = crlf
			}
			if cmd.Flags().Changed("max-title") {
				cfg.MaxTitleLen = maxTitle
			}
			if _, err := export.ParsePolicy(cfg.OnError); err != nil {
				return err
			}

			a, err := loadArchive(cfg, logger)
			if err != nil {
				return err
			}

			var indices []int
			if all {
				for i := range a.Conversations {
					indices = append(indices, i)
				}
			} else {
				indices, err = parseSelection(args, a.Len())
				if err != nil {
					return err
				}
			}

			res, err := export.Export(a, indices, cfg.OutputDir, cfg.ExportOptions(logger))
			if errors.Is(err, export.ErrNoSelection) {
				fmt.Fprintln(os.Stderr, "Please select at least one conversation to export.")
				return nil
			}
			if res != nil {
				for _, p := range res.Written {
					fmt.Fprintf(os.Stderr, "  wrote %s\n", p)
				}
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Selected conversations have been exported to '%s'.\n", res.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&onError, "on-error", "", "On a failed file: abort or continue")
	cmd.Flags().BoolVar(&all, "all", false, "Export every conversation")
	cmd.Flags().BoolVar(&crlf, "crlf", false, "Terminate CSV records with CRLF")
	cmd.Flags().IntVar(&maxTitle, "max-title", 0, "Max title characters in file names")

	return cmd
}

// parseSelection turns "3", "5-7" style arguments into indices. Every index
// is checked against n before a range is expanded.
func parseSelection(args []string, n int) ([]int, error) {
	var indices []int
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			lo, hi, isRange := strings.Cut(field, "-")
			if !isRange {
				i, err := strconv.Atoi(field)
				if err != nil {
					return nil, fmt.Errorf("invalid index %q", field)
				}
				if err := checkIndex(i, n); err != nil {
					return nil, err
				}
				indices = append(indices, i)
				continue
			}

			from, err1 := strconv.Atoi(lo)
			to, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil || from > to {
				return nil, fmt.Errorf("invalid range %q", field)
			}
			if err := checkIndex(to, n); err != nil {
				return nil, err
			}
			if err := checkIndex(from, n); err != nil {
				return nil, err
			}
			for i := from; i <= to; i++ {
				indices = append(indices, i)
			}
		}
	}
	return indices, nil
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d (archive has %d conversations)", export.ErrIndexOutOfRange, i, n)
	}
	return nil
}
