package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/search"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorDim     = "\033[2m"
)

func colorizeRole(role string) string {
	switch role {
	case "user":
		return sColorBlue + role + sColorReset
	case "assistant":
		return sColorGreen + role + sColorReset
	default:
		return role
	}
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd(gf *globalFlags) *cobra.Command {
	var role string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search conversation titles and messages",
		Long: `Case-insensitive substring search over titles and message text.
Opens the browser when stdout is a terminal. Output is TSV for fzf integration otherwise:
  index, message, updated, role, title, snippet

Example:
  cgx search "$*" | fzf \
    --ansi --delimiter='\t' --with-nth=3.. \
    --preview 'cgx preview {1} --hit {2} --context 5 --query {q}' \
    --bind 'enter:execute(cgx export {1})'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(gf)
			if err != nil {
				return err
			}
			a, err := loadArchive(cfg, logger)
			if err != nil {
				return err
			}

			opts := search.Options{
				Role:  role,
				Limit: limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(a, tui.Settings{
					Query:     args[0],
					Search:    opts,
					OutputDir: cfg.OutputDir,
					Export:    cfg.ExportOptions(nil), // log lines would tear the alt screen
				})
			}

			opts.Query = args[0]
			results := search.Search(a, opts)
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				snippet = strings.ReplaceAll(snippet, "\n", " ")
				snippet = colorizeSnippet(snippet)
				title := strings.ReplaceAll(r.Title, "\t", " ")
				role := r.Role
				if role == "" {
					role = "-"
				}
				// first two fields (index, message) stay plain for fzf {1} {2}
				fmt.Printf("%d\t%d\t%s%s%s\t%s\t%s\t%s\n",
					r.Index,
					r.EntryIndex,
					sColorDim, r.UpdatedAt, sColorReset,
					colorizeRole(role),
					title,
					snippet,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Filter by role (user/assistant/system/tool)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
