package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/search"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func listCmd(gf *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations with their selection index",
		Long: `Prints one line per conversation: index, last update date, message count, title.
Use the index with 'cgx export' and 'cgx preview'. Output is TSV when piped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(gf)
			if err != nil {
				return err
			}
			a, err := loadArchive(cfg, logger)
			if err != nil {
				return err
			}

			results := search.ListAll(a, search.Options{Limit: limit})
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No conversations found.")
				return nil
			}

			tty := term.IsTerminal(int(os.Stdout.Fd()))
			for _, r := range results {
				title := strings.ReplaceAll(r.Title, "\t", " ")
				if tty {
					fmt.Printf("%4d  %s%s%s  %4d  %s\n", r.Index, sColorDim, r.UpdatedAt, sColorReset, r.Entries, title)
				} else {
					fmt.Printf("%d\t%s\t%d\t%s\n", r.Index, r.UpdatedAt, r.Entries, title)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max conversations (0 = no limit)")

	return cmd
}
