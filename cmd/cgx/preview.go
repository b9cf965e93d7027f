package main

import (
	"fmt"
	"strconv"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/render"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/transcript"
	"github.com/spf13/cobra"
)

func previewCmd(gf *globalFlags) *cobra.Command {
	var hit, context int
	var query string
	var hideSystem bool

	cmd := &cobra.Command{
		Use:   "preview <index>",
		Short: "Preview a conversation transcript with context around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}

			cfg, logger, err := setup(gf)
			if err != nil {
				return err
			}
			a, err := loadArchive(cfg, logger)
			if err != nil {
				return err
			}
			if idx < 0 || idx >= a.Len() {
				return fmt.Errorf("conversation %d not found (archive has %d)", idx, a.Len())
			}

			conv := a.Conversations[idx]
			out, _ := render.RenderTranscript(conv.Title, transcript.Extract(conv.Mapping), render.Options{
				HitEntry:   hit,
				Context:    context,
				Query:      query,
				HideSystem: hideSystem,
			})
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hit, "hit", -1, "Message number to highlight")
	cmd.Flags().IntVar(&context, "context", -1, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().BoolVar(&hideSystem, "hide-system", false, "Hide system messages")

	return cmd
}
