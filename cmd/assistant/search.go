package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-go/vai-assistant/pkg/core/music"
	"github.com/vango-go/vai-assistant/pkg/core/session"
)

func newSearchCmd() *cobra.Command {
	var (
		maxResults int
		ytdlpPath  string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for songs and print the result list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxResults < 1 || maxResults > music.MaxPosition {
				return fmt.Errorf("--max must be between 1 and %d", music.MaxPosition)
			}
			if ytdlpPath == "" {
				ytdlpPath = strings.TrimSpace(os.Getenv("ASSISTANT_YTDLP_PATH"))
			}
			catalog := newCatalog(ytdlpPath, timeout, session.DefaultPhrases(), nil, nil)
			tracks, err := catalog.Search(cmd.Context(), strings.Join(args, " "), maxResults)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tracks) == 0 {
				fmt.Fprintln(out, "no results")
				return nil
			}
			for i, t := range tracks {
				fmt.Fprintf(out, "%d. %s (%s)  %s\n", i+1, t.Title, t.Duration(), t.SourceURL)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max", music.MaxPosition, "number of results (1-5)")
	cmd.Flags().StringVar(&ytdlpPath, "ytdlp", "", "path to the yt-dlp binary (default $ASSISTANT_YTDLP_PATH or yt-dlp)")
	cmd.Flags().DurationVar(&timeout, "timeout", 20*time.Second, "search timeout")
	return cmd
}
