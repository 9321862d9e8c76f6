package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-go/vai-assistant/pkg/config"
)

func newSayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>",
		Short: "Speak text through the configured voice and speaker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSpeechFromEnv()
			if err != nil {
				return err
			}

			speaker := newSpeaker(cfg, newSink(cfg), newConsole(cmd.OutOrStdout()), nil)
			speaker.Speak(cmd.Context(), strings.Join(args, " "))
			return nil
		},
	}
}
