package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-go/vai-assistant/pkg/core/voice/device"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio capture and playback devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			capture, playback, err := device.ListDevices()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printDevices(out, "Capture", capture)
			printDevices(out, "Playback", playback)
			return nil
		},
	}
}

func printDevices(w io.Writer, heading string, devices []device.Info) {
	fmt.Fprintf(w, "%s:\n", heading)
	if len(devices) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, d := range devices {
		mark := " "
		if d.IsDefault {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %s\n", mark, d.Name)
	}
}
