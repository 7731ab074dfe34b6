package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/judnich/Kickoff/internal/taskclient"
)

func newStatsCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "print the server's task counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseServerAddr(server)
			if err != nil {
				return err
			}

			client, err := taskclient.Dial(addr)
			if err != nil {
				return err
			}
			defer client.Close()

			stats, err := client.GetStats()
			if err != nil {
				return fmt.Errorf("failed to retrieve task server stats; server may not be responding: %w", err)
			}

			printc(colorLightCyan, "%d", stats.NumPending)
			printlnc(colorCyan, " tasks pending")
			printc(colorLightGreen, "%d", stats.NumRunning)
			printlnc(colorGreen, " tasks running")
			printc(colorLightRed, "%d", stats.NumCanceling)
			printlnc(colorRed, " tasks canceling")
			printc(colorLightMagenta, "%d", stats.NumFinished)
			printlnc(colorMagenta, " tasks finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "task server address, host[:port] (required)")
	return cmd
}
