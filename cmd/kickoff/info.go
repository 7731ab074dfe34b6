package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/judnich/Kickoff/internal/taskclient"
)

func newInfoCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "info <hex id>",
		Short: "print a task's current status and schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseServerAddr(server)
			if err != nil {
				return err
			}
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			client, err := taskclient.Dial(addr)
			if err != nil {
				return err
			}
			defer client.Close()

			status, err := client.GetStatus(id)
			if err != nil {
				return fmt.Errorf("failed to retrieve task info; task may not exist (canceled, finished, or never started): %w", err)
			}
			schedule, err := client.GetSchedule(id)
			if err != nil {
				return fmt.Errorf("retrieved status but not schedule: %w", err)
			}

			bright, dim := stateColors(status.State())
			printc(bright, "%s", formatTaskID(id))
			printlnc(dim, ": "+status.Summary())
			printlnc(dim, schedule.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "task server address, host[:port] (required)")
	return cmd
}
