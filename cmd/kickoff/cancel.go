package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/judnich/Kickoff/internal/taskclient"
)

func newCancelCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "cancel <hex id>",
		Short: "request cancellation of a running task",
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

			if err := client.MarkShouldCancel(id); err != nil {
				return fmt.Errorf("failed to mark task for cancellation; task may not exist (already canceled, finished, or never started): %w", err)
			}

			printc(colorGreen, "Success! Canceled task: ")
			printlnc(colorLightGreen, formatTaskID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "task server address, host[:port] (required)")
	return cmd
}
