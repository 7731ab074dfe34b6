package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/judnich/Kickoff/internal/taskclient"
	"github.com/judnich/Kickoff/model"
)

func newListCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list pending/running/canceling tasks (debug tool for small deployments)",
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

			tasks, err := client.GetTasksByStates([]model.TaskState{
				model.TaskPending, model.TaskRunning, model.TaskCanceling,
			})
			if err != nil {
				return fmt.Errorf("task list is not available because the total number of tasks is too large; " +
					"this command is meant for small-scale debugging, not large clusters")
			}

			printlnc(colorWhite, "Tasks Status")
			printlnc(colorYellow, "This command is meant as a debugging tool for small-scale deployments; "+
				"it intentionally fails when the server holds a large number of tasks.")

			for _, t := range tasks {
				bright, dim := stateColors(t.Status.State())
				printc(bright, "%s", formatTaskID(t.ID))
				printlnc(dim, ": "+t.Status.Summary())
			}
			if len(tasks) == 0 {
				printlnc(colorLightCyan, "No tasks.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "task server address, host[:port] (required)")
	return cmd
}
