package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/judnich/Kickoff/internal/taskclient"
	"github.com/judnich/Kickoff/model"
)

func newNewCmd() *cobra.Command {
	var server, require, want string

	cmd := &cobra.Command{
		Use:   "new <cmd> [<cmd args>...]",
		Short: "enqueue a new task",
		Args:  cobra.MinimumNArgs(1),
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

			printc(colorCyan, "Creating task\n")
			id, err := client.Create(model.TaskCreateInfo{
				Command:  strings.Join(args, " "),
				Schedule: model.NewTaskSchedule(parseTags(require), parseTags(want)),
			})
			if err != nil {
				return err
			}

			printc(colorGreen, "Success! Created task: ")
			printlnc(colorLightGreen, formatTaskID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "task server address, host[:port] (required)")
	cmd.Flags().StringVar(&require, "require", "", "resource tags this task requires, separated by space/comma/semicolon")
	cmd.Flags().StringVar(&want, "want", "", "resource tags this task prefers but does not require")
	return cmd
}
