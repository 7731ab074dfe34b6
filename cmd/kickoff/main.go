// Command kickoff is the single binary providing Kickoff's client, worker,
// and server roles, dispatched by subcommand: "new", "cancel", "info",
// "list", "stats", "worker", and "server".
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		printc(colorRed, "Error: %v\n", err)
		os.Exit(-1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kickoff",
		Short: "A minimalistic task dispatch system for heterogeneous compute clusters",
		Long: "\"Kickoff\" is a minimalistic, highly efficient task dispatch system for\n" +
			"heterogeneous compute clusters, mapping tasks to machines with matching\n" +
			"capabilities. Kickoff does not manage distribution of task executables or\n" +
			"payloads, and does not capture task stdout; both are the task's own\n" +
			"responsibility. Worker processes may run anywhere with network access to\n" +
			"the central server and advertise a set of resource tags, which tasks use\n" +
			"to express what kind of machine they require.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newNewCmd(),
		newCancelCmd(),
		newInfoCmd(),
		newListCmd(),
		newStatsCmd(),
		newWorkerCmd(),
		newServerCmd(),
	)
	return root
}
