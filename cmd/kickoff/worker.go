package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/judnich/Kickoff/internal/logging"
	"github.com/judnich/Kickoff/internal/taskclient"
	"github.com/judnich/Kickoff/internal/taskworker"
)

func newWorkerCmd() *cobra.Command {
	var server, have string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "run a worker that pulls and executes matching tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseServerAddr(server)
			if err != nil {
				return err
			}

			logging.Init("kickoff-worker")
			session, err := uuid.NewV7()
			if err != nil {
				session = uuid.New()
			}
			log := logging.Log.With().Str("session", session.String()).Logger()

			client, err := taskclient.Dial(addr)
			if err != nil {
				return err
			}
			defer client.Close()

			w := taskworker.New(client, parseTags(have), log)

			sigCh := make(chan os.Signal, 2)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				printc(colorYellow, "Control-C detected while the worker is running; shutting down gracefully. "+
					"Press Control-C again to terminate immediately along with the task running within.\n")
				w.Stop()

				<-sigCh
				printc(colorRed, "Control-C detected again. Terminating immediately!\n")
				os.Exit(-2)
			}()

			if err := w.Run(context.Background()); err != nil && err != context.Canceled {
				return err
			}

			printlnc(colorLightGreen, "Worker was gracefully shut down!")
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "task server address, host[:port] (required)")
	cmd.Flags().StringVar(&have, "have", "", "resource tags this worker possesses, separated by space/comma/semicolon")
	return cmd
}
