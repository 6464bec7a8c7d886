package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"queueclip/src/config"
	"queueclip/src/control"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "queueclip",
		Short:   "Paste a multi-line clipboard one item at a time",
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			runResident()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start the resident tray application",
		Run: func(cmd *cobra.Command, args []string) {
			runResident()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the running instance's queue state",
		Run: func(cmd *cobra.Command, args []string) {
			delegate(control.CmdStatus, "")
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "next",
		Short: "Paste the next item into the focused window",
		Run: func(cmd *cobra.Command, args []string) {
			delegate(control.CmdNext, "")
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop all pending items",
		Run: func(cmd *cobra.Command, args []string) {
			delegate(control.CmdClear, "")
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "toggle-loop",
		Short: "Toggle loop mode",
		Run: func(cmd *cobra.Command, args []string) {
			delegate(control.CmdToggleLoop, "")
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("queueclip %s\n", version)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "load [file]",
		Short: "Load items into the queue from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var data []byte
			var err error
			if len(args) == 1 && args[0] != "-" {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			delegate(control.CmdLoad, string(data))
		},
	})

	return root
}

// delegate sends one command to the resident instance and prints its reply.
func delegate(command, payload string) {
	// Load .env early so QUEUECLIP_PORT_* are applied before the scan.
	_, _ = config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	delegated, reply, err := control.NewClient().Send(ctx, command, payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if !delegated {
		fmt.Fprintln(os.Stderr, "queueclip is not running")
		os.Exit(1)
	}
	fmt.Print(reply)
}
