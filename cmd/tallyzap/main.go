// Command tallyzap runs the inventory command core: it reads commands from
// the console or the web view and persists them through a single worker.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "tallyzap",
		Short:        "Inventory command core",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd.Context(), configPath, "")
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: search for config.toml)")

	root.AddCommand(newRunCommand(&configPath), newVersionCommand())
	root.SetErr(os.Stderr)
	return root
}

func newRunCommand(configPath *string) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the worker and the configured views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd.Context(), *configPath, mode)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "view mode: console, web or both (overrides config)")
	return cmd
}

