// Package cmd provides Cobra CLI commands for keel.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keelbrowser/keel/internal/cli"
)

var (
	app     *cli.App
	rootCmd = &cobra.Command{
		Use:   "keel",
		Short: "Session persistence and history engine for a tabbed browser",
		Long: `Keel keeps a browsing session durably synchronized with on-disk
storage: windows, tabs, canonical places and visit history.

The graphical shell embeds keel as a library; this CLI inspects and
maintains the same store.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}
