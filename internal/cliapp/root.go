// Package cliapp wires the three faasrun subcommands (init, build, run) onto
// a Cobra root command.
package cliapp

import (
	"github.com/spf13/cobra"
)

// NewRoot builds the faasrun root command.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "faasrun",
		Short: "Bundle and serve multi-tenant script handlers",
	}
	root.AddCommand(newInitCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newRunCmd())
	return root
}
