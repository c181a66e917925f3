package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yuri05/OSPSuite.Core/pkg/contracts"
)

func versionCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if full {
				fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), contracts.GetVersionString())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include build details")
	return cmd
}
