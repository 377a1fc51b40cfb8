package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the Cobra command for displaying the application version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mcp-fleet",
		Long:  `All software has versions. This is mcp-fleet's.`,
		Run: func(cmd *cobra.Command, args []string) {
			// rootCmd.Version is set by main.go at build time.
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mcp-fleet version %s\n", rootCmd.Version)
		},
	}
}
