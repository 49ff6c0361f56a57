package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DocsURL is where the rocks documentation lives.
const DocsURL = "https://rocks.readthedocs.io/en/latest/"

// NewDocsCommand creates the docs command.
func NewDocsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "docs",
		Short:         "Print the documentation URL",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}
			if formatter.Format == "json" {
				return formatter.Success(map[string]string{"url": DocsURL})
			}
			fmt.Fprintln(formatter.Writer, DocsURL)
			return nil
		},
	}

	return cmd
}
