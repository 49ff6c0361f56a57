package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
}

// ClearResult reports what was removed for JSON output.
type ClearResult struct {
	CardsRemoved int   `json:"cards_removed"`
	BytesFreed   int64 `json:"bytes_freed"`
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached ssoCards and the local index",
		Long: `Remove all cached ssoCards and the local name-number index.

Everything in the cache can be re-downloaded: cards are fetched again
on demand and 'rocks update' rebuilds the index.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(opts, cmd)
		},
	}

	return cmd
}

func runClear(opts *ClearOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	app, err := newApp(opts.RootOptions)
	if err != nil {
		return err
	}

	inv, err := app.cache.Inventory()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to inspect cache", err)
	}

	if err := app.cache.Clear(); err != nil {
		return WrapExitError(ExitCommandError, "failed to clear cache", err)
	}

	result := ClearResult{
		CardsRemoved: inv.Cards,
		BytesFreed:   inv.CardsSize + inv.IndexSize,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Removed %d cached ssoCards and the local index (%s freed)\n",
		result.CardsRemoved, byteSize(result.BytesFreed))
	return nil
}
