package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
}

// UpdateResult reports a completed rebuild for JSON output.
type UpdateResult struct {
	Entries int    `json:"entries"`
	Source  string `json:"source"`
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Download and rebuild the local name-number index",
		Long: `Download the published asteroid name-number dump and rebuild the local
index from it.

The swap is transactional: lookups running concurrently see either the
old index or the new one. Expect the download to take a while; the dump
covers every known minor body.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, cmd)
		},
	}

	return cmd
}

func runUpdate(opts *UpdateOptions, cmd *cobra.Command) error {
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

	formatter.VerboseLog("downloading index from %s", app.cfg.IndexURL)
	dump, err := app.client.DownloadIndex(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to download index", err)
	}
	defer dump.Close()

	ix, err := app.openIndex()
	if err != nil {
		return err
	}
	defer ix.Close()

	entries, err := ix.Rebuild(cmd.Context(), dump, app.cfg.IndexURL)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to rebuild index", err)
	}

	result := UpdateResult{Entries: entries, Source: app.cfg.IndexURL}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Indexed %d bodies\n", result.Entries)
	return nil
}
