package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JulienPeloton/rocks/internal/resolver"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions
	Fresh bool
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info <identifier>",
		Short: "Print the ssoCard of a minor body",
		Long: `Resolve an identifier and print the ssoCard of the matching body.

Cards are cached on disk after the first fetch; --fresh bypasses the
cache and re-downloads the card from SsODNet.

Example:
  rocks info Ceres
  rocks info "2004 ES" --fresh --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "bypass the card cache and query SsODNet")

	return cmd
}

func runInfo(opts *InfoOptions, input string, cmd *cobra.Command) error {
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
	res, closeIndex, err := app.newResolver()
	if err != nil {
		return err
	}
	defer closeIndex()

	resolution, err := res.IdentifyOne(cmd.Context(), resolver.FromString(input), resolver.Options{
		IncludeID: true,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "resolution aborted", err)
	}
	if resolution.ID == "" {
		msg := fmt.Sprintf("could not identify %q", input)
		_ = formatter.Error(ErrCodeUnresolved, msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	formatter.VerboseLog("identified %s as %s", input, resolution)

	card, err := fetchCard(cmd.Context(), app, opts, resolution.ID, formatter)
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(card)
	}
	return printCard(formatter, card)
}

// fetchCard returns the ssoCard for an id, preferring the disk cache unless
// --fresh is set. Fetched cards are written back to the cache; a write
// failure is logged but does not fail the command.
func fetchCard(ctx context.Context, app *app, opts *InfoOptions, id string, formatter *OutputFormatter) (json.RawMessage, error) {
	if !opts.Fresh {
		card, ok, err := app.cache.GetCard(id)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read card cache", err)
		}
		if ok {
			formatter.VerboseLog("using cached ssoCard for %s", id)
			return card, nil
		}
	}

	card, err := app.client.Card(ctx, id)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to fetch ssoCard for %s", id), err)
	}
	if err := app.cache.PutCard(id, card); err != nil {
		slog.Warn("failed to cache ssoCard", "id", id, "error", err)
	}
	return card, nil
}

// printCard pretty-prints a card for text output.
func printCard(formatter *OutputFormatter, card json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, card, "", "  "); err != nil {
		// Not valid JSON; print it verbatim rather than hiding it.
		fmt.Fprintln(formatter.Writer, string(card))
		return nil
	}
	fmt.Fprintln(formatter.Writer, buf.String())
	return nil
}
