package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JulienPeloton/rocks/internal/resolver"
)

// IDOptions holds flags for the id command.
type IDOptions struct {
	*RootOptions
	IncludeIDs bool
	RemoteOnly bool
	Progress   bool
}

// IDResult pairs one input with its resolution for JSON output.
type IDResult struct {
	Input  string `json:"input"`
	Name   string `json:"name,omitempty"`
	Number int64  `json:"number,omitempty"`
	ID     string `json:"id,omitempty"`
	Found  bool   `json:"found"`
}

// NewIDCommand creates the id command.
func NewIDCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IDOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "id <identifier>...",
		Aliases: []string{"identify"},
		Short:   "Resolve asteroid names and numbers",
		Long: `Resolve asteroid names, numbers and designations to their canonical
name and number.

Each argument is resolved as one identifier; quote designations that
contain spaces. Identifiers the local index cannot answer are sent to
the SsODNet quaero service. An identifier that cannot be resolved at
all reports "not found" in its position without failing the batch.

Example:
  rocks id Ceres
  rocks id 1 vesta "2004 ES" --ids
  rocks id Bennu --remote-only --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runID(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.IncludeIDs, "ids", false, "include SsODNet ids in the output")
	cmd.Flags().BoolVar(&opts.RemoteOnly, "remote-only", false, "skip the local index and query the remote service directly")
	cmd.Flags().BoolVar(&opts.Progress, "progress", false, "show a progress bar while the batch resolves")

	return cmd
}

func runID(opts *IDOptions, args []string, cmd *cobra.Command) error {
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

	results, err := res.Identify(cmd.Context(), resolver.CoerceAll(args), resolver.Options{
		IncludeID:      opts.IncludeIDs,
		SkipLocal:      opts.RemoteOnly,
		ShowProgress:   opts.Progress,
		ProgressOutput: cmd.ErrOrStderr(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "resolution aborted", err)
	}

	return outputIDResults(formatter, args, results)
}

// outputIDResults renders one line (or one JSON record) per input, in
// input order. Unresolved identifiers report "not found" in place; the
// command still exits zero, mirroring the per-element soft-fail contract
// of the resolver.
func outputIDResults(formatter *OutputFormatter, inputs []string, results []resolver.Resolution) error {
	if formatter.Format == "json" {
		records := make([]IDResult, len(results))
		for i, res := range results {
			records[i] = IDResult{
				Input:  inputs[i],
				Name:   res.Name,
				Number: res.Number,
				ID:     res.ID,
				Found:  res.Resolved(),
			}
		}
		return formatter.Success(records)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	for i, res := range results {
		if !res.Resolved() {
			red.Fprintf(formatter.Writer, "%s: not found\n", inputs[i])
			continue
		}
		line := res.String()
		if res.ID != "" {
			line = fmt.Sprintf("%s [%s]", line, res.ID)
		}
		green.Fprintln(formatter.Writer, line)
	}
	return nil
}
