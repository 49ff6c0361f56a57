package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JulienPeloton/rocks/internal/index"
)

// Indexes older than this get a refresh hint in the status output. New
// discoveries are numbered continuously, so a month-old index starts
// missing recent designations.
const staleIndexAge = 30 * 24 * time.Hour

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
}

// StatusResult summarizes the cache contents for JSON output.
type StatusResult struct {
	CacheDir     string `json:"cache_dir"`
	IndexBuilt   bool   `json:"index_built"`
	IndexEntries int64  `json:"index_entries"`
	IndexAliases int64  `json:"index_aliases"`
	IndexBuiltAt string `json:"index_built_at,omitempty"`
	IndexSource  string `json:"index_source,omitempty"`
	IndexSize    int64  `json:"index_size_bytes"`
	Cards        int    `json:"cards"`
	CardsSize    int64  `json:"cards_size_bytes"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the cache and index inventory",
		Long: `Show what the cache directory currently holds: the number of cached
ssoCards and the state of the local name-number index.

The command is read-only. Use 'rocks update' to rebuild the index and
'rocks clear' to wipe the cache.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
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

	result := StatusResult{
		CacheDir:  app.cache.Dir(),
		Cards:     inv.Cards,
		CardsSize: inv.CardsSize,
		IndexSize: inv.IndexSize,
	}

	// Stat first: status must not create an index that is not there yet.
	if _, err := os.Stat(app.cache.IndexPath()); err == nil {
		ix, err := index.Open(app.cache.IndexPath())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open local index", err)
		}
		defer ix.Close()

		st, err := ix.Stats(cmd.Context())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read index stats", err)
		}
		result.IndexBuilt = !st.BuiltAt.IsZero()
		result.IndexEntries = st.Entries
		result.IndexAliases = st.Aliases
		result.IndexSource = st.Source
		if !st.BuiltAt.IsZero() {
			result.IndexBuiltAt = st.BuiltAt.Format(time.RFC3339)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputStatusText(formatter, result)
}

func outputStatusText(formatter *OutputFormatter, result StatusResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Contents of %s:\n\n", result.CacheDir)
	fmt.Fprintf(w, "  %d ssoCards (%s)\n", result.Cards, byteSize(result.CardsSize))

	if !result.IndexBuilt {
		fmt.Fprintln(w, "  Asteroid name-number index: never built")
		color.New(color.FgYellow).Fprintln(w, "\nRun 'rocks update' to download and build the name-number index.")
		return nil
	}

	builtAt, err := time.Parse(time.RFC3339, result.IndexBuiltAt)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse index build date", err)
	}

	fmt.Fprintf(w, "  Asteroid name-number index: %d entries, %d aliases (%s)\n",
		result.IndexEntries, result.IndexAliases, byteSize(result.IndexSize))
	fmt.Fprintf(w, "  Built %s from %s\n", builtAt.Format("02 Jan 2006"), result.IndexSource)

	if time.Since(builtAt) > staleIndexAge {
		color.New(color.FgYellow).Fprintf(w, "\nThe index is %d days old. Run 'rocks update' to refresh it.\n",
			int(time.Since(builtAt).Hours()/24))
	}
	return nil
}

// byteSize renders a byte count in a human-readable unit.
func byteSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
