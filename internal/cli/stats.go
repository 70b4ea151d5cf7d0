package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cygnet/internal/history"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	DB    string
	Limit int
}

// StatsRow is one aggregated entry in the stats output.
type StatsRow struct {
	QueryHash  string `json:"query_hash"`
	Text       string `json:"text"`
	Count      int64  `json:"count"`
	AvgLatency string `json:"avg_latency"`
	MaxLatency string `json:"max_latency"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show execution statistics grouped by query digest",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "cygnet.db", "path to the execution history database")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of digests to show")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	store, err := history.Open(opts.DB)
	if err != nil {
		return outputError(formatter, WrapExitError(ExitCommandError, ErrCodeStore, err))
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return outputError(formatter, WrapExitError(ExitCommandError, ErrCodeStore, err))
	}
	if opts.Limit > 0 && len(stats) > opts.Limit {
		stats = stats[:opts.Limit]
	}

	rows := make([]StatsRow, len(stats))
	for i, st := range stats {
		rows[i] = StatsRow{
			QueryHash:  st.QueryHash,
			Text:       st.Text,
			Count:      st.Count,
			AvgLatency: st.AvgLatency.String(),
			MaxLatency: st.MaxLatency.String(),
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(formatter.Writer, "No executions recorded")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(formatter.Writer, "%s  n=%d  avg=%s  max=%s\n  %s\n",
			row.QueryHash, row.Count, row.AvgLatency, row.MaxLatency, row.Text)
	}
	return nil
}
