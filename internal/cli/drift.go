package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cygnet/internal/ast"
	"github.com/roach88/cygnet/internal/cypher"
	"github.com/roach88/cygnet/internal/plandrift"
)

// DriftOptions holds flags shared by the drift subcommands.
type DriftOptions struct {
	*RootOptions
	Ledger string
}

// NewDriftCommand creates the drift command group.
func NewDriftCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DriftOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Record and compare query plan digests across versions",
	}

	cmd.PersistentFlags().StringVar(&opts.Ledger, "ledger", "plandrift.json", "path to the drift ledger file")

	cmd.AddCommand(newDriftRecordCommand(opts))
	cmd.AddCommand(newDriftCompareCommand(opts))

	return cmd
}

func newDriftRecordCommand(opts *DriftOptions) *cobra.Command {
	var version, planDigest string

	cmd := &cobra.Command{
		Use:           "record <query.json>",
		Short:         "Record a plan digest for a query under a version",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			q, err := loadQuery(args[0])
			if err != nil {
				return outputError(formatter, err)
			}

			normalized := ast.Normalize(q)
			compiled, err := cypher.Compile(normalized)
			if err != nil {
				return outputError(formatter, WrapExitError(ExitCommandError, ErrCodeCompile, err))
			}

			ledger := plandrift.NewLedger(opts.Ledger)
			hash := ast.Hash(normalized)
			if err := ledger.Record(hash, compiled.Text, planDigest, version); err != nil {
				return outputError(formatter, WrapExitError(ExitCommandError, ErrCodeStore, err))
			}

			if formatter.Format == "json" {
				return formatter.Success(map[string]string{
					"query_hash":  hash,
					"plan_digest": planDigest,
					"version":     version,
				})
			}
			fmt.Fprintf(formatter.Writer, "✓ Recorded %s @ %s (plan %s)\n", hash, version, planDigest)
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "software version the plan was captured under")
	cmd.Flags().StringVar(&planDigest, "plan-digest", "", "digest of the execution plan")
	_ = cmd.MarkFlagRequired("version")
	_ = cmd.MarkFlagRequired("plan-digest")

	return cmd
}

// DriftReportOutput is the compare command's JSON payload.
type DriftReportOutput struct {
	VersionA        string  `json:"version_a"`
	VersionB        string  `json:"version_b"`
	Compared        int     `json:"compared"`
	Drifted         int     `json:"drifted"`
	ChangedFraction float64 `json:"changed_fraction"`
	Exceeds         bool    `json:"exceeds_threshold"`
}

func newDriftCompareCommand(opts *DriftOptions) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "compare <version-a> <version-b>",
		Short: "Compare plan digests between two versions",
		Long: `Compare recorded plan digests between two named versions.

Exits with code 1 when the fraction of changed digests exceeds the
threshold percentage.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			ledger := plandrift.NewLedger(opts.Ledger)
			report, err := ledger.Compare(args[0], args[1])
			if err != nil {
				return outputError(formatter, WrapExitError(ExitCommandError, ErrCodeStore, err))
			}

			output := DriftReportOutput{
				VersionA:        report.VersionA,
				VersionB:        report.VersionB,
				Compared:        report.Compared,
				Drifted:         len(report.Drifted),
				ChangedFraction: report.ChangedFraction(),
				Exceeds:         report.Exceeds(threshold),
			}

			if formatter.Format == "json" {
				if err := formatter.Success(output); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(formatter.Writer, "Compared %d quer(ies) between %s and %s: %d drifted (%.1f%%)\n",
					output.Compared, output.VersionA, output.VersionB,
					output.Drifted, output.ChangedFraction*100)
				for _, d := range report.Drifted {
					fmt.Fprintf(formatter.Writer, "  %s: %s -> %s\n    %s\n",
						d.QueryHash, d.OldDigest, d.NewDigest, d.Text)
				}
			}

			if output.Exceeds {
				return NewExitError(ExitFailure,
					fmt.Sprintf("plan drift %.1f%% exceeds threshold %.1f%%",
						output.ChangedFraction*100, threshold))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 10, "drift percentage above which the command fails")

	return cmd
}
