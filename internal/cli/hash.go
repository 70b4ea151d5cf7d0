package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cygnet/internal/ast"
)

// HashOutput is the hash command's payload.
type HashOutput struct {
	Hash string `json:"hash"`
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <query.json>",
		Short: "Print the canonical AST digest of a query",
		Long: `Print the 8-character canonical AST digest of a JSON-encoded query.

Semantically equivalent queries (commutative operand order, parameter
insertion order, double negation) produce the same digest.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			q, err := loadQuery(args[0])
			if err != nil {
				return outputError(formatter, err)
			}

			digest := ast.Hash(q)
			if formatter.Format == "json" {
				return formatter.Success(HashOutput{Hash: digest})
			}
			fmt.Fprintln(formatter.Writer, digest)
			return nil
		},
	}
	return cmd
}
