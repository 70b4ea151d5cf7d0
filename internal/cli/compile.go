package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cygnet/internal/ast"
	"github.com/roach88/cygnet/internal/cypher"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Raw bool // render the tree as authored, skipping normalization
}

// CompileOutput is the compile command's payload.
type CompileOutput struct {
	Hash   string         `json:"hash"`
	Text   string         `json:"text"`
	Params map[string]any `json:"params"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query.json>",
		Short: "Compile a query AST file to Cypher text",
		Long: `Compile a JSON-encoded query AST to Cypher text and a parameter mapping.

The query is normalized to canonical form before rendering unless --raw
is given, so equivalent trees always produce identical text.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "render as authored, without normalizing")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	q, err := loadQuery(path)
	if err != nil {
		return outputError(formatter, err)
	}
	formatter.VerboseLog("Loaded query with %d clause(s), %d parameter(s)", len(q.Clauses), len(q.Parameters))

	rendered := q
	if !opts.Raw {
		rendered = ast.Normalize(q)
	}

	result, err := cypher.Compile(rendered)
	if err != nil {
		return outputError(formatter, WrapExitError(ExitCommandError, ErrCodeCompile, err))
	}

	output := CompileOutput{
		Hash:   ast.Hash(q),
		Text:   result.Text,
		Params: result.Params,
	}

	if formatter.Format == "json" {
		return formatter.Success(output)
	}

	fmt.Fprintf(formatter.Writer, "hash:   %s\n", output.Hash)
	fmt.Fprintf(formatter.Writer, "text:   %s\n", output.Text)
	if len(output.Params) > 0 {
		fmt.Fprintf(formatter.Writer, "params: %v\n", output.Params)
	}
	return nil
}

// loadQuery reads and decodes a JSON query AST file.
func loadQuery(path string) (ast.Query, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ast.Query{}, WrapExitError(ExitCommandError, ErrCodeNotFound,
			fmt.Errorf("query file not found: %s", path))
	}
	if err != nil {
		return ast.Query{}, WrapExitError(ExitCommandError, ErrCodeGeneric, err)
	}

	q, err := ast.UnmarshalQuery(data)
	if err != nil {
		return ast.Query{}, WrapExitError(ExitCommandError, ErrCodeBadQuery, err)
	}
	return q, nil
}

// outputError emits the error in the requested format and returns it for
// the exit-code path.
func outputError(formatter *OutputFormatter, err error) error {
	var exitErr *ExitError
	code := ErrCodeGeneric
	message := err.Error()
	if errors.As(err, &exitErr) {
		code = exitErr.Message
		if exitErr.Err != nil {
			message = exitErr.Err.Error()
		}
	}

	if formatter.Format == "json" {
		_ = formatter.Error(code, message)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s: %s\n", code, message)
	}
	return err
}
