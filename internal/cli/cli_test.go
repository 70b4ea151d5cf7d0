package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cygnet/internal/ast"
)

func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeQueryFile(t *testing.T, q ast.Query) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.json")
	require.NoError(t, os.WriteFile(path, ast.MarshalQuery(q), 0o644))
	return path
}

func adultsQuery() ast.Query {
	return ast.NewQuery(
		ast.Returns("p"),
		ast.Where{Cond: ast.Gte(ast.Prop("p", "age"), ast.ParamRef("minAge"))},
		ast.Match{Pattern: ast.Node("p", "Person")},
	).WithParam("minAge", 18)
}

func TestCompileCommandText(t *testing.T) {
	path := writeQueryFile(t, adultsQuery())

	stdout, _, err := runCommand(t, "compile", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "MATCH (p:Person) WHERE p.age >= $minAge RETURN p")
	assert.Contains(t, stdout, "hash:")
	assert.Contains(t, stdout, "params:")
}

func TestCompileCommandJSON(t *testing.T) {
	path := writeQueryFile(t, adultsQuery())

	stdout, _, err := runCommand(t, "--format", "json", "compile", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "MATCH (p:Person) WHERE p.age >= $minAge RETURN p", data["text"])
	assert.Regexp(t, `^[0-9a-f]{8}$`, data["hash"])
}

func TestCompileCommandRaw(t *testing.T) {
	path := writeQueryFile(t, ast.NewQuery(
		ast.Returns("p"),
		ast.Match{Pattern: ast.Node("p", "Person")},
	))

	stdout, _, err := runCommand(t, "compile", "--raw", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "RETURN p MATCH (p:Person)")
}

func TestCompileCommandMissingFile(t *testing.T) {
	stdout, _, err := runCommand(t, "compile", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeNotFound)
}

func TestCompileCommandBadQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clauses":[{"kind":"merge"}]}`), 0o644))

	_, _, err := runCommand(t, "compile", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHashCommand(t *testing.T) {
	path := writeQueryFile(t, adultsQuery())

	stdout, _, err := runCommand(t, "hash", path)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{8}\n$`, stdout)
}

func TestHashCommandEquivalentQueries(t *testing.T) {
	a := writeQueryFile(t, adultsQuery())
	b := writeQueryFile(t, ast.NewQuery(
		ast.Match{Pattern: ast.Node("p", "Person")},
		ast.Where{Cond: ast.Gte(ast.Prop("p", "age"), ast.ParamRef("minAge"))},
		ast.Returns("p"),
	).WithParam("minAge", 18))

	outA, _, err := runCommand(t, "hash", a)
	require.NoError(t, err)
	outB, _, err := runCommand(t, "hash", b)
	require.NoError(t, err)
	assert.Equal(t, outA, outB)
}

func TestInvalidFormatRejected(t *testing.T) {
	path := writeQueryFile(t, adultsQuery())
	_, _, err := runCommand(t, "--format", "xml", "hash", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestDriftRecordAndCompare(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "ledger.json")
	path := writeQueryFile(t, adultsQuery())

	_, _, err := runCommand(t, "drift", "record", path,
		"--ledger", ledger, "--version", "5.20", "--plan-digest", "plan-1")
	require.NoError(t, err)

	_, _, err = runCommand(t, "drift", "record", path,
		"--ledger", ledger, "--version", "5.21", "--plan-digest", "plan-1")
	require.NoError(t, err)

	stdout, _, err := runCommand(t, "drift", "compare", "5.20", "5.21",
		"--ledger", ledger)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 quer(ies)")
	assert.Contains(t, stdout, "0 drifted")
}

func TestDriftCompareExceedsThreshold(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "ledger.json")
	path := writeQueryFile(t, adultsQuery())

	_, _, err := runCommand(t, "drift", "record", path,
		"--ledger", ledger, "--version", "5.20", "--plan-digest", "plan-1")
	require.NoError(t, err)
	_, _, err = runCommand(t, "drift", "record", path,
		"--ledger", ledger, "--version", "5.21", "--plan-digest", "plan-2")
	require.NoError(t, err)

	stdout, _, err := runCommand(t, "drift", "compare", "5.20", "5.21",
		"--ledger", ledger, "--threshold", "50")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "plan-1 -> plan-2")
}

func TestDriftRecordRequiresFlags(t *testing.T) {
	path := writeQueryFile(t, adultsQuery())
	_, _, err := runCommand(t, "drift", "record", path)
	require.Error(t, err)
}

func TestStatsCommandEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	stdout, _, err := runCommand(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No executions recorded")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "check failed")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad input", errors.New("cause"))))
}

func TestExitErrorMessage(t *testing.T) {
	err := WrapExitError(ExitCommandError, "load query", errors.New("no such file"))
	assert.Equal(t, "load query: no such file", err.Error())
	assert.Equal(t, "no such file", errors.Unwrap(err).Error())

	bare := NewExitError(ExitFailure, "threshold exceeded")
	assert.Equal(t, "threshold exceeded", bare.Error())
}
