// Package history persists query execution records to SQLite for the
// stats tooling. Records carry the canonical AST digest so executions of
// semantically equivalent queries group under one key.
package history
