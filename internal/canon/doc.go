// Package canon defines the constrained value vocabulary shared by query
// parameters and AST serialization, and the canonical byte encoding used
// for expression ordering and hashing.
//
// The encoding is the single source of truth for identity: two AST nodes
// are considered equal for normalization purposes exactly when their
// canonical bytes are equal.
package canon
