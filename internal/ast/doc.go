// Package ast defines the query intermediate representation: a closed,
// tree-shaped vocabulary for Cypher expressions, patterns, and clauses,
// plus the normalization pass that maps semantically equivalent trees to
// one canonical representative and the digest derived from it.
//
// The unions are sealed with marker methods so that the normalizer and the
// compiler can type-switch exhaustively; a tag outside the union is a
// programming error, never a recoverable runtime condition.
package ast
