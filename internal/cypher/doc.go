// Package cypher renders query IR trees to Cypher text plus a parameter
// mapping. The renderer is a mechanical, deterministic traversal: it never
// reorders or restructures its input, so callers that want canonical text
// must normalize first.
package cypher
