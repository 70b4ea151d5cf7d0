package ast

import "fmt"

// Hash derives a short stable digest from a query's canonical form:
// normalize, serialize to canonical bytes, then run a DJB2-style rolling
// hash (seed 5381, multiply by 33, XOR byte) masked to 32 bits and
// hex-encoded to 8 lowercase characters.
//
// Semantically equivalent queries hash identically; this follows from
// Normalize correctness plus encoding determinism. The digest is a
// cache/telemetry grouping key, not a cryptographic integrity check.
func Hash(q Query) string {
	data := CanonicalBytes(Normalize(q))
	var h uint32 = 5381
	for _, b := range data {
		h = h*33 ^ uint32(b)
	}
	return fmt.Sprintf("%08x", h)
}
