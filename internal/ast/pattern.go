package ast

// Pattern is a sealed interface over graph pattern elements.
type Pattern interface {
	patternNode() // Marker method - seals interface to this package
}

// Direction indicates relationship orientation in a pattern.
type Direction string

const (
	DirOut  Direction = "out"
	DirIn   Direction = "in"
	DirBoth Direction = "both"
)

// PropertyEntry is one key/value pair of a pattern property map.
// Properties are an ordered entry list rather than a Go map so that the
// canonical key order established by normalization survives into rendering.
type PropertyEntry struct {
	Key   string
	Value Expr
}

// NodePattern matches a node, rendered as "(var:Label1:Label2 {k: v})".
type NodePattern struct {
	Variable   string
	Labels     []string
	Properties []PropertyEntry
}

func (NodePattern) patternNode() {}

// RelPattern matches a relationship between two adjacent nodes.
// Variable and Type may be empty for anonymous/untyped relationships.
type RelPattern struct {
	Variable   string
	Type       string
	Direction  Direction
	Properties []PropertyEntry
}

func (RelPattern) patternNode() {}

// Path is an alternating node/relationship sequence. Adjacency validity is
// not enforced structurally; it must hold for the compiled text to be a
// valid Cypher pattern.
type Path struct {
	Elements []Pattern
}

func (Path) patternNode() {}
