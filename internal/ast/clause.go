package ast

// Clause is a sealed interface over top-level query clauses.
//
// Each clause type belongs to exactly one position class in the canonical
// clause order; see Normalize.
type Clause interface {
	clauseNode() // Marker method - seals interface to this package
}

// Match selects graph elements matching a pattern.
type Match struct {
	Pattern  Pattern
	Optional bool
}

func (Match) clauseNode() {}

// Where filters rows by a boolean condition.
type Where struct {
	Cond Expr
}

func (Where) clauseNode() {}

// Create creates the given pattern.
type Create struct {
	Pattern Pattern
}

func (Create) clauseNode() {}

// Delete removes the named variables. Detach additionally removes
// attached relationships.
type Delete struct {
	Variables []string
	Detach    bool
}

func (Delete) clauseNode() {}

// Assignment is one "variable.key = value" update inside a SET clause.
type Assignment struct {
	Variable string
	Key      string
	Value    Expr
}

// Set applies property assignments.
type Set struct {
	Assignments []Assignment
}

func (Set) clauseNode() {}

// ReturnItem is one projection of a RETURN or WITH clause: either a bare
// variable or an expression, optionally aliased. Exactly one of Variable
// and Expr is set.
type ReturnItem struct {
	Variable string
	Expr     Expr
	Alias    string
}

// With projects intermediate results. Item order is caller-intended and
// preserved by normalization.
type With struct {
	Items []ReturnItem
}

func (With) clauseNode() {}

// Return projects the query result. Item order is caller-intended and
// preserved by normalization (column order matters).
type Return struct {
	Items []ReturnItem
}

func (Return) clauseNode() {}

// SortItem is one ordering key of an ORDER BY clause.
type SortItem struct {
	Expr       Expr
	Descending bool
}

// OrderBy sorts the result rows.
type OrderBy struct {
	Items []SortItem
}

func (OrderBy) clauseNode() {}

// Skip drops the first Count rows.
type Skip struct {
	Count int64
}

func (Skip) clauseNode() {}

// Limit caps the result to Count rows.
type Limit struct {
	Count int64
}

func (Limit) clauseNode() {}
