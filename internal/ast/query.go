package ast

import "github.com/roach88/cygnet/internal/canon"

// Param is one named query parameter. Parameters are an ordered entry list;
// callers may append in any order, normalization sorts entries by name.
type Param struct {
	Name  string
	Value canon.Value
}

// Query is the top-level IR value: an ordered clause list plus a parameter
// mapping. Queries are plain values - Normalize returns a structurally
// independent copy and never mutates its input.
type Query struct {
	Clauses    []Clause
	Parameters []Param
}

// NewQuery builds a query from clauses in the given order.
func NewQuery(clauses ...Clause) Query {
	return Query{Clauses: clauses}
}

// WithParam returns a copy of the query with one parameter appended.
// The value is converted via canon.FromAny; an unconvertible value is a
// programming error and panics.
func (q Query) WithParam(name string, value any) Query {
	params := make([]Param, len(q.Parameters), len(q.Parameters)+1)
	copy(params, q.Parameters)
	params = append(params, Param{Name: name, Value: canon.MustFromAny(value)})
	return Query{Clauses: q.Clauses, Parameters: params}
}
