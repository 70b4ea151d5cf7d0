package ast

import "github.com/roach88/cygnet/internal/canon"

// Construction helpers. All helpers are infallible: they produce
// well-formed values and perform no cross-referential validation.

// Lit builds a literal from a plain Go value.
// Panics if the value is outside the canon vocabulary.
func Lit(v any) Literal {
	return Literal{Value: canon.MustFromAny(v)}
}

// Prop builds a "var.key" property access.
func Prop(variable, key string) Property {
	return Property{Var: variable, Key: key}
}

// ParamRef builds a "$name" parameter reference.
func ParamRef(name string) Parameter {
	return Parameter{Name: name}
}

// And builds a boolean conjunction.
func And(left, right Expr) BinaryOp {
	return BinaryOp{Op: OpAnd, Left: left, Right: right}
}

// Or builds a boolean disjunction.
func Or(left, right Expr) BinaryOp {
	return BinaryOp{Op: OpOr, Left: left, Right: right}
}

// Not builds a logical negation.
func Not(operand Expr) UnaryOp {
	return UnaryOp{Op: OpNot, Operand: operand}
}

// Eq builds an equality comparison.
func Eq(left, right Expr) BinaryOp {
	return BinaryOp{Op: OpEq, Left: left, Right: right}
}

// Gte builds a greater-or-equal comparison.
func Gte(left, right Expr) BinaryOp {
	return BinaryOp{Op: OpGreaterEq, Left: left, Right: right}
}

// Lte builds a less-or-equal comparison.
func Lte(left, right Expr) BinaryOp {
	return BinaryOp{Op: OpLessEq, Left: left, Right: right}
}

// Call builds a function invocation.
func Call(name string, args ...Expr) Function {
	return Function{Name: name, Args: args}
}

// Node builds a node pattern with optional labels.
func Node(variable string, labels ...string) NodePattern {
	return NodePattern{Variable: variable, Labels: labels}
}

// Rel builds a relationship pattern.
func Rel(variable, relType string, dir Direction) RelPattern {
	return RelPattern{Variable: variable, Type: relType, Direction: dir}
}

// PathOf builds a path from alternating node/relationship elements.
func PathOf(elements ...Pattern) Path {
	return Path{Elements: elements}
}

// Entry builds one property map entry.
func Entry(key string, value Expr) PropertyEntry {
	return PropertyEntry{Key: key, Value: value}
}

// Returns builds a RETURN clause projecting the named variables.
func Returns(variables ...string) Return {
	items := make([]ReturnItem, len(variables))
	for i, v := range variables {
		items[i] = ReturnItem{Variable: v}
	}
	return Return{Items: items}
}
