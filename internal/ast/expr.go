package ast

import "github.com/roach88/cygnet/internal/canon"

// Expr is a sealed interface over expression nodes.
//
// Expression types:
//   - Literal: an inline constant value
//   - Property: variable.key access
//   - Parameter: a $name placeholder resolved at execution time
//   - BinaryOp: infix operator over two operands
//   - UnaryOp: prefix (NOT, -) or postfix (IS NULL) operator
//   - Function: name(args...) call
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// BinaryOperator is the closed set of infix operators.
type BinaryOperator string

const (
	OpEq         BinaryOperator = "="
	OpNotEq      BinaryOperator = "<>"
	OpLess       BinaryOperator = "<"
	OpLessEq     BinaryOperator = "<="
	OpGreater    BinaryOperator = ">"
	OpGreaterEq  BinaryOperator = ">="
	OpAnd        BinaryOperator = "AND"
	OpOr         BinaryOperator = "OR"
	OpXor        BinaryOperator = "XOR"
	OpAdd        BinaryOperator = "+"
	OpSub        BinaryOperator = "-"
	OpMul        BinaryOperator = "*"
	OpDiv        BinaryOperator = "/"
	OpMod        BinaryOperator = "%"
	OpStartsWith BinaryOperator = "STARTS WITH"
	OpEndsWith   BinaryOperator = "ENDS WITH"
	OpContains   BinaryOperator = "CONTAINS"
	OpIn         BinaryOperator = "IN"
	OpRegex      BinaryOperator = "=~"
)

// UnaryOperator is the closed set of single-operand operators.
type UnaryOperator string

const (
	OpNot       UnaryOperator = "NOT"
	OpNegate    UnaryOperator = "-"
	OpIsNull    UnaryOperator = "IS NULL"
	OpIsNotNull UnaryOperator = "IS NOT NULL"
)

// Literal is an inline constant value.
type Literal struct {
	Value canon.Value
}

func (Literal) exprNode() {}

// Property references a key on a bound variable, rendered as "var.key".
// Construction does not check that the variable is bound by a preceding
// MATCH; referential consistency is the caller's responsibility.
type Property struct {
	Var string
	Key string
}

func (Property) exprNode() {}

// Parameter references a named query parameter, rendered as "$name".
type Parameter struct {
	Name string
}

func (Parameter) exprNode() {}

// BinaryOp applies an infix operator to two operands.
// AND and OR are commutative and subject to canonical operand ordering;
// all other operators preserve operand order.
type BinaryOp struct {
	Op    BinaryOperator
	Left  Expr
	Right Expr
}

func (BinaryOp) exprNode() {}

// UnaryOp applies a single-operand operator.
type UnaryOp struct {
	Op      UnaryOperator
	Operand Expr
}

func (UnaryOp) exprNode() {}

// Function is a function invocation, rendered as "name(arg, arg, ...)".
// Argument order is semantically meaningful and never reordered.
type Function struct {
	Name string
	Args []Expr
}

func (Function) exprNode() {}
