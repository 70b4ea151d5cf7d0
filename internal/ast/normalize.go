package ast

import (
	"bytes"
	"fmt"
	"sort"
)

// Normalize maps a query to its canonical representative. Two semantically
// equivalent queries (under commutativity of AND/OR, associativity of
// same-operator chains, double-negation elimination, and parameter insertion
// order) normalize to structurally equal values.
//
// Normalize is pure, total over well-formed queries, and idempotent. The
// result shares no mutable structure with the input.
func Normalize(q Query) Query {
	clauses := make([]Clause, len(q.Clauses))
	for i, c := range q.Clauses {
		clauses[i] = normalizeClause(c)
	}

	// Canonical clause-class order; stable so that multiple clauses of the
	// same class keep their relative input order.
	sort.SliceStable(clauses, func(i, j int) bool {
		return clauseRank(clauses[i]) < clauseRank(clauses[j])
	})

	params := make([]Param, len(q.Parameters))
	copy(params, q.Parameters)
	sort.SliceStable(params, func(i, j int) bool {
		return params[i].Name < params[j].Name
	})

	return Query{Clauses: clauses, Parameters: params}
}

// clauseRank assigns each clause type its fixed position class.
func clauseRank(c Clause) int {
	switch c.(type) {
	case Match:
		return 1
	case Where:
		return 2
	case Create:
		return 3
	case Delete:
		return 4
	case Set:
		return 5
	case With:
		return 6
	case Return:
		return 7
	case OrderBy:
		return 8
	case Skip:
		return 9
	case Limit:
		return 10
	default:
		panic(fmt.Sprintf("ast: unknown Clause type %T", c))
	}
}

func normalizeClause(c Clause) Clause {
	switch cl := c.(type) {
	case Match:
		return Match{Pattern: normalizePattern(cl.Pattern), Optional: cl.Optional}
	case Where:
		return Where{Cond: normalizeExpr(cl.Cond)}
	case Create:
		return Create{Pattern: normalizePattern(cl.Pattern)}
	case Delete:
		vars := make([]string, len(cl.Variables))
		copy(vars, cl.Variables)
		return Delete{Variables: vars, Detach: cl.Detach}
	case Set:
		assignments := make([]Assignment, len(cl.Assignments))
		for i, a := range cl.Assignments {
			assignments[i] = Assignment{
				Variable: a.Variable,
				Key:      a.Key,
				Value:    normalizeExpr(a.Value),
			}
		}
		sort.SliceStable(assignments, func(i, j int) bool {
			return assignments[i].Variable+"."+assignments[i].Key <
				assignments[j].Variable+"."+assignments[j].Key
		})
		return Set{Assignments: assignments}
	case With:
		return With{Items: normalizeReturnItems(cl.Items)}
	case Return:
		return Return{Items: normalizeReturnItems(cl.Items)}
	case OrderBy:
		items := make([]SortItem, len(cl.Items))
		for i, item := range cl.Items {
			items[i] = SortItem{Expr: normalizeExpr(item.Expr), Descending: item.Descending}
		}
		return OrderBy{Items: items}
	case Skip:
		return cl
	case Limit:
		return cl
	default:
		panic(fmt.Sprintf("ast: unknown Clause type %T", c))
	}
}

// normalizeReturnItems normalizes item expressions in place order.
// Projection order is caller-intended (column order) and preserved.
func normalizeReturnItems(items []ReturnItem) []ReturnItem {
	out := make([]ReturnItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.Expr != nil {
			out[i].Expr = normalizeExpr(item.Expr)
		}
	}
	return out
}

func normalizePattern(p Pattern) Pattern {
	switch pat := p.(type) {
	case NodePattern:
		labels := make([]string, len(pat.Labels))
		copy(labels, pat.Labels)
		sort.Strings(labels)
		return NodePattern{
			Variable:   pat.Variable,
			Labels:     labels,
			Properties: normalizeProperties(pat.Properties),
		}
	case RelPattern:
		return RelPattern{
			Variable:   pat.Variable,
			Type:       pat.Type,
			Direction:  pat.Direction,
			Properties: normalizeProperties(pat.Properties),
		}
	case Path:
		// Element sequence order is structurally meaningful, never reordered.
		elems := make([]Pattern, len(pat.Elements))
		for i, e := range pat.Elements {
			elems[i] = normalizePattern(e)
		}
		return Path{Elements: elems}
	default:
		panic(fmt.Sprintf("ast: unknown Pattern type %T", p))
	}
}

func normalizeProperties(props []PropertyEntry) []PropertyEntry {
	if props == nil {
		return nil
	}
	out := make([]PropertyEntry, len(props))
	for i, p := range props {
		out[i] = PropertyEntry{Key: p.Key, Value: normalizeExpr(p.Value)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// normalizeExpr rewrites an expression bottom-up:
//  1. NOT(NOT x) reduces to x
//  2. AND/OR with exactly two operands orders them by canonical bytes
//  3. AND/OR chains of more than two operands flatten to a sorted,
//     right-folded tree; descent stops at any differently-tagged node, so
//     each operator's commutativity applies at its own tree level only
//  4. everything else recurses into children, preserving operand order
func normalizeExpr(e Expr) Expr {
	switch ex := e.(type) {
	case Literal, Property, Parameter:
		return ex
	case UnaryOp:
		operand := normalizeExpr(ex.Operand)
		if ex.Op == OpNot {
			// Operand is already normalized bottom-up, so a single level of
			// NOT(NOT x) is the only shape left to reduce.
			if inner, ok := operand.(UnaryOp); ok && inner.Op == OpNot {
				return inner.Operand
			}
		}
		return UnaryOp{Op: ex.Op, Operand: operand}
	case BinaryOp:
		left := normalizeExpr(ex.Left)
		right := normalizeExpr(ex.Right)
		if ex.Op == OpAnd || ex.Op == OpOr {
			return normalizeCommutative(ex.Op, left, right)
		}
		return BinaryOp{Op: ex.Op, Left: left, Right: right}
	case Function:
		args := make([]Expr, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = normalizeExpr(a)
		}
		return Function{Name: ex.Name, Args: args}
	default:
		panic(fmt.Sprintf("ast: unknown Expr type %T", e))
	}
}

// normalizeCommutative canonicalizes an AND/OR node whose operands are
// already normalized.
func normalizeCommutative(op BinaryOperator, left, right Expr) Expr {
	operands := collectOperands(op, left, right)

	// Exactly two operands: pairwise swap only, no restructuring.
	if len(operands) == 2 {
		if bytes.Compare(exprBytes(left), exprBytes(right)) > 0 {
			left, right = right, left
		}
		return BinaryOp{Op: op, Left: left, Right: right}
	}

	// More than two: sort all leaves and rebuild as a right fold.
	sort.SliceStable(operands, func(i, j int) bool {
		return bytes.Compare(exprBytes(operands[i]), exprBytes(operands[j])) < 0
	})
	folded := operands[len(operands)-1]
	for i := len(operands) - 2; i >= 0; i-- {
		folded = BinaryOp{Op: op, Left: operands[i], Right: folded}
	}
	return folded
}

// collectOperands gathers the leaves of a same-operator chain. Descent stops
// at any node that is not a BinaryOp with the same operator.
func collectOperands(op BinaryOperator, exprs ...Expr) []Expr {
	var leaves []Expr
	for _, e := range exprs {
		if bin, ok := e.(BinaryOp); ok && bin.Op == op {
			leaves = append(leaves, collectOperands(op, bin.Left, bin.Right)...)
			continue
		}
		leaves = append(leaves, e)
	}
	return leaves
}
