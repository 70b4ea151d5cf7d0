package ast

import (
	"fmt"

	"github.com/roach88/cygnet/internal/canon"
)

// Encode converts a Query to its canon.Value form: a tagged object tree
// with a fixed field layout per node kind. This encoding is the single
// serialization used for commutative operand ordering, digest computation,
// and AST JSON I/O - there must never be a second one.

// EncodeQuery encodes a query. Clause and parameter order is preserved
// exactly as given; encode after Normalize to obtain canonical bytes.
func EncodeQuery(q Query) canon.Value {
	clauses := make(canon.List, len(q.Clauses))
	for i, c := range q.Clauses {
		clauses[i] = encodeClause(c)
	}
	params := make(canon.List, len(q.Parameters))
	for i, p := range q.Parameters {
		params[i] = canon.Map{
			"name":  canon.String(p.Name),
			"value": p.Value,
		}
	}
	return canon.Map{
		"clauses": clauses,
		"params":  params,
	}
}

// CanonicalBytes returns the canonical byte encoding of a query as given.
// It does not normalize first.
func CanonicalBytes(q Query) []byte {
	return canon.Marshal(EncodeQuery(q))
}

func encodeExpr(e Expr) canon.Value {
	switch ex := e.(type) {
	case Literal:
		return canon.Map{
			"kind":  canon.String("literal"),
			"value": ex.Value,
		}
	case Property:
		return canon.Map{
			"kind": canon.String("property"),
			"var":  canon.String(ex.Var),
			"key":  canon.String(ex.Key),
		}
	case Parameter:
		return canon.Map{
			"kind": canon.String("parameter"),
			"name": canon.String(ex.Name),
		}
	case BinaryOp:
		return canon.Map{
			"kind":  canon.String("binary"),
			"op":    canon.String(ex.Op),
			"left":  encodeExpr(ex.Left),
			"right": encodeExpr(ex.Right),
		}
	case UnaryOp:
		return canon.Map{
			"kind":    canon.String("unary"),
			"op":      canon.String(ex.Op),
			"operand": encodeExpr(ex.Operand),
		}
	case Function:
		args := make(canon.List, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = encodeExpr(a)
		}
		return canon.Map{
			"kind": canon.String("function"),
			"name": canon.String(ex.Name),
			"args": args,
		}
	default:
		panic(fmt.Sprintf("ast: unknown Expr type %T", e))
	}
}

// exprBytes is the total order key for commutative operand sorting:
// full canonical bytes, compared lexically. Ties are broken by the bytes
// themselves, never by identity or insertion order.
func exprBytes(e Expr) []byte {
	return canon.Marshal(encodeExpr(e))
}

func encodeProperties(props []PropertyEntry) canon.List {
	out := make(canon.List, len(props))
	for i, p := range props {
		out[i] = canon.Map{
			"key":   canon.String(p.Key),
			"value": encodeExpr(p.Value),
		}
	}
	return out
}

func encodePattern(p Pattern) canon.Value {
	switch pat := p.(type) {
	case NodePattern:
		labels := make(canon.List, len(pat.Labels))
		for i, l := range pat.Labels {
			labels[i] = canon.String(l)
		}
		return canon.Map{
			"kind":   canon.String("node"),
			"var":    canon.String(pat.Variable),
			"labels": labels,
			"props":  encodeProperties(pat.Properties),
		}
	case RelPattern:
		return canon.Map{
			"kind":      canon.String("rel"),
			"var":       canon.String(pat.Variable),
			"type":      canon.String(pat.Type),
			"direction": canon.String(pat.Direction),
			"props":     encodeProperties(pat.Properties),
		}
	case Path:
		elems := make(canon.List, len(pat.Elements))
		for i, e := range pat.Elements {
			elems[i] = encodePattern(e)
		}
		return canon.Map{
			"kind":     canon.String("path"),
			"elements": elems,
		}
	default:
		panic(fmt.Sprintf("ast: unknown Pattern type %T", p))
	}
}

func encodeReturnItems(items []ReturnItem) canon.List {
	out := make(canon.List, len(items))
	for i, item := range items {
		m := canon.Map{
			"alias": canon.String(item.Alias),
		}
		if item.Expr != nil {
			m["expr"] = encodeExpr(item.Expr)
		} else {
			m["var"] = canon.String(item.Variable)
		}
		out[i] = m
	}
	return out
}

func encodeClause(c Clause) canon.Value {
	switch cl := c.(type) {
	case Match:
		return canon.Map{
			"kind":     canon.String("match"),
			"optional": canon.Bool(cl.Optional),
			"pattern":  encodePattern(cl.Pattern),
		}
	case Where:
		return canon.Map{
			"kind": canon.String("where"),
			"cond": encodeExpr(cl.Cond),
		}
	case Create:
		return canon.Map{
			"kind":    canon.String("create"),
			"pattern": encodePattern(cl.Pattern),
		}
	case Delete:
		vars := make(canon.List, len(cl.Variables))
		for i, v := range cl.Variables {
			vars[i] = canon.String(v)
		}
		return canon.Map{
			"kind":   canon.String("delete"),
			"detach": canon.Bool(cl.Detach),
			"vars":   vars,
		}
	case Set:
		assignments := make(canon.List, len(cl.Assignments))
		for i, a := range cl.Assignments {
			assignments[i] = canon.Map{
				"var":   canon.String(a.Variable),
				"key":   canon.String(a.Key),
				"value": encodeExpr(a.Value),
			}
		}
		return canon.Map{
			"kind":        canon.String("set"),
			"assignments": assignments,
		}
	case With:
		return canon.Map{
			"kind":  canon.String("with"),
			"items": encodeReturnItems(cl.Items),
		}
	case Return:
		return canon.Map{
			"kind":  canon.String("return"),
			"items": encodeReturnItems(cl.Items),
		}
	case OrderBy:
		items := make(canon.List, len(cl.Items))
		for i, item := range cl.Items {
			items[i] = canon.Map{
				"expr": encodeExpr(item.Expr),
				"desc": canon.Bool(item.Descending),
			}
		}
		return canon.Map{
			"kind":  canon.String("orderby"),
			"items": items,
		}
	case Skip:
		return canon.Map{
			"kind":  canon.String("skip"),
			"count": canon.Int(cl.Count),
		}
	case Limit:
		return canon.Map{
			"kind":  canon.String("limit"),
			"count": canon.Int(cl.Count),
		}
	default:
		panic(fmt.Sprintf("ast: unknown Clause type %T", c))
	}
}
