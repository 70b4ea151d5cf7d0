package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/cygnet/internal/canon"
)

// JSON I/O for query trees. The wire shape is exactly the canonical
// encoding produced by EncodeQuery, so MarshalQuery(UnmarshalQuery(b))
// round-trips byte-identically for canonical input.

var binaryOps = map[BinaryOperator]bool{
	OpEq: true, OpNotEq: true, OpLess: true, OpLessEq: true,
	OpGreater: true, OpGreaterEq: true, OpAnd: true, OpOr: true,
	OpXor: true, OpAdd: true, OpSub: true, OpMul: true, OpDiv: true,
	OpMod: true, OpStartsWith: true, OpEndsWith: true, OpContains: true,
	OpIn: true, OpRegex: true,
}

var unaryOps = map[UnaryOperator]bool{
	OpNot: true, OpNegate: true, OpIsNull: true, OpIsNotNull: true,
}

// MarshalQuery serializes a query to JSON in canonical encoding.
func MarshalQuery(q Query) []byte {
	return CanonicalBytes(q)
}

// UnmarshalQuery parses a JSON-encoded query tree.
func UnmarshalQuery(data []byte) (Query, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Query{}, fmt.Errorf("parse query JSON: %w", err)
	}

	root, err := asObject(raw)
	if err != nil {
		return Query{}, fmt.Errorf("query: %w", err)
	}

	var q Query
	clauses, err := asArray(root["clauses"])
	if err != nil {
		return Query{}, fmt.Errorf("query clauses: %w", err)
	}
	q.Clauses = make([]Clause, len(clauses))
	for i, c := range clauses {
		clause, err := decodeClause(c)
		if err != nil {
			return Query{}, fmt.Errorf("clause[%d]: %w", i, err)
		}
		q.Clauses[i] = clause
	}

	if rawParams, ok := root["params"]; ok {
		params, err := asArray(rawParams)
		if err != nil {
			return Query{}, fmt.Errorf("query params: %w", err)
		}
		q.Parameters = make([]Param, len(params))
		for i, p := range params {
			m, err := asObject(p)
			if err != nil {
				return Query{}, fmt.Errorf("param[%d]: %w", i, err)
			}
			name, err := asString(m["name"])
			if err != nil {
				return Query{}, fmt.Errorf("param[%d] name: %w", i, err)
			}
			value, err := decodeValue(m["value"])
			if err != nil {
				return Query{}, fmt.Errorf("param[%d] value: %w", i, err)
			}
			q.Parameters[i] = Param{Name: name, Value: value}
		}
	}

	return q, nil
}

func decodeValue(v any) (canon.Value, error) {
	switch val := v.(type) {
	case nil:
		return canon.Null{}, nil
	case bool:
		return canon.Bool(val), nil
	case string:
		return canon.String(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			f, err := val.Float64()
			if err != nil {
				return nil, fmt.Errorf("invalid number %q: %w", s, err)
			}
			return canon.Float(f), nil
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return canon.Int(n), nil
	case []any:
		list := make(canon.List, len(val))
		for i, elem := range val {
			cv, err := decodeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = cv
		}
		return list, nil
	case map[string]any:
		m := make(canon.Map, len(val))
		for k, elem := range val {
			cv, err := decodeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			m[k] = cv
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type: %T", v)
	}
}

func decodeExpr(v any) (Expr, error) {
	m, err := asObject(v)
	if err != nil {
		return nil, err
	}
	kind, err := asString(m["kind"])
	if err != nil {
		return nil, fmt.Errorf("expr kind: %w", err)
	}

	switch kind {
	case "literal":
		value, err := decodeValue(m["value"])
		if err != nil {
			return nil, fmt.Errorf("literal value: %w", err)
		}
		return Literal{Value: value}, nil
	case "property":
		variable, err := asString(m["var"])
		if err != nil {
			return nil, fmt.Errorf("property var: %w", err)
		}
		key, err := asString(m["key"])
		if err != nil {
			return nil, fmt.Errorf("property key: %w", err)
		}
		return Property{Var: variable, Key: key}, nil
	case "parameter":
		name, err := asString(m["name"])
		if err != nil {
			return nil, fmt.Errorf("parameter name: %w", err)
		}
		return Parameter{Name: name}, nil
	case "binary":
		op, err := asString(m["op"])
		if err != nil {
			return nil, fmt.Errorf("binary op: %w", err)
		}
		if !binaryOps[BinaryOperator(op)] {
			return nil, fmt.Errorf("unknown binary operator %q", op)
		}
		left, err := decodeExpr(m["left"])
		if err != nil {
			return nil, fmt.Errorf("binary left: %w", err)
		}
		right, err := decodeExpr(m["right"])
		if err != nil {
			return nil, fmt.Errorf("binary right: %w", err)
		}
		return BinaryOp{Op: BinaryOperator(op), Left: left, Right: right}, nil
	case "unary":
		op, err := asString(m["op"])
		if err != nil {
			return nil, fmt.Errorf("unary op: %w", err)
		}
		if !unaryOps[UnaryOperator(op)] {
			return nil, fmt.Errorf("unknown unary operator %q", op)
		}
		operand, err := decodeExpr(m["operand"])
		if err != nil {
			return nil, fmt.Errorf("unary operand: %w", err)
		}
		return UnaryOp{Op: UnaryOperator(op), Operand: operand}, nil
	case "function":
		name, err := asString(m["name"])
		if err != nil {
			return nil, fmt.Errorf("function name: %w", err)
		}
		rawArgs, err := asArray(m["args"])
		if err != nil {
			return nil, fmt.Errorf("function args: %w", err)
		}
		args := make([]Expr, len(rawArgs))
		for i, a := range rawArgs {
			arg, err := decodeExpr(a)
			if err != nil {
				return nil, fmt.Errorf("function arg[%d]: %w", i, err)
			}
			args[i] = arg
		}
		return Function{Name: name, Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown expr kind %q", kind)
	}
}

func decodeProperties(v any) ([]PropertyEntry, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := asArray(v)
	if err != nil {
		return nil, err
	}
	props := make([]PropertyEntry, len(raw))
	for i, p := range raw {
		m, err := asObject(p)
		if err != nil {
			return nil, fmt.Errorf("prop[%d]: %w", i, err)
		}
		key, err := asString(m["key"])
		if err != nil {
			return nil, fmt.Errorf("prop[%d] key: %w", i, err)
		}
		value, err := decodeExpr(m["value"])
		if err != nil {
			return nil, fmt.Errorf("prop[%d] value: %w", i, err)
		}
		props[i] = PropertyEntry{Key: key, Value: value}
	}
	return props, nil
}

func decodePattern(v any) (Pattern, error) {
	m, err := asObject(v)
	if err != nil {
		return nil, err
	}
	kind, err := asString(m["kind"])
	if err != nil {
		return nil, fmt.Errorf("pattern kind: %w", err)
	}

	switch kind {
	case "node":
		variable, _ := asString(m["var"])
		labels, err := asStringSlice(m["labels"])
		if err != nil {
			return nil, fmt.Errorf("node labels: %w", err)
		}
		props, err := decodeProperties(m["props"])
		if err != nil {
			return nil, fmt.Errorf("node props: %w", err)
		}
		return NodePattern{Variable: variable, Labels: labels, Properties: props}, nil
	case "rel":
		variable, _ := asString(m["var"])
		relType, _ := asString(m["type"])
		dir, err := asString(m["direction"])
		if err != nil {
			return nil, fmt.Errorf("rel direction: %w", err)
		}
		switch Direction(dir) {
		case DirOut, DirIn, DirBoth:
		default:
			return nil, fmt.Errorf("unknown direction %q", dir)
		}
		props, err := decodeProperties(m["props"])
		if err != nil {
			return nil, fmt.Errorf("rel props: %w", err)
		}
		return RelPattern{Variable: variable, Type: relType, Direction: Direction(dir), Properties: props}, nil
	case "path":
		rawElems, err := asArray(m["elements"])
		if err != nil {
			return nil, fmt.Errorf("path elements: %w", err)
		}
		elems := make([]Pattern, len(rawElems))
		for i, e := range rawElems {
			elem, err := decodePattern(e)
			if err != nil {
				return nil, fmt.Errorf("path element[%d]: %w", i, err)
			}
			elems[i] = elem
		}
		return Path{Elements: elems}, nil
	default:
		return nil, fmt.Errorf("unknown pattern kind %q", kind)
	}
}

func decodeReturnItems(v any) ([]ReturnItem, error) {
	raw, err := asArray(v)
	if err != nil {
		return nil, err
	}
	items := make([]ReturnItem, len(raw))
	for i, r := range raw {
		m, err := asObject(r)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		item := ReturnItem{}
		item.Alias, _ = asString(m["alias"])
		if rawExpr, ok := m["expr"]; ok {
			expr, err := decodeExpr(rawExpr)
			if err != nil {
				return nil, fmt.Errorf("item[%d] expr: %w", i, err)
			}
			item.Expr = expr
		} else {
			variable, err := asString(m["var"])
			if err != nil {
				return nil, fmt.Errorf("item[%d] var: %w", i, err)
			}
			item.Variable = variable
		}
		items[i] = item
	}
	return items, nil
}

func decodeClause(v any) (Clause, error) {
	m, err := asObject(v)
	if err != nil {
		return nil, err
	}
	kind, err := asString(m["kind"])
	if err != nil {
		return nil, fmt.Errorf("clause kind: %w", err)
	}

	switch kind {
	case "match":
		pattern, err := decodePattern(m["pattern"])
		if err != nil {
			return nil, fmt.Errorf("match pattern: %w", err)
		}
		optional, _ := asBool(m["optional"])
		return Match{Pattern: pattern, Optional: optional}, nil
	case "where":
		cond, err := decodeExpr(m["cond"])
		if err != nil {
			return nil, fmt.Errorf("where cond: %w", err)
		}
		return Where{Cond: cond}, nil
	case "create":
		pattern, err := decodePattern(m["pattern"])
		if err != nil {
			return nil, fmt.Errorf("create pattern: %w", err)
		}
		return Create{Pattern: pattern}, nil
	case "delete":
		vars, err := asStringSlice(m["vars"])
		if err != nil {
			return nil, fmt.Errorf("delete vars: %w", err)
		}
		detach, _ := asBool(m["detach"])
		return Delete{Variables: vars, Detach: detach}, nil
	case "set":
		raw, err := asArray(m["assignments"])
		if err != nil {
			return nil, fmt.Errorf("set assignments: %w", err)
		}
		assignments := make([]Assignment, len(raw))
		for i, a := range raw {
			am, err := asObject(a)
			if err != nil {
				return nil, fmt.Errorf("assignment[%d]: %w", i, err)
			}
			variable, err := asString(am["var"])
			if err != nil {
				return nil, fmt.Errorf("assignment[%d] var: %w", i, err)
			}
			key, err := asString(am["key"])
			if err != nil {
				return nil, fmt.Errorf("assignment[%d] key: %w", i, err)
			}
			value, err := decodeExpr(am["value"])
			if err != nil {
				return nil, fmt.Errorf("assignment[%d] value: %w", i, err)
			}
			assignments[i] = Assignment{Variable: variable, Key: key, Value: value}
		}
		return Set{Assignments: assignments}, nil
	case "with":
		items, err := decodeReturnItems(m["items"])
		if err != nil {
			return nil, fmt.Errorf("with items: %w", err)
		}
		return With{Items: items}, nil
	case "return":
		items, err := decodeReturnItems(m["items"])
		if err != nil {
			return nil, fmt.Errorf("return items: %w", err)
		}
		return Return{Items: items}, nil
	case "orderby":
		raw, err := asArray(m["items"])
		if err != nil {
			return nil, fmt.Errorf("orderby items: %w", err)
		}
		items := make([]SortItem, len(raw))
		for i, s := range raw {
			sm, err := asObject(s)
			if err != nil {
				return nil, fmt.Errorf("orderby item[%d]: %w", i, err)
			}
			expr, err := decodeExpr(sm["expr"])
			if err != nil {
				return nil, fmt.Errorf("orderby item[%d] expr: %w", i, err)
			}
			desc, _ := asBool(sm["desc"])
			items[i] = SortItem{Expr: expr, Descending: desc}
		}
		return OrderBy{Items: items}, nil
	case "skip":
		count, err := asInt(m["count"])
		if err != nil {
			return nil, fmt.Errorf("skip count: %w", err)
		}
		return Skip{Count: count}, nil
	case "limit":
		count, err := asInt(m["count"])
		if err != nil {
			return nil, fmt.Errorf("limit count: %w", err)
		}
		return Limit{Count: count}, nil
	default:
		return nil, fmt.Errorf("unknown clause kind %q", kind)
	}
}

func asObject(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	return m, nil
}

func asArray(v any) ([]any, error) {
	a, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	return a, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v)
	}
	return b, nil
}

func asInt(v any) (int64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	return n.Int64()
}

func asStringSlice(v any) ([]string, error) {
	raw, err := asArray(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, s := range raw {
		str, err := asString(s)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = str
	}
	return out, nil
}
