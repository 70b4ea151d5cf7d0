package cypher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/cygnet/internal/ast"
	"github.com/roach88/cygnet/internal/canon"
)

// Result is the rendered form of a query: text plus the parameter mapping
// converted to driver-native values. The parameter mapping passes through
// unchanged in content; canonical key order is established upstream by
// ast.Normalize.
type Result struct {
	Text   string
	Params map[string]any
}

// Compile renders a query to Cypher text. Given identical input, repeated
// calls produce byte-identical text and deep-equal parameters.
//
// A clause, expression, or pattern tag outside the closed unions is an
// internal-consistency failure and returns an error; there is no
// recoverable error category here.
func Compile(q ast.Query) (Result, error) {
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		text, err := renderClause(c)
		if err != nil {
			return Result{}, fmt.Errorf("clause[%d]: %w", i, err)
		}
		parts[i] = text
	}

	params := make(map[string]any, len(q.Parameters))
	for _, p := range q.Parameters {
		params[p.Name] = canon.Native(p.Value)
	}

	return Result{Text: strings.Join(parts, " "), Params: params}, nil
}

func renderClause(c ast.Clause) (string, error) {
	switch cl := c.(type) {
	case ast.Match:
		pattern, err := renderPattern(cl.Pattern)
		if err != nil {
			return "", err
		}
		if cl.Optional {
			return "OPTIONAL MATCH " + pattern, nil
		}
		return "MATCH " + pattern, nil
	case ast.Where:
		cond, err := renderExpr(cl.Cond)
		if err != nil {
			return "", err
		}
		return "WHERE " + cond, nil
	case ast.Create:
		pattern, err := renderPattern(cl.Pattern)
		if err != nil {
			return "", err
		}
		return "CREATE " + pattern, nil
	case ast.Delete:
		keyword := "DELETE "
		if cl.Detach {
			keyword = "DETACH DELETE "
		}
		return keyword + strings.Join(cl.Variables, ", "), nil
	case ast.Set:
		parts := make([]string, len(cl.Assignments))
		for i, a := range cl.Assignments {
			value, err := renderExpr(a.Value)
			if err != nil {
				return "", err
			}
			parts[i] = a.Variable + "." + a.Key + " = " + value
		}
		return "SET " + strings.Join(parts, ", "), nil
	case ast.With:
		items, err := renderReturnItems(cl.Items)
		if err != nil {
			return "", err
		}
		return "WITH " + items, nil
	case ast.Return:
		items, err := renderReturnItems(cl.Items)
		if err != nil {
			return "", err
		}
		return "RETURN " + items, nil
	case ast.OrderBy:
		parts := make([]string, len(cl.Items))
		for i, item := range cl.Items {
			expr, err := renderExpr(item.Expr)
			if err != nil {
				return "", err
			}
			if item.Descending {
				expr += " DESC"
			}
			parts[i] = expr
		}
		return "ORDER BY " + strings.Join(parts, ", "), nil
	case ast.Skip:
		return "SKIP " + strconv.FormatInt(cl.Count, 10), nil
	case ast.Limit:
		return "LIMIT " + strconv.FormatInt(cl.Count, 10), nil
	default:
		return "", fmt.Errorf("unsupported clause type: %T", c)
	}
}

func renderReturnItems(items []ast.ReturnItem) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		var text string
		if item.Expr != nil {
			rendered, err := renderExpr(item.Expr)
			if err != nil {
				return "", err
			}
			text = rendered
		} else {
			text = item.Variable
		}
		if item.Alias != "" {
			text += " AS " + item.Alias
		}
		parts[i] = text
	}
	return strings.Join(parts, ", "), nil
}

// Operator precedence, used only to decide when a nested BinaryOp operand
// needs parentheses to keep the rendered text's meaning identical to the
// tree's explicit shape.
func precedence(op ast.BinaryOperator) int {
	switch op {
	case ast.OpOr:
		return 1
	case ast.OpXor:
		return 2
	case ast.OpAnd:
		return 3
	case ast.OpEq, ast.OpNotEq, ast.OpLess, ast.OpLessEq,
		ast.OpGreater, ast.OpGreaterEq, ast.OpRegex, ast.OpIn,
		ast.OpStartsWith, ast.OpEndsWith, ast.OpContains:
		return 5
	case ast.OpAdd, ast.OpSub:
		return 6
	case ast.OpMul, ast.OpDiv, ast.OpMod:
		return 7
	default:
		return 9
	}
}

// renderOperand renders a binary operand, parenthesizing it when it is a
// BinaryOp that binds more loosely than the enclosing operator.
func renderOperand(e ast.Expr, parentPrec int) (string, error) {
	text, err := renderExpr(e)
	if err != nil {
		return "", err
	}
	if bin, ok := e.(ast.BinaryOp); ok && precedence(bin.Op) < parentPrec {
		return "(" + text + ")", nil
	}
	return text, nil
}

func renderExpr(e ast.Expr) (string, error) {
	switch ex := e.(type) {
	case ast.Literal:
		return renderLiteral(ex.Value), nil
	case ast.Property:
		return ex.Var + "." + ex.Key, nil
	case ast.Parameter:
		return "$" + ex.Name, nil
	case ast.BinaryOp:
		prec := precedence(ex.Op)
		left, err := renderOperand(ex.Left, prec)
		if err != nil {
			return "", err
		}
		right, err := renderOperand(ex.Right, prec)
		if err != nil {
			return "", err
		}
		return left + " " + string(ex.Op) + " " + right, nil
	case ast.UnaryOp:
		switch ex.Op {
		case ast.OpNot:
			operand, err := renderOperand(ex.Operand, 4)
			if err != nil {
				return "", err
			}
			return "NOT " + operand, nil
		case ast.OpNegate:
			operand, err := renderOperand(ex.Operand, 8)
			if err != nil {
				return "", err
			}
			return "-" + operand, nil
		case ast.OpIsNull:
			operand, err := renderOperand(ex.Operand, 8)
			if err != nil {
				return "", err
			}
			return operand + " IS NULL", nil
		case ast.OpIsNotNull:
			operand, err := renderOperand(ex.Operand, 8)
			if err != nil {
				return "", err
			}
			return operand + " IS NOT NULL", nil
		default:
			return "", fmt.Errorf("unsupported unary operator: %q", ex.Op)
		}
	case ast.Function:
		args := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			arg, err := renderExpr(a)
			if err != nil {
				return "", err
			}
			args[i] = arg
		}
		return ex.Name + "(" + strings.Join(args, ", ") + ")", nil
	default:
		return "", fmt.Errorf("unsupported expr type: %T", e)
	}
}

// renderLiteral renders a canon value as a Cypher literal: strings
// single-quoted with backslash escaping, numbers and booleans bare,
// maps in sorted key order.
func renderLiteral(v canon.Value) string {
	switch val := v.(type) {
	case canon.Null:
		return "null"
	case canon.Bool:
		if val {
			return "true"
		}
		return "false"
	case canon.Int:
		return strconv.FormatInt(int64(val), 10)
	case canon.Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case canon.String:
		return quoteString(string(val))
	case canon.List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = renderLiteral(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case canon.Map:
		keys := val.SortedKeys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + renderLiteral(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		panic(fmt.Sprintf("cypher: unknown canon.Value type %T", v))
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func renderProperties(props []ast.PropertyEntry) (string, error) {
	parts := make([]string, len(props))
	for i, p := range props {
		value, err := renderExpr(p.Value)
		if err != nil {
			return "", err
		}
		parts[i] = p.Key + ": " + value
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func renderPattern(p ast.Pattern) (string, error) {
	switch pat := p.(type) {
	case ast.NodePattern:
		var b strings.Builder
		b.WriteByte('(')
		b.WriteString(pat.Variable)
		for _, label := range pat.Labels {
			b.WriteByte(':')
			b.WriteString(label)
		}
		if len(pat.Properties) > 0 {
			if pat.Variable != "" || len(pat.Labels) > 0 {
				b.WriteByte(' ')
			}
			props, err := renderProperties(pat.Properties)
			if err != nil {
				return "", err
			}
			b.WriteString(props)
		}
		b.WriteByte(')')
		return b.String(), nil
	case ast.RelPattern:
		var b strings.Builder
		b.WriteString(pat.Variable)
		if pat.Type != "" {
			b.WriteByte(':')
			b.WriteString(pat.Type)
		}
		if len(pat.Properties) > 0 {
			if pat.Variable != "" || pat.Type != "" {
				b.WriteByte(' ')
			}
			props, err := renderProperties(pat.Properties)
			if err != nil {
				return "", err
			}
			b.WriteString(props)
		}
		body := "[" + b.String() + "]"
		switch pat.Direction {
		case ast.DirOut:
			return "-" + body + "->", nil
		case ast.DirIn:
			return "<-" + body + "-", nil
		case ast.DirBoth:
			return "-" + body + "-", nil
		default:
			return "", fmt.Errorf("unsupported relationship direction: %q", pat.Direction)
		}
	case ast.Path:
		var b strings.Builder
		for _, elem := range pat.Elements {
			text, err := renderPattern(elem)
			if err != nil {
				return "", err
			}
			b.WriteString(text)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unsupported pattern type: %T", p)
	}
}
