// Package builder provides domain-level helpers that assemble core query
// values for common access shapes. Helpers are infallible; the core does
// not validate referential consistency of their output.
package builder

import "github.com/roach88/cygnet/internal/ast"

// FindByLabel matches all nodes with the given label and returns them.
//
//	MATCH (v:Label) RETURN v
func FindByLabel(variable, label string) ast.Query {
	return ast.NewQuery(
		ast.Match{Pattern: ast.Node(variable, label)},
		ast.Returns(variable),
	)
}

// FindByID matches a node by a parameterized id property.
//
//	MATCH (v:Label) WHERE v.id = $id RETURN v
func FindByID(variable, label string, id any) ast.Query {
	return ast.NewQuery(
		ast.Match{Pattern: ast.Node(variable, label)},
		ast.Where{Cond: ast.Eq(ast.Prop(variable, "id"), ast.ParamRef("id"))},
		ast.Returns(variable),
	).WithParam("id", id)
}

// FindWhere matches nodes with the given label filtered by a predicate.
func FindWhere(variable, label string, cond ast.Expr) ast.Query {
	return ast.NewQuery(
		ast.Match{Pattern: ast.Node(variable, label)},
		ast.Where{Cond: cond},
		ast.Returns(variable),
	)
}

// CreateNode creates a node with the given label and property entries.
//
//	CREATE (v:Label {k: v, ...}) RETURN v
func CreateNode(variable, label string, props ...ast.PropertyEntry) ast.Query {
	node := ast.Node(variable, label)
	node.Properties = props
	return ast.NewQuery(
		ast.Create{Pattern: node},
		ast.Returns(variable),
	)
}

// DeleteByID detach-deletes a node matched by a parameterized id property.
func DeleteByID(variable, label string, id any) ast.Query {
	return ast.NewQuery(
		ast.Match{Pattern: ast.Node(variable, label)},
		ast.Where{Cond: ast.Eq(ast.Prop(variable, "id"), ast.ParamRef("id"))},
		ast.Delete{Variables: []string{variable}, Detach: true},
	).WithParam("id", id)
}

// Related matches nodes connected to a labeled anchor through an outgoing
// relationship of the given type.
//
//	MATCH (a:Label)-[:TYPE]->(b) RETURN b
func Related(anchorVar, anchorLabel, relType, targetVar string) ast.Query {
	return ast.NewQuery(
		ast.Match{Pattern: ast.PathOf(
			ast.Node(anchorVar, anchorLabel),
			ast.Rel("", relType, ast.DirOut),
			ast.Node(targetVar),
		)},
		ast.Returns(targetVar),
	)
}
