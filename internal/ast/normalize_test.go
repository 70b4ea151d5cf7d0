package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// canonicalEqual compares two queries by canonical bytes, the same total
// order normalization itself uses.
func canonicalEqual(t *testing.T, a, b Query) {
	t.Helper()
	assert.Equal(t, string(CanonicalBytes(a)), string(CanonicalBytes(b)))
}

func TestNormalizeIdempotent(t *testing.T) {
	queries := []Query{
		NewQuery(
			Returns("p"),
			Where{Cond: Gte(Prop("p", "age"), ParamRef("minAge"))},
			Match{Pattern: Node("p", "Person")},
		).WithParam("minAge", 18),
		NewQuery(
			Match{Pattern: Node("n", "City", "Area")},
			Where{Cond: Or(And(Lit(true), Lit(false)), Not(Not(Eq(Prop("n", "x"), Lit(1)))))},
			Returns("n"),
		),
		NewQuery(
			Create{Pattern: Node("n", "Person")},
			Set{Assignments: []Assignment{
				{Variable: "n", Key: "name", Value: Lit("ada")},
				{Variable: "a", Key: "zz", Value: Lit(1)},
			}},
		),
	}

	for _, q := range queries {
		once := Normalize(q)
		twice := Normalize(once)
		canonicalEqual(t, once, twice)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeCommutativity(t *testing.T) {
	a := Gte(Prop("p", "age"), Lit(18))
	b := Eq(Prop("p", "city"), Lit("NYC"))

	tests := []struct {
		name string
		x, y Expr
	}{
		{"and", And(a, b), And(b, a)},
		{"or", Or(a, b), Or(b, a)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qx := Normalize(NewQuery(Where{Cond: tt.x}))
			qy := Normalize(NewQuery(Where{Cond: tt.y}))
			assert.Equal(t, qx, qy)
		})
	}
}

func TestNormalizeDoubleNegation(t *testing.T) {
	e := Eq(Prop("p", "name"), Lit("ada"))

	plain := Normalize(NewQuery(Where{Cond: e}))
	doubled := Normalize(NewQuery(Where{Cond: Not(Not(e))}))
	assert.Equal(t, plain, doubled)

	// NOT(NOT(NOT(x))) reduces to NOT(x)
	single := Normalize(NewQuery(Where{Cond: Not(e)}))
	tripled := Normalize(NewQuery(Where{Cond: Not(Not(Not(e)))}))
	assert.Equal(t, single, tripled)
}

func TestNormalizeParameterOrderIndependence(t *testing.T) {
	clauses := []Clause{
		Match{Pattern: Node("p", "Person")},
		Returns("p"),
	}
	q1 := NewQuery(clauses...).WithParam("minAge", 18).WithParam("active", true)
	q2 := NewQuery(clauses...).WithParam("active", true).WithParam("minAge", 18)

	n1 := Normalize(q1)
	n2 := Normalize(q2)

	assert.Equal(t, n1, n2)
	require.Len(t, n1.Parameters, 2)
	assert.Equal(t, "active", n1.Parameters[0].Name)
	assert.Equal(t, "minAge", n1.Parameters[1].Name)
}

func TestNormalizeClauseOrder(t *testing.T) {
	q := NewQuery(
		Limit{Count: 10},
		Returns("p"),
		OrderBy{Items: []SortItem{{Expr: Prop("p", "age")}}},
		Where{Cond: Gte(Prop("p", "age"), ParamRef("minAge"))},
		Skip{Count: 5},
		Match{Pattern: Node("p", "Person")},
	)

	normalized := Normalize(q)

	ranks := make([]int, len(normalized.Clauses))
	for i, c := range normalized.Clauses {
		ranks[i] = clauseRank(c)
	}
	assert.IsNonDecreasing(t, ranks)

	_, ok := normalized.Clauses[0].(Match)
	assert.True(t, ok, "first clause must be Match")
	_, ok = normalized.Clauses[len(normalized.Clauses)-1].(Limit)
	assert.True(t, ok, "last clause must be Limit")
}

func TestNormalizeClauseOrderStableWithinClass(t *testing.T) {
	first := Match{Pattern: Node("a", "A")}
	second := Match{Pattern: Node("b", "B")}
	q := NewQuery(Returns("a"), first, second)

	normalized := Normalize(q)
	require.Len(t, normalized.Clauses, 3)
	assert.Equal(t, Match{Pattern: Node("a", "A")}, normalized.Clauses[0])
	assert.Equal(t, Match{Pattern: Node("b", "B")}, normalized.Clauses[1])
}

func TestNormalizeFlattensLongChains(t *testing.T) {
	a := Eq(Prop("n", "a"), Lit(1))
	b := Eq(Prop("n", "b"), Lit(2))
	c := Eq(Prop("n", "c"), Lit(3))
	d := Eq(Prop("n", "d"), Lit(4))

	// All bracketings of a four-operand AND chain normalize identically.
	shapes := []Expr{
		And(And(And(a, b), c), d),
		And(a, And(b, And(c, d))),
		And(And(a, b), And(c, d)),
		And(And(d, c), And(b, a)),
	}

	want := Normalize(NewQuery(Where{Cond: shapes[0]}))
	for _, shape := range shapes[1:] {
		assert.Equal(t, want, Normalize(NewQuery(Where{Cond: shape})))
	}

	// The canonical shape is a right fold: AND(x, AND(y, AND(z, w))).
	cond := want.Clauses[0].(Where).Cond
	top, ok := cond.(BinaryOp)
	require.True(t, ok)
	assert.Equal(t, OpAnd, top.Op)
	depth := 0
	for {
		depth++
		next, ok := top.Right.(BinaryOp)
		if !ok || next.Op != OpAnd {
			break
		}
		top = next
	}
	assert.Equal(t, 3, depth)
}

func TestNormalizeDoesNotFlattenAcrossOperators(t *testing.T) {
	a := Eq(Prop("n", "a"), Lit(1))
	b := Eq(Prop("n", "b"), Lit(2))
	c := Eq(Prop("n", "c"), Lit(3))

	// AND(OR(a,b), c): the OR operand is a boundary, so the AND level has
	// exactly two operands and keeps its shape (modulo the pairwise swap).
	n := Normalize(NewQuery(Where{Cond: And(Or(a, b), c)}))
	cond := n.Clauses[0].(Where).Cond
	top, ok := cond.(BinaryOp)
	require.True(t, ok)
	assert.Equal(t, OpAnd, top.Op)

	var orSide, leafSide Expr
	if l, ok := top.Left.(BinaryOp); ok && l.Op == OpOr {
		orSide, leafSide = top.Left, top.Right
	} else {
		orSide, leafSide = top.Right, top.Left
	}
	or, ok := orSide.(BinaryOp)
	require.True(t, ok)
	assert.Equal(t, OpOr, or.Op)
	assert.IsType(t, BinaryOp{}, leafSide)

	// Commutativity still applies independently at each level.
	m := Normalize(NewQuery(Where{Cond: And(c, Or(b, a))}))
	assert.Equal(t, n, m)
}

func TestNormalizePatterns(t *testing.T) {
	node := NodePattern{
		Variable: "n",
		Labels:   []string{"Zeta", "Alpha", "Mid"},
		Properties: []PropertyEntry{
			{Key: "zz", Value: Lit(1)},
			{Key: "aa", Value: Not(Not(Lit(true)))},
		},
	}
	q := Normalize(NewQuery(Match{Pattern: node}))

	match := q.Clauses[0].(Match)
	got := match.Pattern.(NodePattern)
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, got.Labels)
	require.Len(t, got.Properties, 2)
	assert.Equal(t, "aa", got.Properties[0].Key)
	assert.Equal(t, Lit(true), got.Properties[0].Value)
	assert.Equal(t, "zz", got.Properties[1].Key)

	// Input is untouched.
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, node.Labels)
	assert.Equal(t, "zz", node.Properties[0].Key)
}

func TestNormalizePathPreservesElementOrder(t *testing.T) {
	path := PathOf(
		Node("a", "Person"),
		Rel("r", "KNOWS", DirOut),
		Node("b", "Person"),
	)
	q := Normalize(NewQuery(Match{Pattern: path}))

	got := q.Clauses[0].(Match).Pattern.(Path)
	require.Len(t, got.Elements, 3)
	assert.Equal(t, "a", got.Elements[0].(NodePattern).Variable)
	assert.Equal(t, "r", got.Elements[1].(RelPattern).Variable)
	assert.Equal(t, "b", got.Elements[2].(NodePattern).Variable)
}

func TestNormalizeSetAssignments(t *testing.T) {
	q := Normalize(NewQuery(Set{Assignments: []Assignment{
		{Variable: "b", Key: "x", Value: Lit(1)},
		{Variable: "a", Key: "z", Value: Lit(2)},
		{Variable: "a", Key: "b", Value: Lit(3)},
	}}))

	set := q.Clauses[0].(Set)
	require.Len(t, set.Assignments, 3)
	assert.Equal(t, "a.b", set.Assignments[0].Variable+"."+set.Assignments[0].Key)
	assert.Equal(t, "a.z", set.Assignments[1].Variable+"."+set.Assignments[1].Key)
	assert.Equal(t, "b.x", set.Assignments[2].Variable+"."+set.Assignments[2].Key)
}

func TestNormalizeReturnItemOrderPreserved(t *testing.T) {
	q := Normalize(NewQuery(Return{Items: []ReturnItem{
		{Variable: "z"},
		{Variable: "a"},
		{Expr: Prop("z", "name"), Alias: "name"},
	}}))

	ret := q.Clauses[0].(Return)
	require.Len(t, ret.Items, 3)
	assert.Equal(t, "z", ret.Items[0].Variable)
	assert.Equal(t, "a", ret.Items[1].Variable)
	assert.Equal(t, "name", ret.Items[2].Alias)
}

func TestNormalizeNonCommutativePreservesOperandOrder(t *testing.T) {
	lt := BinaryOp{Op: OpLess, Left: Prop("p", "age"), Right: Lit(30)}
	n := Normalize(NewQuery(Where{Cond: lt}))
	got := n.Clauses[0].(Where).Cond.(BinaryOp)
	assert.Equal(t, Prop("p", "age"), got.Left)
}
