package ast

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{8}$`)

func TestHashFormat(t *testing.T) {
	queries := []Query{
		NewQuery(),
		NewQuery(Match{Pattern: Node("p", "Person")}, Returns("p")),
		NewQuery(Create{Pattern: Node("n")}).WithParam("x", 1),
	}
	for _, q := range queries {
		assert.Regexp(t, hexDigest, Hash(q))
	}
}

func TestHashStableAcrossCalls(t *testing.T) {
	q := NewQuery(
		Match{Pattern: Node("p", "Person")},
		Where{Cond: Gte(Prop("p", "age"), ParamRef("minAge"))},
		Returns("p"),
	).WithParam("minAge", 18)

	first := Hash(q)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Hash(q))
	}
}

func TestHashEquivalentQueries(t *testing.T) {
	age := Gte(Prop("p", "age"), Lit(18))
	city := Eq(Prop("p", "city"), Lit("NYC"))

	tests := []struct {
		name string
		a, b Query
	}{
		{
			"and operand order",
			NewQuery(Where{Cond: And(age, city)}),
			NewQuery(Where{Cond: And(city, age)}),
		},
		{
			"or operand order",
			NewQuery(Where{Cond: Or(age, city)}),
			NewQuery(Where{Cond: Or(city, age)}),
		},
		{
			"double negation",
			NewQuery(Where{Cond: age}),
			NewQuery(Where{Cond: Not(Not(age))}),
		},
		{
			"clause order",
			NewQuery(Returns("p"), Match{Pattern: Node("p", "Person")}),
			NewQuery(Match{Pattern: Node("p", "Person")}, Returns("p")),
		},
		{
			"parameter order",
			NewQuery(Returns("p")).WithParam("a", 1).WithParam("b", 2),
			NewQuery(Returns("p")).WithParam("b", 2).WithParam("a", 1),
		},
		{
			"label order",
			NewQuery(Match{Pattern: Node("n", "B", "A")}),
			NewQuery(Match{Pattern: Node("n", "A", "B")}),
		},
		{
			"associative bracketing",
			NewQuery(Where{Cond: And(And(age, city), Lit(true))}),
			NewQuery(Where{Cond: And(age, And(city, Lit(true)))}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Hash(tt.a), Hash(tt.b))
		})
	}
}

func TestHashDistinguishesQueries(t *testing.T) {
	base := NewQuery(
		Match{Pattern: Node("p", "Person")},
		Where{Cond: Gte(Prop("p", "age"), Lit(18))},
		Returns("p"),
	)

	variants := []Query{
		NewQuery(
			Match{Pattern: Node("p", "Person")},
			Where{Cond: Lte(Prop("p", "age"), Lit(18))},
			Returns("p"),
		),
		NewQuery(
			Match{Pattern: Node("p", "Robot")},
			Where{Cond: Gte(Prop("p", "age"), Lit(18))},
			Returns("p"),
		),
		base.WithParam("extra", true),
	}

	want := Hash(base)
	for _, v := range variants {
		assert.NotEqual(t, want, Hash(v))
	}
}
