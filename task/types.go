// Package task defines the preprocessed, normal-form PDDL task: the contract
// the (out-of-scope) lexical parser and ADL simplifier hand to the grounder
// (§4.1). Preconditions here carry no quantifiers, implications, or
// disjunctions; conjunctive effects are flattened; conditional effects are
// explicit. Preferences and constraints may still carry forall/exists, which
// ground.ExpandADL folds into and/or over the ground object universe.
package task

// Type names one node in the subtype DAG rooted at the universal type
// "object". NumberType and IntegerType are the two distinguished numeric
// types (§3).
type Type string

const (
	// UniversalType is the root of the type DAG; every object satisfies it.
	UniversalType Type = "object"
	// NumberType is the distinguished real-valued numeric type.
	NumberType Type = "#number"
	// IntegerType is the distinguished integer-valued numeric type.
	IntegerType Type = "#integer"
	// BooleanType is the implicit value type of predicates: the domain
	// {true, false}.
	BooleanType Type = "#boolean"
)

// TypeGraph holds the subtype DAG: Parents[t] lists t's immediate supertypes.
type TypeGraph struct {
	Parents map[Type][]Type
}

// NewTypeGraph returns an empty graph rooted at UniversalType.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{Parents: map[Type][]Type{}}
}

// Add records that t is an immediate subtype of each of parents. If parents
// is empty, t is rooted directly under UniversalType.
func (g *TypeGraph) Add(t Type, parents ...Type) {
	if len(parents) == 0 {
		parents = []Type{UniversalType}
	}
	g.Parents[t] = parents
}

// IsSubtype reports whether t is t itself or a (possibly transitive) subtype
// of super.
func (g *TypeGraph) IsSubtype(t, super Type) bool {
	if t == super || super == UniversalType {
		return true
	}
	seen := map[Type]bool{}
	var visit func(Type) bool
	visit = func(cur Type) bool {
		if cur == super {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		for _, p := range g.Parents[cur] {
			if visit(p) {
				return true
			}
		}
		return false
	}
	return visit(t)
}

// Object is a domain constant. Types lists the smallest set of types it
// satisfies; membership in any supertype follows from TypeGraph.
type Object struct {
	Name  string
	Types []Type
}

// HasType reports whether o satisfies t, directly or via supertype.
func (o Object) HasType(g *TypeGraph, t Type) bool {
	for _, own := range o.Types {
		if g.IsSubtype(own, t) {
			return true
		}
	}
	return false
}

// FunctionKind distinguishes how a function's value is interpreted.
type FunctionKind int

const (
	// Predicate is a boolean-valued function: its ground instances are
	// fluents with candidate values {true, false}.
	Predicate FunctionKind = iota
	// NumericFunction has value type NumberType or IntegerType.
	NumericFunction
	// ObjectFunction is symbolic with a non-boolean object-valued range.
	ObjectFunction
)

// Function is a declared (name, typed-parameter-list, value-type) symbol.
type Function struct {
	ID        int
	Name      string
	ParamTypes []Type
	ValueType Type
	Kind      FunctionKind
}

// Arity returns the number of arguments Function expects.
func (f Function) Arity() int { return len(f.ParamTypes) }
