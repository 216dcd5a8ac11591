// Package query turns an untyped query document into a checked abstract
// syntax tree.
//
// The filter grammar is modeled as a closed set of tagged variants rather
// than dynamic property inspection: validation and evaluation are
// exhaustive type switches over the sealed Filter interface.
package query

import "campusql/internal/dataset"

// Filter is one node of the boolean filter tree.
//
// This is a sealed interface - only All, And, Or, Not, Compare, and Match
// implement it. The marker method prevents external implementations and
// keeps the executor's type switch exhaustive.
type Filter interface {
	filterNode()
}

// All matches every record. It is what an empty WHERE clause compiles to.
type All struct{}

func (All) filterNode() {}

// And matches records matching every child filter.
type And struct {
	Filters []Filter
}

func (And) filterNode() {}

// Or matches records matching at least one child filter.
type Or struct {
	Filters []Filter
}

func (Or) filterNode() {}

// Not inverts its child.
type Not struct {
	Filter Filter
}

func (Not) filterNode() {}

// CompareOp is a numeric comparison operator.
type CompareOp string

const (
	OpGT CompareOp = "GT"
	OpLT CompareOp = "LT"
	OpEQ CompareOp = "EQ"
)

// Compare matches records whose numeric field stands in Op relation to
// Value.
type Compare struct {
	Op    CompareOp
	Key   dataset.Key
	Value float64
}

func (Compare) filterNode() {}

// Match matches records whose string field equals Pattern, or, when
// Pattern carries a leading and/or trailing wildcard, records whose field
// has Pattern as suffix, prefix, or substring. Matching is case-sensitive.
type Match struct {
	Key     dataset.Key
	Pattern string
}

func (Match) filterNode() {}

// ApplyOp is an aggregation operator.
type ApplyOp string

const (
	ApplyMax   ApplyOp = "MAX"
	ApplyMin   ApplyOp = "MIN"
	ApplyAvg   ApplyOp = "AVG"
	ApplyCount ApplyOp = "COUNT"
	ApplySum   ApplyOp = "SUM"
)

// ApplyRule computes one aggregate per group, published under Key.
type ApplyRule struct {
	Key    string // bare output key, no separator
	Op     ApplyOp
	Source dataset.Key
}

// Transform is the GROUP/APPLY clause: grouped rows replace raw records.
type Transform struct {
	GroupKeys []string // qualified keys, e.g. "sections_dept"
	Apply     []ApplyRule
}

// Order is the multi-key sort specification. A bare string ORDER compiles
// to a single ascending key.
type Order struct {
	Descending bool
	Keys       []string
}

// Query is a validated query, ready for evaluation. Dataset is the single
// id every key in the document references.
type Query struct {
	Dataset   string
	Where     Filter
	Columns   []string
	Order     *Order
	Transform *Transform
}
