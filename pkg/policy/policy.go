// Package policy provides the declarative storage policy model and its
// textual form:
//
//	REP 1 IN LOC_SPB_PLACE
//	CBF 1
//	SELECT 1 FROM LOC_SPB AS LOC_SPB_PLACE
//	FILTER "UN-LOCODE" EQ "RU LED" AS LOC_SPB
//
// A policy is bound to a container at creation time and never changes
// afterwards.
package policy

// Operation is a comparison operation of a filter expression.
type Operation uint8

const (
	_ Operation = iota

	// OpEQ is an "equal to" operation.
	OpEQ

	// OpNE is a "not equal to" operation.
	OpNE

	// OpGE is a "greater or equal to" operation.
	OpGE

	// OpGT is a "greater than" operation.
	OpGT

	// OpLE is a "less or equal to" operation.
	OpLE

	// OpLT is a "less than" operation.
	OpLT

	// OpAND is a boolean conjunction of inner filters.
	OpAND

	// OpOR is a boolean disjunction of inner filters.
	OpOR
)

func (op Operation) String() string {
	switch op {
	case OpEQ:
		return "EQ"
	case OpNE:
		return "NE"
	case OpGE:
		return "GE"
	case OpGT:
		return "GT"
	case OpLE:
		return "LE"
	case OpLT:
		return "LT"
	case OpAND:
		return "AND"
	case OpOR:
		return "OR"
	default:
		return "<invalid>"
	}
}

// Clause is a modifier of a selector bucket attribute.
type Clause uint8

const (
	// ClauseDefault means no modifier.
	ClauseDefault Clause = iota

	// ClauseSame requires the same attribute value within a bucket.
	ClauseSame

	// ClauseDistinct requires distinct attribute values across buckets.
	ClauseDistinct
)

// MainFilterName is the name of the filter which matches the whole
// network map ("*" in the textual form).
const MainFilterName = "*"

// Filter is a named predicate over node attributes. A filter is either
// a simple comparison (Key Op Value) or a composition (Op is OpAND or
// OpOR) of inner filters.
type Filter struct {
	// Name of the filter as referenced by selectors and inner filters.
	Name string

	// Key is a node attribute key of a simple comparison.
	Key string

	// Op is the comparison or composition operation.
	Op Operation

	// Value is the right operand of a simple comparison.
	Value string

	// Sub are inner filters of a composite filter.
	Sub []Filter
}

// Selector chooses a bucket of nodes from the pool produced by the
// named filter.
type Selector struct {
	// Name of the selector as referenced by REP clauses.
	Name string

	// Count is the bucket-selection width: how many nodes to choose
	// per backup subset.
	Count uint32

	// Clause modifies bucketing by the attribute.
	Clause Clause

	// Attribute to bucket nodes by, may be empty.
	Attribute string

	// Filter is the name of the source filter, MainFilterName for the
	// whole network map.
	Filter string
}

// Replica declares the number of object copies to be stored by nodes
// of a named selector.
type Replica struct {
	// Count is the replication factor.
	Count uint32

	// Selector is the name of the source selector. Empty value means
	// the default selector over the whole network map.
	Selector string
}

// Policy is a parsed placement policy of a container.
type Policy struct {
	// Replicas are REP clauses, at least one.
	Replicas []Replica

	// CBF is the container backup factor, 0 means default.
	CBF uint32

	// Selectors are SELECT clauses.
	Selectors []Selector

	// Filters are FILTER clauses.
	Filters []Filter
}

// DefaultCBF is used when the policy text carries no CBF clause.
const DefaultCBF = 3

// BackupFactor returns effective container backup factor.
func (p Policy) BackupFactor() uint32 {
	if p.CBF == 0 {
		return DefaultCBF
	}

	return p.CBF
}

// SelectorByName looks up a selector declared in the policy.
func (p Policy) SelectorByName(name string) (Selector, bool) {
	for i := range p.Selectors {
		if p.Selectors[i].Name == name {
			return p.Selectors[i], true
		}
	}

	return Selector{}, false
}

// FilterByName looks up a filter declared in the policy.
func (p Policy) FilterByName(name string) (Filter, bool) {
	for i := range p.Filters {
		if p.Filters[i].Name == name {
			return p.Filters[i], true
		}
	}

	return Filter{}, false
}
