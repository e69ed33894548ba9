package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle"
)

var (
	// ErrInvalidNumber is returned on a non-positive REP or SELECT number.
	ErrInvalidNumber = errors.New("policy: expected positive integer")

	// ErrUnknownOp is returned on an unsupported comparison operation.
	ErrUnknownOp = errors.New("policy: unknown operation")

	// ErrUnknownFilter is returned when a SELECT clause references a
	// filter that no FILTER clause defines.
	ErrUnknownFilter = errors.New("policy: filter not found")

	// ErrUnknownSelector is returned when a REP clause references a
	// selector that no SELECT clause defines.
	ErrUnknownSelector = errors.New("policy: selector not found")
)

var parser *participle.Parser

func init() {
	p, err := participle.Build(&query{})
	if err != nil {
		panic(err)
	}
	parser = p
}

type query struct {
	Replicas  []*replicaStmt  `parser:"@@+"`
	CBF       uint32          `parser:"('CBF' @Int)?"`
	Selectors []*selectorStmt `parser:"@@*"`
	Filters   []*filterStmt   `parser:"@@*"`
}

type replicaStmt struct {
	Count    int    `parser:"'REP' @Int"`
	Selector string `parser:"('IN' @Ident)?"`
}

type selectorStmt struct {
	Count  uint32   `parser:"'SELECT' @Int"`
	Bucket []string `parser:"('IN' @(('SAME' | 'DISTINCT')? Ident))?"`
	Filter string   `parser:"'FROM' @(Ident | '*')"`
	Name   string   `parser:"('AS' @Ident)?"`
}

type filterStmt struct {
	Value *orChain `parser:"'FILTER' @@"`
	Name  string   `parser:"'AS' @Ident"`
}

type filterOrExpr struct {
	Reference string      `parser:"'@'@Ident"`
	Expr      *simpleExpr `parser:"| @@"`
}

type orChain struct {
	Clauses []*andChain `parser:"@@ ('OR' @@)*"`
}

type andChain struct {
	Clauses []*filterOrExpr `parser:"@@ ('AND' @@)*"`
}

type simpleExpr struct {
	Key string `parser:"@(Ident | String)"`
	// Literals are not used here to get better error messages.
	Op    string `parser:"@Ident"`
	Value string `parser:"@(Ident | String | Int)"`
}

// Parse parses the textual form of a placement policy.
//
// References to undefined filters and selectors are hard parse errors:
// a policy that names a group no FILTER or SELECT clause defines never
// reaches resolution.
func Parse(s string) (*Policy, error) {
	q := new(query)

	err := parser.Parse(strings.NewReader(s), q)
	if err != nil {
		return nil, err
	}

	p := new(Policy)
	p.CBF = q.CBF

	seenFilters := map[string]bool{}

	for _, qf := range q.Filters {
		f, err := filterFromOrChain(qf.Value)
		if err != nil {
			return nil, err
		}
		f.Name = qf.Name

		p.Filters = append(p.Filters, f)
		seenFilters[qf.Name] = true
	}

	seenSelectors := map[string]bool{}

	for _, qs := range q.Selectors {
		if qs.Filter != MainFilterName && !seenFilters[qs.Filter] {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownFilter, qs.Filter)
		}

		if qs.Count == 0 {
			return nil, fmt.Errorf("%w: SELECT", ErrInvalidNumber)
		}

		s := Selector{
			Name:   qs.Name,
			Count:  qs.Count,
			Filter: qs.Filter,
		}

		switch len(qs.Bucket) {
		case 1: // only bucket attribute
			s.Attribute = qs.Bucket[0]
		case 2: // clause + bucket attribute
			s.Clause = clauseFromString(qs.Bucket[0])
			s.Attribute = qs.Bucket[1]
		}

		p.Selectors = append(p.Selectors, s)
		seenSelectors[qs.Name] = true
	}

	for _, qr := range q.Replicas {
		if qr.Selector != "" && !seenSelectors[qr.Selector] {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownSelector, qr.Selector)
		}

		if qr.Count <= 0 {
			return nil, fmt.Errorf("%w: REP", ErrInvalidNumber)
		}

		p.Replicas = append(p.Replicas, Replica{
			Count:    uint32(qr.Count),
			Selector: qr.Selector,
		})
	}

	return p, nil
}

func clauseFromString(s string) Clause {
	switch strings.ToUpper(s) {
	case "SAME":
		return ClauseSame
	case "DISTINCT":
		return ClauseDistinct
	default:
		return ClauseDefault
	}
}

func filterFromOrChain(expr *orChain) (Filter, error) {
	var fs []Filter

	for _, ac := range expr.Clauses {
		f, err := filterFromAndChain(ac)
		if err != nil {
			return Filter{}, err
		}
		fs = append(fs, f)
	}

	if len(fs) == 1 {
		return fs[0], nil
	}

	return Filter{
		Op:  OpOR,
		Sub: fs,
	}, nil
}

func filterFromAndChain(expr *andChain) (Filter, error) {
	var fs []Filter

	for _, fe := range expr.Clauses {
		var (
			f   Filter
			err error
		)

		if fe.Expr != nil {
			f, err = filterFromSimpleExpr(fe.Expr)
		} else {
			f = Filter{Name: fe.Reference}
		}
		if err != nil {
			return Filter{}, err
		}

		fs = append(fs, f)
	}

	if len(fs) == 1 {
		return fs[0], nil
	}

	return Filter{
		Op:  OpAND,
		Sub: fs,
	}, nil
}

func filterFromSimpleExpr(se *simpleExpr) (Filter, error) {
	f := Filter{
		Key:   se.Key,
		Value: se.Value,
	}

	switch se.Op {
	case "EQ":
		f.Op = OpEQ
	case "NE":
		f.Op = OpNE
	case "GE":
		f.Op = OpGE
	case "GT":
		f.Op = OpGT
	case "LE":
		f.Op = OpLE
	case "LT":
		f.Op = OpLT
	default:
		return Filter{}, fmt.Errorf("%w: '%s'", ErrUnknownOp, se.Op)
	}

	return f, nil
}
