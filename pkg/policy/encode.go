package policy

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode returns the textual form of the policy as a list of clauses:
// REP clauses first, then CBF, then SELECT, then FILTER. Joining the
// result with spaces or newlines produces a string Parse accepts.
func Encode(p *Policy) []string {
	if p == nil {
		return nil
	}

	// 1 for container backup factor
	result := make([]string, 0, len(p.Replicas)+len(p.Selectors)+len(p.Filters)+1)

	for _, r := range p.Replicas {
		result = append(result, encodeReplica(r))
	}

	if p.CBF != 0 {
		result = append(result, fmt.Sprintf("CBF %d", p.CBF))
	}

	for _, s := range p.Selectors {
		result = append(result, encodeSelector(s))
	}

	for _, f := range p.Filters {
		result = append(result, "FILTER "+encodeFilter(f, true))
	}

	return result
}

// EncodeToString returns single-line textual form of the policy.
func EncodeToString(p *Policy) string {
	return strings.Join(Encode(p), " ")
}

func encodeReplica(r Replica) string {
	b := new(strings.Builder)

	b.WriteString("REP ")
	b.WriteString(strconv.FormatUint(uint64(r.Count), 10))

	if r.Selector != "" {
		b.WriteString(" IN ")
		b.WriteString(r.Selector)
	}

	return b.String()
}

func encodeSelector(s Selector) string {
	b := new(strings.Builder)

	b.WriteString("SELECT ")
	b.WriteString(strconv.FormatUint(uint64(s.Count), 10))

	if s.Attribute != "" {
		b.WriteString(" IN")

		switch s.Clause {
		case ClauseSame:
			b.WriteString(" SAME ")
		case ClauseDistinct:
			b.WriteString(" DISTINCT ")
		default:
			b.WriteByte(' ')
		}

		b.WriteString(s.Attribute)
	}

	b.WriteString(" FROM ")
	b.WriteString(s.Filter)

	if s.Name != "" {
		b.WriteString(" AS ")
		b.WriteString(s.Name)
	}

	return b.String()
}

func encodeFilter(f Filter, top bool) string {
	if f.Name != "" && !top {
		return "@" + f.Name
	}

	var inner string

	switch f.Op {
	case OpAND, OpOR:
		parts := make([]string, 0, len(f.Sub))
		for _, sub := range f.Sub {
			parts = append(parts, encodeFilter(sub, false))
		}
		inner = strings.Join(parts, " "+f.Op.String()+" ")
	default:
		inner = fmt.Sprintf("%s %s %s",
			strconv.Quote(f.Key), f.Op, strconv.Quote(f.Value))
	}

	if top && f.Name != "" {
		inner += " AS " + f.Name
	}

	return inner
}
