package policy

import (
	"fmt"
	"strings"
)

// Special case of the UN-LOCODE group naming: Saint Petersburg nodes
// ("RU LED") are grouped under the historical "SPB" name instead of
// the location token.
const (
	locodeSPB      = "RU LED"
	locodeSPBGroup = "SPB"
)

// LocationGroup returns the selection group name derived from a
// UN-LOCODE value: "RU LED" maps to "SPB", any other locode uses its
// second whitespace-separated token.
func LocationGroup(unLocode string) string {
	if unLocode == locodeSPB {
		return locodeSPBGroup
	}

	tokens := strings.Fields(unLocode)
	if len(tokens) < 2 {
		return unLocode
	}

	return tokens[1]
}

// LocationPolicy returns the textual form of a single-copy policy
// pinning objects to nodes of the given UN-LOCODE:
//
//	REP 1 IN LOC_<g>_PLACE CBF 1 SELECT 1 FROM LOC_<g> AS LOC_<g>_PLACE
//	FILTER "UN-LOCODE" EQ "<locode>" AS LOC_<g>
//
// where <g> is LocationGroup(unLocode).
func LocationPolicy(unLocode string) string {
	g := LocationGroup(unLocode)

	return fmt.Sprintf(
		`REP 1 IN LOC_%s_PLACE CBF 1 SELECT 1 FROM LOC_%s AS LOC_%s_PLACE FILTER "UN-LOCODE" EQ "%s" AS LOC_%s`,
		g, g, g, unLocode, g,
	)
}
