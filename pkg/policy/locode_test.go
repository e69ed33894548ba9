package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocationGroup(t *testing.T) {
	testCases := [...]struct {
		locode string
		group  string
	}{
		{"RU LED", "SPB"},
		{"RU MOW", "MOW"},
		{"SE STO", "STO"},
		{"FI HEL", "HEL"},
		{"HEL", "HEL"},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.group, LocationGroup(tc.locode))
	}
}

func TestLocationPolicy(t *testing.T) {
	const expected = `REP 1 IN LOC_SPB_PLACE CBF 1 SELECT 1 FROM LOC_SPB AS LOC_SPB_PLACE FILTER "UN-LOCODE" EQ "RU LED" AS LOC_SPB`

	require.Equal(t, expected, LocationPolicy("RU LED"))

	p, err := Parse(LocationPolicy("SE STO"))
	require.NoError(t, err)

	require.Len(t, p.Replicas, 1)
	require.EqualValues(t, 1, p.Replicas[0].Count)
	require.Equal(t, "LOC_STO_PLACE", p.Replicas[0].Selector)
	require.EqualValues(t, 1, p.BackupFactor())

	f, ok := p.FilterByName("LOC_STO")
	require.True(t, ok)
	require.Equal(t, "UN-LOCODE", f.Key)
	require.Equal(t, OpEQ, f.Op)
	require.Equal(t, "SE STO", f.Value)
}
