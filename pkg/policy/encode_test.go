package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	testCases := []string{
		`REP 1 IN X CBF 1 SELECT 2 FROM * AS X`,
		`REP 1 SELECT 2 IN City FROM Good FILTER "Country" EQ "RU" AS FromRU FILTER @FromRU AND "Rating" GT "7" AS Good`,
		`REP 7 IN SPB SELECT 1 IN City FROM SPBSSD AS SPB FILTER "City" EQ "SPB" AND "SSD" EQ "true" OR "City" EQ "SPB" AND "Rating" GE "5" AS SPBSSD`,
	}

	for _, tc := range testCases {
		p, err := Parse(tc)
		require.NoError(t, err)

		require.Equal(t, tc, EncodeToString(p))
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	src := `REP 1 IN LOC_SPB_PLACE
CBF 1
SELECT 1 FROM LOC_SPB AS LOC_SPB_PLACE
FILTER "UN-LOCODE" EQ "RU LED" AS LOC_SPB`

	p, err := Parse(src)
	require.NoError(t, err)

	clauses := Encode(p)
	require.Len(t, clauses, 4)
	require.True(t, strings.HasPrefix(clauses[0], "REP 1"))

	reparsed, err := Parse(EncodeToString(p))
	require.NoError(t, err)
	require.EqualValues(t, p, reparsed)
}

func TestEncodeNil(t *testing.T) {
	require.Nil(t, Encode(nil))
}
