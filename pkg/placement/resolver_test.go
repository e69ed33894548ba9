package placement

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/policy"
)

func testNode(id string, attrs ...string) netmap.NodeInfo {
	var n netmap.NodeInfo

	n.SetID(id)
	n.SetNetworkEndpoint("127.0.0.1:8080")

	for i := 0; i < len(attrs); i += 2 {
		n.SetAttribute(attrs[i], attrs[i+1])
	}

	return n
}

func testNetMap(nodes ...netmap.NodeInfo) *netmap.NetMap {
	return netmap.New(1, nodes)
}

func mustParse(t *testing.T, s string) *policy.Policy {
	p, err := policy.Parse(s)
	require.NoError(t, err)

	return p
}

func TestResolveDeterminism(t *testing.T) {
	nm := testNetMap(
		testNode("04", netmap.AttrUNLOCODE, "RU MOW"),
		testNode("02", netmap.AttrUNLOCODE, "RU LED"),
		testNode("03", netmap.AttrUNLOCODE, "SE STO"),
		testNode("01", netmap.AttrUNLOCODE, "FI HEL"),
	)

	p := mustParse(t, `REP 2`)

	first, err := Resolve(p, nm)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Resolve(p, nm)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	// candidates are ordered by identifier
	require.Equal(t, []string{"01", "02"}, IDs(first[0]))
}

func TestResolveLocationPin(t *testing.T) {
	nm := testNetMap(
		testNode("01", netmap.AttrUNLOCODE, "FI HEL"),
		testNode("02", netmap.AttrUNLOCODE, "RU LED"),
		testNode("03", netmap.AttrUNLOCODE, "SE STO"),
		testNode("04", netmap.AttrUNLOCODE, "RU MOW"),
	)

	p := mustParse(t, policy.LocationPolicy("RU LED"))

	vectors, err := Resolve(p, nm)
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	require.Equal(t, []string{"02"}, IDs(vectors[0]))
}

func TestResolveUnsatisfiable(t *testing.T) {
	t.Run("NotEnoughNodes", func(t *testing.T) {
		nm := testNetMap(
			testNode("01"),
			testNode("02"),
		)

		_, err := Resolve(mustParse(t, `REP 3`), nm)
		require.ErrorIs(t, err, ErrPolicyUnsatisfiable)
	})

	t.Run("FilterMatchesNothing", func(t *testing.T) {
		nm := testNetMap(
			testNode("01", netmap.AttrUNLOCODE, "FI HEL"),
			testNode("02", netmap.AttrUNLOCODE, "SE STO"),
		)

		p := mustParse(t, `REP 1 IN X
SELECT 1 FROM F AS X
FILTER "UN-LOCODE" EQ "RU LED" AS F`)

		_, err := Resolve(p, nm)
		require.ErrorIs(t, err, ErrPolicyUnsatisfiable)
	})

	t.Run("PoolSmallerThanReplica", func(t *testing.T) {
		nm := testNetMap(
			testNode("01", netmap.AttrUNLOCODE, "RU LED"),
			testNode("02", netmap.AttrUNLOCODE, "SE STO"),
			testNode("03", netmap.AttrUNLOCODE, "SE STO"),
		)

		p := mustParse(t, `REP 2 IN X
SELECT 2 FROM F AS X
FILTER "UN-LOCODE" EQ "RU LED" AS F`)

		_, err := Resolve(p, nm)
		require.ErrorIs(t, err, ErrPolicyUnsatisfiable)
	})
}

func TestResolveBackupFactorWidth(t *testing.T) {
	nodes := make([]netmap.NodeInfo, 0, 10)
	for i := 0; i < 10; i++ {
		nodes = append(nodes, testNode(fmt.Sprintf("%02d", i)))
	}

	nm := testNetMap(nodes...)

	// default CBF is 3, bucket gets 2*3 nodes, replica takes first 2
	p := mustParse(t, `REP 2 IN X SELECT 2 FROM * AS X`)

	vectors, err := Resolve(p, nm)
	require.NoError(t, err)
	require.Equal(t, []string{"00", "01"}, IDs(vectors[0]))

	// the selection width never exceeds the pool
	p = mustParse(t, `REP 2 IN X CBF 10 SELECT 2 FROM * AS X`)

	vectors, err = Resolve(p, nm)
	require.NoError(t, err)
	require.Equal(t, []string{"00", "01"}, IDs(vectors[0]))
}

func TestResolveNumericFilter(t *testing.T) {
	nm := testNetMap(
		testNode("01", netmap.AttrCapacity, "10"),
		testNode("02", netmap.AttrCapacity, "100"),
		testNode("03", netmap.AttrCapacity, "1000"),
	)

	p := mustParse(t, `REP 1 IN X
SELECT 1 FROM Big AS X
FILTER "Capacity" GE "1000" AS Big`)

	vectors, err := Resolve(p, nm)
	require.NoError(t, err)
	require.Equal(t, []string{"03"}, IDs(vectors[0]))
}

func TestResolveFilterReference(t *testing.T) {
	nm := testNetMap(
		testNode("01", netmap.AttrUNLOCODE, "RU LED", netmap.AttrCapacity, "10"),
		testNode("02", netmap.AttrUNLOCODE, "RU LED", netmap.AttrCapacity, "1000"),
		testNode("03", netmap.AttrUNLOCODE, "SE STO", netmap.AttrCapacity, "1000"),
	)

	p := mustParse(t, `REP 1 IN X
SELECT 1 FROM GoodSPB AS X
FILTER "UN-LOCODE" EQ "RU LED" AS SPB
FILTER @SPB AND "Capacity" GE "100" AS GoodSPB`)

	vectors, err := Resolve(p, nm)
	require.NoError(t, err)
	require.Equal(t, []string{"02"}, IDs(vectors[0]))
}

func TestContainerNodes(t *testing.T) {
	nm := testNetMap(
		testNode("01", netmap.AttrUNLOCODE, "RU LED"),
		testNode("02", netmap.AttrUNLOCODE, "RU LED"),
		testNode("03", netmap.AttrUNLOCODE, "SE STO"),
	)

	// both REP clauses land on node 01, the target set keeps one copy
	p := mustParse(t, `REP 1 REP 1 IN X
CBF 1
SELECT 1 FROM F AS X
FILTER "UN-LOCODE" EQ "RU LED" AS F`)

	nodes, err := ContainerNodes(p, nm)
	require.NoError(t, err)
	require.Equal(t, []string{"01"}, IDs(nodes))
}

func TestFlattenVectors(t *testing.T) {
	a := testNode("01")
	b := testNode("02")

	flat := FlattenVectors([][]netmap.NodeInfo{{a, b}, {b, a}})
	require.Equal(t, []string{"01", "02"}, IDs(flat))
}
