package netmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newNode(id string) NodeInfo {
	var n NodeInfo
	n.SetID(id)

	return n
}

func TestNetMapOrder(t *testing.T) {
	nm := New(1, []NodeInfo{newNode("03"), newNode("01"), newNode("02")})

	nodes := nm.Nodes()
	require.Len(t, nodes, 3)

	for i, id := range []string{"01", "02", "03"} {
		require.Equal(t, id, nodes[i].ID())
	}
}

func TestNetMapNode(t *testing.T) {
	nm := New(1, []NodeInfo{newNode("02"), newNode("01")})

	n, ok := nm.Node("02")
	require.True(t, ok)
	require.Equal(t, "02", n.ID())

	_, ok = nm.Node("03")
	require.False(t, ok)
}

func TestNodeInfoAttributes(t *testing.T) {
	var n NodeInfo

	n.SetAttribute(AttrUNLOCODE, "RU LED")
	n.SetAttribute(AttrCapacity, "100")

	require.Equal(t, "RU LED", n.Attribute(AttrUNLOCODE))
	require.Equal(t, "", n.Attribute(AttrPrice))

	attrs := make(map[string]string)
	n.IterateAttributes(func(k, v string) { attrs[k] = v })

	require.Equal(t, map[string]string{
		AttrUNLOCODE: "RU LED",
		AttrCapacity: "100",
	}, attrs)
}

func TestStaticSource(t *testing.T) {
	nm1 := New(1, []NodeInfo{newNode("01")})

	src := NewStaticSource(nm1)

	got, err := src.NetMap()
	require.NoError(t, err)
	require.Equal(t, nm1, got)

	epoch, err := src.Epoch()
	require.NoError(t, err)
	require.EqualValues(t, 1, epoch)

	nm2 := New(2, []NodeInfo{newNode("01"), newNode("02")})
	src.Replace(nm2)

	got, err = src.NetMap()
	require.NoError(t, err)
	require.Equal(t, nm2, got)
	require.EqualValues(t, 2, src.CurrentEpoch())

	// history of earlier epochs survives the replacement
	got, err = src.NetMapByEpoch(1)
	require.NoError(t, err)
	require.Equal(t, nm1, got)

	_, err = src.NetMapByEpoch(3)
	require.Error(t, err)
}
