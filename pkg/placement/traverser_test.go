package placement

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
)

func TestTraverserOrder(t *testing.T) {
	vectors := [][]netmap.NodeInfo{
		{testNode("01"), testNode("02")},
		{testNode("03")},
	}

	tr := NewTraverser(vectors)

	var visited []string

	for {
		n, ok := tr.Next()
		if !ok {
			break
		}

		visited = append(visited, n.ID())
		tr.SubmitSuccess()
	}

	require.Equal(t, []string{"01", "02", "03"}, visited)
	require.True(t, tr.Success())
}

func TestTraverserIncomplete(t *testing.T) {
	vectors := [][]netmap.NodeInfo{
		{testNode("01"), testNode("02")},
	}

	tr := NewTraverser(vectors)

	_, ok := tr.Next()
	require.True(t, ok)
	tr.SubmitSuccess()

	_, ok = tr.Next()
	require.True(t, ok)
	// the second store failed, no success submitted

	_, ok = tr.Next()
	require.False(t, ok)
	require.False(t, tr.Success())
}

func TestTraverserSuccessAfter(t *testing.T) {
	vectors := [][]netmap.NodeInfo{
		{testNode("01"), testNode("02"), testNode("03")},
	}

	tr := NewTraverser(vectors, SuccessAfter(1))

	n, ok := tr.Next()
	require.True(t, ok)
	require.Equal(t, "01", n.ID())

	tr.SubmitSuccess()
	require.True(t, tr.Success())

	_, ok = tr.Next()
	require.False(t, ok)
}
