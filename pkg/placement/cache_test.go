package placement

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
)

func TestContainerNodesCache(t *testing.T) {
	p := mustParse(t, `REP 1`)

	cnr, err := container.New("owner", p, `REP 1`)
	require.NoError(t, err)

	cid := container.CalculateID(cnr)

	cache := NewContainerNodesCache(10)

	nmOld := netmap.New(1, []netmap.NodeInfo{testNode("01")})

	vectors, err := cache.ContainerNodes(cid, cnr, nmOld)
	require.NoError(t, err)
	require.Equal(t, []string{"01"}, IDs(vectors[0]))

	// the same epoch is served from cache even if resolution would now
	// pick another node
	nmSameEpoch := netmap.New(1, []netmap.NodeInfo{testNode("00")})

	vectors, err = cache.ContainerNodes(cid, cnr, nmSameEpoch)
	require.NoError(t, err)
	require.Equal(t, []string{"01"}, IDs(vectors[0]))

	// a new epoch resolves anew
	nmNew := netmap.New(2, []netmap.NodeInfo{testNode("00")})

	vectors, err = cache.ContainerNodes(cid, cnr, nmNew)
	require.NoError(t, err)
	require.Equal(t, []string{"00"}, IDs(vectors[0]))
}

func TestContainerNodesCacheError(t *testing.T) {
	p := mustParse(t, `REP 3`)

	cnr, err := container.New("owner", p, `REP 3`)
	require.NoError(t, err)

	cache := NewContainerNodesCache(0)

	nm := netmap.New(1, []netmap.NodeInfo{testNode("01")})

	_, err = cache.ContainerNodes(container.CalculateID(cnr), cnr, nm)
	require.ErrorIs(t, err, ErrPolicyUnsatisfiable)
}
