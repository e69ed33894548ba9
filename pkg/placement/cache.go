package placement

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
)

// defaultCacheSize bounds the number of cached container resolutions.
const defaultCacheSize = 1000

// ContainerNodesCache memoizes resolved placement vectors per
// (container, epoch) pair. Placement is a pure function of the policy
// and the epoch snapshot, so an entry never becomes stale, it only gets
// evicted.
type ContainerNodesCache struct {
	cache *lru.Cache[cacheKey, [][]netmap.NodeInfo]
}

type cacheKey struct {
	cnr   container.ID
	epoch uint64
}

// NewContainerNodesCache creates a cache with the given capacity,
// non-positive capacity falls back to the default one.
func NewContainerNodesCache(size int) *ContainerNodesCache {
	if size <= 0 {
		size = defaultCacheSize
	}

	cache, err := lru.New[cacheKey, [][]netmap.NodeInfo](size)
	if err != nil {
		panic(fmt.Sprintf("create LRU cache: %v", err))
	}

	return &ContainerNodesCache{cache: cache}
}

// ContainerNodes returns placement vectors for the container over the
// given snapshot, resolving and caching on first request.
func (c *ContainerNodesCache) ContainerNodes(cnr container.ID, cnrObj *container.Container, nm *netmap.NetMap) ([][]netmap.NodeInfo, error) {
	key := cacheKey{cnr: cnr, epoch: nm.Epoch()}

	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}

	vectors, err := Resolve(cnrObj.PlacementPolicy(), nm)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, vectors)

	return vectors, nil
}
