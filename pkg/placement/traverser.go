package placement

import (
	"sync"

	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
)

// Traverser controls traversal of placement vectors during object
// propagation: it hands out target nodes one by one and tracks how many
// successful stores are still required.
type Traverser struct {
	mtx sync.Mutex

	rem int

	nextI, nextJ int

	vectors [][]netmap.NodeInfo
}

// Option represents traverser option.
type Option func(*cfg)

type cfg struct {
	rem int
}

func defaultCfg() *cfg {
	return &cfg{
		rem: 0,
	}
}

// NewTraverser creates a traverser over the placement vectors. Unless
// overridden with SuccessAfter, traversal succeeds when every node of
// every vector confirmed the store.
func NewTraverser(vectors [][]netmap.NodeInfo, opts ...Option) *Traverser {
	c := defaultCfg()

	for i := range opts {
		if opts[i] != nil {
			opts[i](c)
		}
	}

	rem := c.rem
	if rem == 0 {
		for i := range vectors {
			rem += len(vectors[i])
		}
	}

	return &Traverser{
		rem:     rem,
		vectors: vectors,
	}
}

// Next returns the next unprocessed placement target. Second value is
// false when no targets are left or traversal already succeeded.
func (t *Traverser) Next() (netmap.NodeInfo, bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.rem <= 0 || t.nextI == len(t.vectors) {
		return netmap.NodeInfo{}, false
	}

	n := t.vectors[t.nextI][t.nextJ]

	if t.nextJ++; t.nextJ == len(t.vectors[t.nextI]) {
		t.nextJ = 0
		t.nextI++
	}

	return n, true
}

// SubmitSuccess records a single succeeded node operation.
func (t *Traverser) SubmitSuccess() {
	t.mtx.Lock()
	t.rem--
	t.mtx.Unlock()
}

// Success returns true if the required number of stores was confirmed.
func (t *Traverser) Success() bool {
	t.mtx.Lock()
	s := t.rem <= 0
	t.mtx.Unlock()

	return s
}

// SuccessAfter overrides the number of confirmations the traversal
// requires. Option has no effect if the number is not positive.
func SuccessAfter(v int) Option {
	return func(c *cfg) {
		if v > 0 {
			c.rem = v
		}
	}
}
