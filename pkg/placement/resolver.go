// Package placement computes, for a given placement policy and network
// map snapshot, the set of nodes which must hold a copy of every object
// of the container.
package placement

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/policy"
)

// ErrPolicyUnsatisfiable is returned when the network map has not
// enough nodes matching the policy filters to host the declared number
// of replicas.
var ErrPolicyUnsatisfiable = errors.New("placement: policy cannot be satisfied by the network map")

// Resolve computes placement vectors for the policy over the network
// map snapshot: one vector of nodes per REP clause, each vector exactly
// of the replica length. The computation is a pure function of its
// arguments: repeated calls with the same (policy, map) pair yield
// identical vectors, node candidates are ordered by identifier.
func Resolve(p *policy.Policy, nm *netmap.NetMap) ([][]netmap.NodeInfo, error) {
	if p == nil || nm == nil {
		return nil, errors.New("placement: nil policy or network map")
	}

	pools, err := evalFilters(p, nm)
	if err != nil {
		return nil, err
	}

	buckets, err := evalSelectors(p, pools, nm)
	if err != nil {
		return nil, err
	}

	vectors := make([][]netmap.NodeInfo, 0, len(p.Replicas))

	for _, r := range p.Replicas {
		pool := buckets[r.Selector]

		if uint32(len(pool)) < r.Count {
			return nil, fmt.Errorf("%w: replica %d needs %d nodes, %d available",
				ErrPolicyUnsatisfiable, len(vectors), r.Count, len(pool))
		}

		v := make([]netmap.NodeInfo, r.Count)
		copy(v, pool[:r.Count])

		vectors = append(vectors, v)
	}

	return vectors, nil
}

// ContainerNodes resolves the policy and flattens the placement vectors
// into a deduplicated target set ordered by node identifier.
func ContainerNodes(p *policy.Policy, nm *netmap.NetMap) ([]netmap.NodeInfo, error) {
	vectors, err := Resolve(p, nm)
	if err != nil {
		return nil, err
	}

	return FlattenVectors(vectors), nil
}

// FlattenVectors merges placement vectors into a single deduplicated
// node list preserving the first-seen order.
func FlattenVectors(vectors [][]netmap.NodeInfo) []netmap.NodeInfo {
	seen := make(map[string]struct{})

	var res []netmap.NodeInfo

	for i := range vectors {
		for _, n := range vectors[i] {
			if _, ok := seen[n.ID()]; ok {
				continue
			}

			seen[n.ID()] = struct{}{}
			res = append(res, n)
		}
	}

	return res
}

// IDs projects nodes onto their identifiers.
func IDs(nodes []netmap.NodeInfo) []string {
	res := make([]string, len(nodes))
	for i := range nodes {
		res[i] = nodes[i].ID()
	}

	return res
}

// evalFilters produces a candidate pool per named filter. A filter
// matching zero nodes makes the policy unsatisfiable right away, an
// empty pool is never a valid (empty) placement.
func evalFilters(p *policy.Policy, nm *netmap.NetMap) (map[string][]netmap.NodeInfo, error) {
	pools := make(map[string][]netmap.NodeInfo, len(p.Filters))

	for i := range p.Filters {
		f := p.Filters[i]

		var pool []netmap.NodeInfo

		for _, n := range nm.Nodes() {
			if matchFilter(p, f, n) {
				pool = append(pool, n)
			}
		}

		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: filter '%s' matches no nodes",
				ErrPolicyUnsatisfiable, f.Name)
		}

		pools[f.Name] = pool
	}

	return pools, nil
}

// evalSelectors chooses up to Count*CBF nodes per selector from its
// filter pool. Node pools arrive ordered by identifier (the network map
// keeps them that way), so the choice is stable across repeated calls.
func evalSelectors(p *policy.Policy, pools map[string][]netmap.NodeInfo, nm *netmap.NetMap) (map[string][]netmap.NodeInfo, error) {
	cbf := p.BackupFactor()

	buckets := make(map[string][]netmap.NodeInfo, len(p.Selectors)+1)

	// default selector over the whole network map, for REP clauses
	// without IN
	buckets[""] = nm.Nodes()

	for _, s := range p.Selectors {
		var pool []netmap.NodeInfo

		if s.Filter == policy.MainFilterName {
			pool = nm.Nodes()
		} else {
			pool = pools[s.Filter]
		}

		width := s.Count * cbf
		if uint32(len(pool)) < width {
			width = uint32(len(pool))
		}

		bucket := make([]netmap.NodeInfo, width)
		copy(bucket, pool[:width])

		buckets[s.Name] = bucket
	}

	return buckets, nil
}

func matchFilter(p *policy.Policy, f policy.Filter, n netmap.NodeInfo) bool {
	// reference to a named filter
	if f.Name != "" && f.Key == "" && len(f.Sub) == 0 && f.Op == 0 {
		ref, ok := p.FilterByName(f.Name)
		if !ok {
			return false
		}

		return matchFilter(p, ref, n)
	}

	switch f.Op {
	case policy.OpAND:
		for i := range f.Sub {
			if !matchFilter(p, f.Sub[i], n) {
				return false
			}
		}

		return true
	case policy.OpOR:
		for i := range f.Sub {
			if matchFilter(p, f.Sub[i], n) {
				return true
			}
		}

		return false
	case policy.OpEQ:
		return n.Attribute(f.Key) == f.Value
	case policy.OpNE:
		return n.Attribute(f.Key) != f.Value
	case policy.OpGE, policy.OpGT, policy.OpLE, policy.OpLT:
		return matchNumeric(f.Op, n.Attribute(f.Key), f.Value)
	default:
		return false
	}
}

func matchNumeric(op policy.Operation, attr, value string) bool {
	a, err := strconv.ParseUint(attr, 10, 64)
	if err != nil {
		return false
	}

	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return false
	}

	switch op {
	case policy.OpGE:
		return a >= v
	case policy.OpGT:
		return a > v
	case policy.OpLE:
		return a <= v
	case policy.OpLT:
		return a < v
	default:
		return false
	}
}
