package netmap

import (
	"sort"
)

// Attribute keys announced by storage nodes and used in placement policy
// filters.
const (
	AttrUNLOCODE = "UN-LOCODE"
	AttrCapacity = "Capacity"
	AttrPrice    = "Price"
)

// NodeInfo groups public information about a single storage node:
// its identifier, announced network endpoint and attributes.
//
// NodeInfo values are treated as immutable once they are placed into
// a NetMap.
type NodeInfo struct {
	id string

	endpoint string

	attrs map[string]string
}

// SetID sets string identifier of the node. The identifier is expected
// to be a base58-encoded public key, but NodeInfo does not interpret it.
func (x *NodeInfo) SetID(id string) {
	x.id = id
}

// ID returns node identifier set with SetID.
func (x NodeInfo) ID() string {
	return x.id
}

// SetNetworkEndpoint sets announced network endpoint of the node.
func (x *NodeInfo) SetNetworkEndpoint(e string) {
	x.endpoint = e
}

// NetworkEndpoint returns endpoint set with SetNetworkEndpoint.
func (x NodeInfo) NetworkEndpoint() string {
	return x.endpoint
}

// SetAttribute sets value of the node attribute by key.
func (x *NodeInfo) SetAttribute(key, value string) {
	if x.attrs == nil {
		x.attrs = make(map[string]string, 1)
	}

	x.attrs[key] = value
}

// Attribute returns value of the node attribute by key. Returns empty
// string if the attribute is not set.
func (x NodeInfo) Attribute(key string) string {
	return x.attrs[key]
}

// IterateAttributes iterates over all node attributes and passes them
// into f. Handler MUST NOT be nil.
func (x NodeInfo) IterateAttributes(f func(key, value string)) {
	for k, v := range x.attrs {
		f(k, v)
	}
}

// NetMap is an epoch-stamped snapshot of the storage network: the list
// of nodes with their attributes. The snapshot is immutable, topology
// changes produce a new NetMap for the next epoch.
type NetMap struct {
	epoch uint64

	nodes []NodeInfo
}

// New creates NetMap snapshot of the given epoch from the list of nodes.
// Nodes are copied and ordered by identifier so that all derived
// computations are stable regardless of the announcement order.
func New(epoch uint64, nodes []NodeInfo) *NetMap {
	ns := make([]NodeInfo, len(nodes))
	copy(ns, nodes)

	sort.Slice(ns, func(i, j int) bool {
		return ns[i].ID() < ns[j].ID()
	})

	return &NetMap{
		epoch: epoch,
		nodes: ns,
	}
}

// Epoch returns the number of the epoch the snapshot was taken at.
func (m *NetMap) Epoch() uint64 {
	return m.epoch
}

// Nodes returns all nodes of the snapshot ordered by identifier.
//
// Return value MUST NOT be mutated.
func (m *NetMap) Nodes() []NodeInfo {
	return m.nodes
}

// Node looks up a node by identifier. Second value is false if the
// snapshot has no such node.
func (m *NetMap) Node(id string) (NodeInfo, bool) {
	i := sort.Search(len(m.nodes), func(i int) bool {
		return m.nodes[i].ID() >= id
	})

	if i < len(m.nodes) && m.nodes[i].ID() == id {
		return m.nodes[i], true
	}

	return NodeInfo{}, false
}
