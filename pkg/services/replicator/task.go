package replicator

import (
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
)

// Task represents a replication task: store the given number of copies
// of the object on the listed candidate nodes.
type Task struct {
	quantity uint32

	addr object.Address

	obj *object.Object

	payload []byte

	nodes []netmap.NodeInfo
}

// WithCopiesNumber sets number of copies to replicate.
func (t *Task) WithCopiesNumber(v uint32) *Task {
	if t != nil {
		t.quantity = v
	}

	return t
}

// WithObjectAddress sets address of the replicated object.
func (t *Task) WithObjectAddress(v object.Address) *Task {
	if t != nil {
		t.addr = v
	}

	return t
}

// WithObject sets the replicated object with its payload, skipping the
// local storage read.
func (t *Task) WithObject(obj *object.Object, payload []byte) *Task {
	if t != nil {
		t.obj = obj
		t.payload = payload
	}

	return t
}

// WithNodes sets candidate nodes to replicate to.
func (t *Task) WithNodes(v []netmap.NodeInfo) *Task {
	if t != nil {
		t.nodes = v
	}

	return t
}
