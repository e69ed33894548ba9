package object

import (
	"github.com/stornet-dev/stornet-node/pkg/core/object"
)

// The methods below back the node-facing side of the object transport:
// they serve requests arriving from other storage nodes and are never
// forwarded further.

// PutLocal persists an object received from another node (replication
// traffic). No propagation is triggered: the sending node owns the
// placement of the object.
func (s *Service) PutLocal(obj *object.Object, payload []byte) error {
	return s.localStorage.Put(obj, payload)
}

// DeleteLocal removes the local copy of the object on behalf of
// another node.
func (s *Service) DeleteLocal(addr object.Address) error {
	return s.localStorage.Delete(addr)
}

// HeadLocal serves a direct existence probe: strictly the local
// storage, no forwarding. Returns localstore.ErrNotFound when this
// node does not hold the object.
func (s *Service) HeadLocal(addr object.Address) (*object.Object, error) {
	return s.localStorage.Head(addr)
}
