// Package client defines the interface of a remote storage node client
// used by the placement, replication and verification machinery.
package client

import (
	"context"

	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
)

// Client is an interface of a storage node's remote object transport.
// Implementations dial the node by its announced endpoint; requests
// are not forwarded further by the receiving node.
type Client interface {
	// PutObject stores the object with its payload on the node.
	PutObject(ctx context.Context, node netmap.NodeInfo, obj *object.Object, payload []byte) error

	// DeleteObject removes the object from the node.
	DeleteObject(ctx context.Context, node netmap.NodeInfo, addr object.Address) error

	// HeadObject reads the object header from the node without request
	// forwarding (direct existence probe). A node that does not hold
	// the object responds with an error for which IsErrObjectNotFound
	// returns true.
	HeadObject(ctx context.Context, node netmap.NodeInfo, addr object.Address) (*object.Object, error)
}
