package object

import (
	"github.com/stornet-dev/stornet-node/pkg/core/container"
)

// SplitInfo describes the structure of a complex (multi-part) object.
// A complex object is a logical object assembled from parts stored as
// regular objects; its terminal ("last") part anchors the logical
// object and defines its copy-count semantics.
type SplitInfo struct {
	// LastPart is the identifier of the terminal part.
	LastPart ID

	// Parts are identifiers of all parts in payload order, the last
	// part included.
	Parts []ID
}

// Object is the header of a stored object. Payload is kept separately
// by the local storage.
type Object struct {
	address Address

	owner container.OwnerID

	payloadSize uint64

	createdAt uint64

	split *SplitInfo
}

// New composes an object header.
func New(addr Address, owner container.OwnerID, payloadSize, epoch uint64) *Object {
	return &Object{
		address:     addr,
		owner:       owner,
		payloadSize: payloadSize,
		createdAt:   epoch,
	}
}

// Address returns the object address.
func (o *Object) Address() Address {
	return o.address
}

// Owner returns the identity the object was written by.
func (o *Object) Owner() container.OwnerID {
	return o.owner
}

// PayloadSize returns the payload length in bytes.
func (o *Object) PayloadSize() uint64 {
	return o.payloadSize
}

// CreatedAt returns the number of the epoch the object was written at.
// Placement of the object is verified against the network map snapshot
// of this epoch.
func (o *Object) CreatedAt() uint64 {
	return o.createdAt
}

// SetSplitInfo marks the object as complex and records its parts.
func (o *Object) SetSplitInfo(si *SplitInfo) {
	o.split = si
}

// SplitInfo returns the split structure of a complex object, nil for a
// simple one.
func (o *Object) SplitInfo() *SplitInfo {
	return o.split
}

// IsComplex reports whether the object is a multi-part one.
func (o *Object) IsComplex() bool {
	return o.split != nil
}
