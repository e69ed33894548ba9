package container

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/stornet-dev/stornet-node/pkg/policy"
)

// ID represents the container identifier: SHA-256 checksum of the
// container structure.
type ID [sha256.Size]byte

// EncodeToString encodes ID into base58 string.
func (id ID) EncodeToString() string {
	return base58.Encode(id[:])
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return id.EncodeToString()
}

// DecodeString decodes base58 string into ID.
func (id *ID) DecodeString(s string) error {
	data, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode base58: %w", err)
	}

	if len(data) != sha256.Size {
		return fmt.Errorf("invalid id length %d", len(data))
	}

	copy(id[:], data)

	return nil
}

// OwnerID represents the identity of the container owner as presented
// by the external wallet subsystem.
type OwnerID string

// String implements fmt.Stringer.
func (o OwnerID) String() string {
	return string(o)
}

// Container carries the owner identity and the placement policy the
// owner declared at creation. The policy is immutable for the whole
// container lifetime.
type Container struct {
	owner OwnerID

	policy *policy.Policy

	policyText string

	nonce uuid.UUID
}

// ErrNilPolicy is returned on an attempt to create a container without
// a placement policy.
var ErrNilPolicy = errors.New("container: nil placement policy")

// New creates a container owned by the given identity with the parsed
// placement policy. The original policy text is retained so that ID
// derivation and re-encoding stay byte-stable.
func New(owner OwnerID, p *policy.Policy, policyText string) (*Container, error) {
	if p == nil {
		return nil, ErrNilPolicy
	}

	return &Container{
		owner:      owner,
		policy:     p,
		policyText: policyText,
		nonce:      uuid.New(),
	}, nil
}

// SetNonce replaces the container nonce. Every node announcing the
// same container must use the same nonce, otherwise the derived
// identifiers diverge.
func (c *Container) SetNonce(n uuid.UUID) {
	c.nonce = n
}

// Owner returns identity of the container owner.
func (c *Container) Owner() OwnerID {
	return c.owner
}

// PlacementPolicy returns the placement policy of the container.
//
// Return value MUST NOT be mutated.
func (c *Container) PlacementPolicy() *policy.Policy {
	return c.policy
}

// PlacementPolicyText returns the original textual form of the policy.
func (c *Container) PlacementPolicyText() string {
	return c.policyText
}

// CalculateID derives the container identifier from its owner, nonce
// and policy text.
func CalculateID(c *Container) ID {
	h := sha256.New()
	h.Write([]byte(c.owner))
	h.Write(c.nonce[:])
	h.Write([]byte(c.policyText))

	var id ID
	copy(id[:], h.Sum(nil))

	return id
}

// Source is an interface of a read-only container supplier.
type Source interface {
	// Get reads the container by identifier.
	//
	// Implementations must not retain the container pointer and modify
	// the container through it.
	Get(ID) (*Container, error)
}
