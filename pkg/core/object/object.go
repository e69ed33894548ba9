// Package object provides types of the stored objects and their
// addressing.
package object

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
)

// IDSize is the byte length of an object identifier.
const IDSize = 32

// ID represents the object identifier, unique within a container.
type ID [IDSize]byte

// NewID generates a random object identifier.
func NewID() (ID, error) {
	var id ID

	_, err := rand.Read(id[:])
	if err != nil {
		return id, fmt.Errorf("generate object id: %w", err)
	}

	return id, nil
}

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

	if len(data) != IDSize {
		return fmt.Errorf("invalid id length %d", len(data))
	}

	copy(id[:], data)

	return nil
}

// Address is a global address of an object: container and object
// identifiers combined.
type Address struct {
	cnr container.ID

	obj ID
}

// NewAddress composes an address from the container and object
// identifiers.
func NewAddress(cnr container.ID, obj ID) Address {
	return Address{cnr: cnr, obj: obj}
}

// Container returns the container identifier.
func (a Address) Container() container.ID {
	return a.cnr
}

// Object returns the object identifier.
func (a Address) Object() ID {
	return a.obj
}

// EncodeToString encodes the address into "<cid>/<oid>" form.
func (a Address) EncodeToString() string {
	return a.cnr.EncodeToString() + "/" + a.obj.EncodeToString()
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.EncodeToString()
}

// DecodeString decodes "<cid>/<oid>" string into the address.
func (a *Address) DecodeString(s string) error {
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return fmt.Errorf("invalid address format %q", s)
	}

	err := a.cnr.DecodeString(s[:i])
	if err != nil {
		return fmt.Errorf("decode container id: %w", err)
	}

	err = a.obj.DecodeString(s[i+1:])
	if err != nil {
		return fmt.Errorf("decode object id: %w", err)
	}

	return nil
}
