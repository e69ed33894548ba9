// Package session implements per-request authorization of object
// operations with session tokens.
//
// A session token is issued by a particular storage node and is
// initially known to that node only: authorization is node-local state
// keyed by the token identifier, not a globally valid credential. Until
// the token record is explicitly distributed, every other node denies
// requests carrying the token, whether the node belongs to the
// container or not.
package session

import (
	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
)

// Verb is an object operation a session token may authorize.
type Verb uint8

const (
	_ Verb = iota

	// VerbPut authorizes object storing.
	VerbPut

	// VerbDelete authorizes object removal.
	VerbDelete

	// VerbHead authorizes object header requests.
	VerbHead
)

func (v Verb) String() string {
	switch v {
	case VerbPut:
		return "PUT"
	case VerbDelete:
		return "DELETE"
	case VerbHead:
		return "HEAD"
	default:
		return "<invalid>"
	}
}

// Token is a time-boxed, operation-scoped authorization credential
// issued to a client. Tokens are immutable after issuance.
type Token struct {
	id []byte

	owner container.OwnerID

	iat, exp uint64

	verbs []Verb

	addr *object.Address

	sig []byte
}

// NewToken composes a token. The identifier is assigned by the issuing
// store, the signature by the external key subsystem.
func NewToken(id []byte, owner container.OwnerID, iat, exp uint64, verbs []Verb) *Token {
	return &Token{
		id:    id,
		owner: owner,
		iat:   iat,
		exp:   exp,
		verbs: verbs,
	}
}

// ID returns the token identifier.
//
// Return value MUST NOT be mutated.
func (t *Token) ID() []byte {
	return t.id
}

// Owner returns the identity the token was issued to.
func (t *Token) Owner() container.OwnerID {
	return t.owner
}

// IssuedAt returns the first epoch of the validity window.
func (t *Token) IssuedAt() uint64 {
	return t.iat
}

// ExpiresAt returns the last epoch of the validity window.
func (t *Token) ExpiresAt() uint64 {
	return t.exp
}

// ValidAt reports whether the epoch falls into the validity window.
func (t *Token) ValidAt(epoch uint64) bool {
	return epoch >= t.iat && epoch <= t.exp
}

// Verbs returns the authorized operation set.
//
// Return value MUST NOT be mutated.
func (t *Token) Verbs() []Verb {
	return t.verbs
}

// AssertVerb reports whether the token authorizes the operation.
func (t *Token) AssertVerb(v Verb) bool {
	for i := range t.verbs {
		if t.verbs[i] == v {
			return true
		}
	}

	return false
}

// LimitByObject narrows the token scope to a single object address.
func (t *Token) LimitByObject(a object.Address) {
	t.addr = &a
}

// ObjectScope returns the object address the token is limited to, nil
// for an unscoped token.
func (t *Token) ObjectScope() *object.Address {
	return t.addr
}

// AssertObject reports whether the token scope covers the address. An
// unscoped token covers any address.
func (t *Token) AssertObject(a object.Address) bool {
	return t.addr == nil || *t.addr == a
}

// SetSignature attaches the issuer signature.
func (t *Token) SetSignature(sig []byte) {
	t.sig = sig
}

// Signature returns the issuer signature.
func (t *Token) Signature() []byte {
	return t.sig
}
