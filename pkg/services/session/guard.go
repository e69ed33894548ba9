package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	"github.com/stornet-dev/stornet-node/pkg/services/session/storage"
)

// Denial reasons surfaced to the client verbatim. Retrying cannot fix
// an authorization fact, so none of them is ever retried internally.
var (
	// ErrTokenExpired means the current epoch is outside the token
	// validity window.
	ErrTokenExpired = errors.New("session token has expired")

	// ErrWrongVerb means the requested operation is not in the token's
	// authorized operation set.
	ErrWrongVerb = errors.New("session token does not authorize the operation")

	// ErrWrongObject means the token is scoped to a different object.
	ErrWrongObject = errors.New("session token is scoped to a different object")

	// ErrNotFound means this node has no record of the token. A token
	// created against one node is not automatically known to other
	// nodes.
	ErrNotFound = errors.New("session token not found")
)

// TokenSource supplies node-local records of issued tokens.
type TokenSource interface {
	// Get returns the record of the token issued to the owner, nil if
	// the node has no record of it.
	Get(owner container.OwnerID, tokenID []byte) *storage.Record
}

// Guard makes per-request authorization decisions against the
// node-local token store.
//
// For correct operation must be created via NewGuard.
type Guard struct {
	tokens TokenSource

	log *zap.Logger
}

// GuardOption is an option of the Guard constructor.
type GuardOption func(*guardCfg)

type guardCfg struct {
	log *zap.Logger
}

// WithLogger returns option to set the Guard logger.
func WithLogger(l *zap.Logger) GuardOption {
	return func(c *guardCfg) {
		c.log = l
	}
}

// NewGuard creates a Guard deciding over records of the given token
// source.
func NewGuard(tokens TokenSource, opts ...GuardOption) *Guard {
	c := &guardCfg{
		log: zap.L(),
	}

	for i := range opts {
		opts[i](c)
	}

	return &Guard{
		tokens: tokens,
		log:    c.log.With(zap.String("component", "Session Guard")),
	}
}

// Authorize decides whether the operation on the object may proceed
// under the token at the given epoch. Checks are ordered: validity
// window, operation set, object scope, then node-local token record.
// A nil return is an Allow decision, otherwise the error is one of the
// denial reasons above.
//
// Whether this node is a placement target of the object's container
// does not participate in the decision: possession of the token record
// gates it.
func (g *Guard) Authorize(t *Token, verb Verb, addr object.Address, epoch uint64) error {
	if !t.ValidAt(epoch) {
		return ErrTokenExpired
	}

	if !t.AssertVerb(verb) {
		return ErrWrongVerb
	}

	if !t.AssertObject(addr) {
		return ErrWrongObject
	}

	if rec := g.tokens.Get(t.Owner(), t.ID()); rec == nil {
		g.log.Debug("no record of session token",
			zap.Stringer("owner", t.Owner()),
			zap.Stringer("verb", verb),
		)

		return ErrNotFound
	}

	return nil
}

// IsDenial reports whether the error is one of the authorization
// denial reasons.
func IsDenial(err error) bool {
	return errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrWrongVerb) ||
		errors.Is(err, ErrWrongObject) ||
		errors.Is(err, ErrNotFound)
}
