package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	"github.com/stornet-dev/stornet-node/pkg/services/session/storage/temporary"
)

const testOwner container.OwnerID = "owner"

func testAddress(t *testing.T) object.Address {
	t.Helper()

	var cnr container.ID
	cnr[0] = 1

	oid, err := object.NewID()
	require.NoError(t, err)

	return object.NewAddress(cnr, oid)
}

func issueToken(t *testing.T, store *temporary.TokenStore, iat, exp uint64, verbs ...Verb) *Token {
	t.Helper()

	id, err := store.Create(testOwner, exp)
	require.NoError(t, err)

	return NewToken(id, testOwner, iat, exp, verbs)
}

func TestAuthorizeAllow(t *testing.T) {
	store := temporary.NewTokenStore()
	g := NewGuard(store)

	tok := issueToken(t, store, 1, 10, VerbPut, VerbDelete)
	addr := testAddress(t)

	require.NoError(t, g.Authorize(tok, VerbPut, addr, 5))
	require.NoError(t, g.Authorize(tok, VerbDelete, addr, 5))
}

func TestAuthorizeDenials(t *testing.T) {
	store := temporary.NewTokenStore()
	g := NewGuard(store)

	addr := testAddress(t)

	t.Run("Expired", func(t *testing.T) {
		tok := issueToken(t, store, 1, 10, VerbPut)

		err := g.Authorize(tok, VerbPut, addr, 11)
		require.ErrorIs(t, err, ErrTokenExpired)
		require.True(t, IsDenial(err))

		// not yet valid either
		err = g.Authorize(tok, VerbPut, addr, 0)
		require.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("WrongVerb", func(t *testing.T) {
		tok := issueToken(t, store, 1, 10, VerbPut)

		err := g.Authorize(tok, VerbDelete, addr, 5)
		require.ErrorIs(t, err, ErrWrongVerb)
	})

	t.Run("WrongObject", func(t *testing.T) {
		tok := issueToken(t, store, 1, 10, VerbPut)
		tok.LimitByObject(addr)

		other := testAddress(t)

		err := g.Authorize(tok, VerbPut, other, 5)
		require.ErrorIs(t, err, ErrWrongObject)

		require.NoError(t, g.Authorize(tok, VerbPut, addr, 5))
	})

	t.Run("NotFound", func(t *testing.T) {
		// token issued elsewhere, this node has no record of it
		foreign := temporary.NewTokenStore()
		tok := issueToken(t, foreign, 1, 10, VerbPut)

		err := g.Authorize(tok, VerbPut, addr, 5)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

// A token is known to the node that issued it and to no one else,
// regardless of whether the other nodes host the container.
func TestAuthorizeNodeLocal(t *testing.T) {
	issuing := temporary.NewTokenStore()
	containerMember := temporary.NewTokenStore()
	outsider := temporary.NewTokenStore()

	tok := issueToken(t, issuing, 1, 10, VerbPut, VerbDelete)
	addr := testAddress(t)

	require.NoError(t, NewGuard(issuing).Authorize(tok, VerbPut, addr, 5))
	require.NoError(t, NewGuard(issuing).Authorize(tok, VerbDelete, addr, 5))

	err := NewGuard(containerMember).Authorize(tok, VerbPut, addr, 5)
	require.ErrorIs(t, err, ErrNotFound)

	err = NewGuard(outsider).Authorize(tok, VerbDelete, addr, 5)
	require.ErrorIs(t, err, ErrNotFound)
}

// Denial checks are ordered: expiry wins over the missing record.
func TestAuthorizeCheckOrder(t *testing.T) {
	foreign := temporary.NewTokenStore()
	tok := issueToken(t, foreign, 1, 10, VerbPut)

	g := NewGuard(temporary.NewTokenStore())

	err := g.Authorize(tok, VerbDelete, testAddress(t), 20)
	require.ErrorIs(t, err, ErrTokenExpired)

	err = g.Authorize(tok, VerbDelete, testAddress(t), 5)
	require.ErrorIs(t, err, ErrWrongVerb)
}

func TestRemoveOld(t *testing.T) {
	store := temporary.NewTokenStore()
	g := NewGuard(store)

	tok := issueToken(t, store, 1, 10, VerbPut)
	addr := testAddress(t)

	require.NoError(t, g.Authorize(tok, VerbPut, addr, 5))

	store.RemoveOld(10)

	err := g.Authorize(tok, VerbPut, addr, 5)
	require.ErrorIs(t, err, ErrNotFound)
}
