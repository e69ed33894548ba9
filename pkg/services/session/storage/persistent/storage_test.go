package persistent

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
)

func TestTokenStore(t *testing.T) {
	ts, err := NewTokenStore(filepath.Join(t.TempDir(), ".storage"))
	require.NoError(t, err)

	defer ts.Close()

	const tokenNumber = 5

	type tok struct {
		owner container.OwnerID
		id    []byte
	}

	tokens := make([]tok, 0, tokenNumber)

	for i := 0; i < tokenNumber; i++ {
		owner := container.OwnerID("owner")

		id, err := ts.Create(owner, uint64(i))
		require.NoError(t, err)

		tokens = append(tokens, tok{owner: owner, id: id})
	}

	for i, token := range tokens {
		saved := ts.Get(token.owner, token.id)

		require.NotNil(t, saved)
		require.Equal(t, uint64(i), saved.ExpiredAt())
	}
}

func TestTokenStore_Persistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".storage")

	ts, err := NewTokenStore(path)
	require.NoError(t, err)

	const (
		owner container.OwnerID = "owner"
		exp                     = 12345
	)

	id, err := ts.Create(owner, exp)
	require.NoError(t, err)

	// close db (stop the node)
	require.NoError(t, ts.Close())

	// open persistent storage again
	ts, err = NewTokenStore(path)
	require.NoError(t, err)

	defer ts.Close()

	saved := ts.Get(owner, id)

	require.NotNil(t, saved)
	require.EqualValues(t, exp, saved.ExpiredAt())
}

func TestTokenStore_Foreign(t *testing.T) {
	ts, err := NewTokenStore(filepath.Join(t.TempDir(), ".storage"))
	require.NoError(t, err)

	defer ts.Close()

	id, err := ts.Create("owner", 10)
	require.NoError(t, err)

	// unknown token id
	require.Nil(t, ts.Get("owner", []byte("missing")))

	// right token id, wrong owner
	require.Nil(t, ts.Get("other", id))
}

func TestTokenStore_RemoveOld(t *testing.T) {
	ts, err := NewTokenStore(filepath.Join(t.TempDir(), ".storage"))
	require.NoError(t, err)

	defer ts.Close()

	const owner container.OwnerID = "owner"

	type tok struct {
		epoch uint64
		id    []byte
	}

	tokens := make([]tok, 0, 6)

	for epoch := uint64(1); epoch <= 6; epoch++ {
		id, err := ts.Create(owner, epoch)
		require.NoError(t, err)

		tokens = append(tokens, tok{epoch: epoch, id: id})
	}

	const currentEpoch = 3

	ts.RemoveOld(currentEpoch)

	for _, token := range tokens {
		saved := ts.Get(owner, token.id)

		if token.epoch <= currentEpoch {
			require.Nil(t, saved)
		} else {
			require.NotNil(t, saved)
			require.Equal(t, token.epoch, saved.ExpiredAt())
		}
	}
}

func TestTokenStore_RemoveOldMalformedRecord(t *testing.T) {
	ts, err := NewTokenStore(filepath.Join(t.TempDir(), ".storage"))
	require.NoError(t, err)

	defer ts.Close()

	const owner container.OwnerID = "owner"

	expiredID, err := ts.Create(owner, 1)
	require.NoError(t, err)

	keptID, err := ts.Create(owner, 5)
	require.NoError(t, err)

	// a record that does not decode must not stop the cleanup
	err = ts.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(sessionsBucket).CreateBucketIfNotExists([]byte(owner))
		if err != nil {
			return err
		}

		return b.Put([]byte("broken"), []byte{0x01})
	})
	require.NoError(t, err)

	ts.RemoveOld(3)

	require.Nil(t, ts.Get(owner, expiredID))
	require.NotNil(t, ts.Get(owner, keptID))
}
