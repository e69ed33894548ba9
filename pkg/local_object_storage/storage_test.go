package localstore

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
)

func newTestStorage(t *testing.T) *Storage {
	s, err := Open(filepath.Join(t.TempDir(), "objects.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newTestAddress(t *testing.T) object.Address {
	t.Helper()

	var cnr container.ID
	cnr[0] = 1

	oid, err := object.NewID()
	require.NoError(t, err)

	return object.NewAddress(cnr, oid)
}

func TestStoragePutGet(t *testing.T) {
	s := newTestStorage(t)

	addr := newTestAddress(t)
	payload := bytes.Repeat([]byte("stornet"), 1000)

	obj := object.New(addr, "owner", uint64(len(payload)), 7)

	require.NoError(t, s.Put(obj, payload))

	got, gotPayload, err := s.Get(addr)
	require.NoError(t, err)
	require.Equal(t, payload, gotPayload)
	require.Equal(t, addr, got.Address())
	require.EqualValues(t, "owner", got.Owner())
	require.EqualValues(t, len(payload), got.PayloadSize())
	require.EqualValues(t, 7, got.CreatedAt())
	require.False(t, got.IsComplex())
}

func TestStorageHeadMissing(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Head(newTestAddress(t))
	require.ErrorIs(t, err, ErrNotFound)

	exists, err := s.Exists(newTestAddress(t))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestStorageSplitInfo(t *testing.T) {
	s := newTestStorage(t)

	addr := newTestAddress(t)

	last, err := object.NewID()
	require.NoError(t, err)

	part, err := object.NewID()
	require.NoError(t, err)

	obj := object.New(addr, "owner", 100, 1)
	obj.SetSplitInfo(&object.SplitInfo{
		LastPart: last,
		Parts:    []object.ID{part, last},
	})

	require.NoError(t, s.Put(obj, nil))

	got, err := s.Head(addr)
	require.NoError(t, err)
	require.True(t, got.IsComplex())

	si := got.SplitInfo()
	require.NotNil(t, si)
	require.Equal(t, last, si.LastPart)
	require.Equal(t, []object.ID{part, last}, si.Parts)
}

func TestStorageDelete(t *testing.T) {
	s := newTestStorage(t)

	addr := newTestAddress(t)
	obj := object.New(addr, "owner", 3, 1)

	require.NoError(t, s.Put(obj, []byte("abc")))

	require.NoError(t, s.Delete(addr))

	_, err := s.Head(addr)
	require.ErrorIs(t, err, ErrNotFound)

	// deleting a missing object is not an error
	require.NoError(t, s.Delete(addr))
}

func TestStorageIterateAddresses(t *testing.T) {
	s := newTestStorage(t)

	expected := make(map[object.Address]struct{})

	for i := 0; i < 5; i++ {
		addr := newTestAddress(t)
		expected[addr] = struct{}{}

		require.NoError(t, s.Put(object.New(addr, "owner", 0, 1), nil))
	}

	seen := make(map[object.Address]struct{})

	err := s.IterateAddresses(func(addr object.Address) bool {
		seen[addr] = struct{}{}
		return false
	})
	require.NoError(t, err)
	require.Equal(t, expected, seen)

	// early stop
	var count int

	err = s.IterateAddresses(func(object.Address) bool {
		count++
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
