package object

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
)

func TestIDCodec(t *testing.T) {
	id, err := NewID()
	require.NoError(t, err)

	s := id.EncodeToString()

	var decoded ID
	require.NoError(t, decoded.DecodeString(s))
	require.Equal(t, id, decoded)

	require.Error(t, decoded.DecodeString("not-base58-!!"))
	require.Error(t, decoded.DecodeString("1111"))
}

func TestIDUniqueness(t *testing.T) {
	seen := make(map[ID]struct{})

	for i := 0; i < 100; i++ {
		id, err := NewID()
		require.NoError(t, err)

		_, ok := seen[id]
		require.False(t, ok)

		seen[id] = struct{}{}
	}
}

func TestAddressCodec(t *testing.T) {
	var cnr container.ID
	cnr[0] = 42

	oid, err := NewID()
	require.NoError(t, err)

	addr := NewAddress(cnr, oid)
	require.Equal(t, cnr, addr.Container())
	require.Equal(t, oid, addr.Object())

	var decoded Address
	require.NoError(t, decoded.DecodeString(addr.EncodeToString()))
	require.Equal(t, addr, decoded)

	require.Error(t, decoded.DecodeString("no-separator"))
	require.Error(t, decoded.DecodeString("a/b/c"))
}

func TestObjectSplitInfo(t *testing.T) {
	var cnr container.ID

	oid, err := NewID()
	require.NoError(t, err)

	obj := New(NewAddress(cnr, oid), "owner", 10, 3)
	require.False(t, obj.IsComplex())
	require.Nil(t, obj.SplitInfo())

	last, err := NewID()
	require.NoError(t, err)

	obj.SetSplitInfo(&SplitInfo{LastPart: last})
	require.True(t, obj.IsComplex())
	require.Equal(t, last, obj.SplitInfo().LastPart)
}
