package container

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stornet-dev/stornet-node/pkg/policy"
)

func TestNew(t *testing.T) {
	const text = `REP 2`

	p, err := policy.Parse(text)
	require.NoError(t, err)

	c, err := New("owner", p, text)
	require.NoError(t, err)
	require.EqualValues(t, "owner", c.Owner())
	require.Equal(t, p, c.PlacementPolicy())
	require.Equal(t, text, c.PlacementPolicyText())

	_, err = New("owner", nil, text)
	require.ErrorIs(t, err, ErrNilPolicy)
}

func TestCalculateID(t *testing.T) {
	const text = `REP 2`

	p, err := policy.Parse(text)
	require.NoError(t, err)

	c, err := New("owner", p, text)
	require.NoError(t, err)

	// derivation is deterministic
	require.Equal(t, CalculateID(c), CalculateID(c))

	// a fresh nonce yields a fresh identifier
	other, err := New("owner", p, text)
	require.NoError(t, err)
	require.NotEqual(t, CalculateID(c), CalculateID(other))

	// pinning the nonce makes identifiers agree across announcements
	nonce := uuid.New()

	c.SetNonce(nonce)
	other.SetNonce(nonce)
	require.Equal(t, CalculateID(c), CalculateID(other))
}

func TestIDCodec(t *testing.T) {
	var id ID
	id[0] = 1
	id[31] = 255

	var decoded ID
	require.NoError(t, decoded.DecodeString(id.EncodeToString()))
	require.Equal(t, id, decoded)

	require.Error(t, decoded.DecodeString("####"))
	require.Error(t, decoded.DecodeString("1111"))
}
