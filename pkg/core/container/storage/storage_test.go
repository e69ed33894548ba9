package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/policy"
)

func TestStorage(t *testing.T) {
	const text = `REP 1`

	p, err := policy.Parse(text)
	require.NoError(t, err)

	cnr, err := container.New("owner", p, text)
	require.NoError(t, err)

	s := New()

	id, err := s.Put(cnr)
	require.NoError(t, err)

	got, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, cnr, got)

	s.Delete(id)

	_, err = s.Get(id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoragePutNil(t *testing.T) {
	s := New()

	_, err := s.Put(nil)
	require.ErrorIs(t, err, container.ErrNilPolicy)
}
