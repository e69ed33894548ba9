package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncWorkerPool(t *testing.T) {
	t.Run("submit to released pool", func(t *testing.T) {
		p := NewPseudoWorkerPool()
		p.Release()
		require.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
	})
	t.Run("create and wait", func(t *testing.T) {
		p := NewPseudoWorkerPool()

		var executed int

		require.NoError(t, p.Submit(func() { executed++ }))
		require.NoError(t, p.Submit(func() { executed++ }))
		require.Equal(t, 2, executed)
	})
}
