// Package storage provides an in-memory container storage used by the
// node to keep containers announced to it.
package storage

import (
	"errors"
	"sync"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
)

// ErrNotFound is returned by Get when the requested container is
// missing from the storage.
var ErrNotFound = errors.New("container not found")

// Storage is a thread-safe in-memory container storage. It implements
// container.Source.
type Storage struct {
	mtx sync.RWMutex

	items map[container.ID]*container.Container
}

// New creates, initializes and returns an empty Storage.
func New() *Storage {
	return &Storage{
		items: make(map[container.ID]*container.Container),
	}
}

// Put saves the container and returns its calculated identifier.
func (s *Storage) Put(c *container.Container) (container.ID, error) {
	if c == nil {
		return container.ID{}, container.ErrNilPolicy
	}

	id := container.CalculateID(c)

	s.mtx.Lock()
	s.items[id] = c
	s.mtx.Unlock()

	return id, nil
}

// Get implements container.Source.
func (s *Storage) Get(id container.ID) (*container.Container, error) {
	s.mtx.RLock()
	c, ok := s.items[id]
	s.mtx.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	return c, nil
}

// Delete removes the container from the storage. Removing a missing
// container is not an error.
func (s *Storage) Delete(id container.ID) {
	s.mtx.Lock()
	delete(s.items, id)
	s.mtx.Unlock()
}
