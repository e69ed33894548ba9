package netmap

import (
	"fmt"
	"sync"
)

// StaticSource is a Source backed by explicitly supplied snapshots.
// It keeps all snapshots it has ever seen and serves historical
// epochs for verification of objects written in the past.
//
// Safe for concurrent use.
type StaticSource struct {
	mtx sync.RWMutex

	latest *NetMap

	byEpoch map[uint64]*NetMap
}

// NewStaticSource creates StaticSource from the initial snapshot.
func NewStaticSource(nm *NetMap) *StaticSource {
	return &StaticSource{
		latest: nm,
		byEpoch: map[uint64]*NetMap{
			nm.Epoch(): nm,
		},
	}
}

// Replace installs a new latest snapshot. Snapshots of the past epochs
// remain available through NetMapByEpoch.
func (s *StaticSource) Replace(nm *NetMap) {
	s.mtx.Lock()
	s.latest = nm
	s.byEpoch[nm.Epoch()] = nm
	s.mtx.Unlock()
}

// NetMap implements Source.
func (s *StaticSource) NetMap() (*NetMap, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.latest, nil
}

// NetMapByEpoch implements Source.
func (s *StaticSource) NetMapByEpoch(epoch uint64) (*NetMap, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	nm, ok := s.byEpoch[epoch]
	if !ok {
		return nil, fmt.Errorf("no network map snapshot for epoch %d", epoch)
	}

	return nm, nil
}

// Epoch implements Source.
func (s *StaticSource) Epoch() (uint64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.latest.Epoch(), nil
}

// CurrentEpoch implements State.
func (s *StaticSource) CurrentEpoch() uint64 {
	e, _ := s.Epoch()
	return e
}
