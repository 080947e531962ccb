package memory

import (
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"sync"
)

type StateStore struct {
	lock  sync.Mutex
	state *hyprcycle.State
	saves int
}

// NewStateStore creates a store holding a copy of initial. A nil initial
// state starts uninitialized.
func NewStateStore(initial *hyprcycle.State) *StateStore {
	if initial == nil {
		initial = &hyprcycle.State{}
	}
	return &StateStore{state: initial.Clone()}
}

func (s *StateStore) Load() (*hyprcycle.State, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state.Clone(), nil
}

func (s *StateStore) Update(fn func(state *hyprcycle.State) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		return err
	}

	s.state = next
	s.saves++
	return nil
}

func (s *StateStore) Reset(fn func(state *hyprcycle.State) error) error {
	return s.Update(fn)
}

// Saves reports how many updates were committed.
func (s *StateStore) Saves() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.saves
}
