package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/francois-poidevin/sondetracker/internal/app"
)

// ErrUnknownFlight is returned when an identity key is not in the store.
var ErrUnknownFlight = errors.New("unknown flight")

// Store maps flight identity keys to flights and tracks the active set.
// Every key of the active set exists in the mapping. Iteration follows
// insertion order.
type Store struct {
	mu      sync.RWMutex
	flights map[string]*app.Flight
	order   []string
	active  map[string]struct{}
}

func New() *Store {
	return &Store{
		flights: map[string]*app.Flight{},
		active:  map[string]struct{}{},
	}
}

// Get returns the flight stored under id.
func (s *Store) Get(id string) (*app.Flight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.flights[id]
	return f, ok
}

// Insert adds a new flight and activates it. An existing flight with the
// same ID is replaced and keeps its activation state.
func (s *Store) Insert(f *app.Flight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flights[f.ID]; ok {
		s.flights[f.ID] = f
		return
	}
	s.flights[f.ID] = f
	s.order = append(s.order, f.ID)
	s.active[f.ID] = struct{}{}
}

// Replace substitutes the flight stored at f.ID. Activation is untouched.
func (s *Store) Replace(f *app.Flight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flights[f.ID]; !ok {
		return fmt.Errorf("replace %s: %w", f.ID, ErrUnknownFlight)
	}
	s.flights[f.ID] = f
	return nil
}

// Remove deletes a flight and its active-set membership.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flights[id]; !ok {
		return false
	}
	delete(s.flights, id)
	delete(s.active, id)
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Activate adds id to the active set.
func (s *Store) Activate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flights[id]; !ok {
		return fmt.Errorf("activate %s: %w", id, ErrUnknownFlight)
	}
	s.active[id] = struct{}{}
	return nil
}

// Deactivate removes id from the active set.
func (s *Store) Deactivate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flights[id]; !ok {
		return fmt.Errorf("deactivate %s: %w", id, ErrUnknownFlight)
	}
	delete(s.active, id)
	return nil
}

// Toggle flips the activation of id and returns the new state.
func (s *Store) Toggle(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flights[id]; !ok {
		return false, fmt.Errorf("toggle %s: %w", id, ErrUnknownFlight)
	}
	if _, ok := s.active[id]; ok {
		delete(s.active, id)
		return false, nil
	}
	s.active[id] = struct{}{}
	return true, nil
}

func (s *Store) IsActive(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.active[id]
	return ok
}

// Flights returns every flight in insertion order.
func (s *Store) Flights() []*app.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*app.Flight, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.flights[id])
	}
	return result
}

// ActiveFlights returns the active flights in insertion order.
func (s *Store) ActiveFlights() []*app.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*app.Flight, 0, len(s.active))
	for _, id := range s.order {
		if _, ok := s.active[id]; ok {
			result = append(result, s.flights[id])
		}
	}
	return result
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.flights)
}

func (s *Store) ActiveLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.active)
}

// Reset empties the store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flights = map[string]*app.Flight{}
	s.order = nil
	s.active = map[string]struct{}{}
}
