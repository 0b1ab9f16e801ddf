package server

import (
	"errors"
	"sort"
	"sync"

	"github.com/BrunoViet/swapdesk/internal/swap"
)

var ErrSessionNotFound = errors.New("session not found")

// Sessions holds every open swap controller by id.
type Sessions struct {
	mu sync.RWMutex
	m  map[string]*swap.Controller
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*swap.Controller)}
}

func (s *Sessions) Add(c *swap.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.ID()] = c
}

func (s *Sessions) Get(id string) (*swap.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

func (s *Sessions) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return false
	}
	delete(s.m, id)
	return true
}

// IDs returns open session ids in ascending order; v7 ids sort by creation.
func (s *Sessions) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.m))
	for id := range s.m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
