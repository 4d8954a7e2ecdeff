// Package store holds SessionStore implementations for the wallet manager.
package store

import (
	"context"
	"sync"

	"truetrace/internal/wallet"
	"truetrace/pkg/platform/sentinel"
)

// InMemory keeps the active session in process memory.
type InMemory struct {
	mu      sync.RWMutex
	session *wallet.Session
}

// NewInMemory constructs an empty in-memory session store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Current(_ context.Context) (wallet.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return wallet.Session{}, sentinel.ErrNotFound
	}
	return *s.session, nil
}

func (s *InMemory) Save(_ context.Context, session wallet.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

func (s *InMemory) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
