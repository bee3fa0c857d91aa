package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karkasai/karkasai-backend/internal/domain"
)

// MemorySessionStore is the reference SessionStore: a mutex-guarded map.
// The dev profile uses it when no database is configured; tests use it
// directly. The mutex serializes per-row writes, so an Update is observed
// either entirely or not at all.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uuid.UUID]domain.Session)}
}

func (s *MemorySessionStore) Insert(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemorySessionStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) Update(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[session.ID]
	if !ok {
		return ErrSessionNotFound
	}
	stored.ExpiresAt = session.ExpiresAt
	stored.LastRefreshTokenHash = session.LastRefreshTokenHash
	stored.IsRevoked = session.IsRevoked
	s.sessions[session.ID] = stored
	return nil
}

func (s *MemorySessionStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var removed int64
	for id, session := range s.sessions {
		if !session.ExpiresAt.After(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
