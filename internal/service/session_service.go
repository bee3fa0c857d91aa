package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/repository"
	"github.com/karkasai/karkasai-backend/internal/security"
)

// SessionService owns the session lifecycle: created on login, extended on
// refresh, invalidated on logout. It never sees a raw refresh token leave
// this package; only digests are stored and compared.
type SessionService struct {
	store repository.SessionStore
}

func NewSessionService(store repository.SessionStore) *SessionService {
	return &SessionService{store: store}
}

// CreateSession stores a fresh session for one login event. A user may hold
// any number of concurrent sessions; each login mints its own.
func (s *SessionService) CreateSession(ctx context.Context, sessionID uuid.UUID, userID, refreshToken string, expiresAt time.Time) error {
	return s.store.Insert(ctx, &domain.Session{
		ID:                   sessionID,
		UserID:               userID,
		LastRefreshTokenHash: security.HashRefreshToken(refreshToken),
		InitiatedAt:          time.Now(),
		ExpiresAt:            expiresAt,
	})
}

// ExtendSession moves the expiry forward and rebinds the session to the
// newly rotated refresh token. An unknown session id is a silent no-op: the
// caller validates liveness before extending.
func (s *SessionService) ExtendSession(ctx context.Context, sessionID uuid.UUID, refreshToken string, expiresAt time.Time) error {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	session.ExpiresAt = expiresAt
	session.LastRefreshTokenHash = security.HashRefreshToken(refreshToken)
	err = s.store.Update(ctx, session)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}

// InvalidateSession revokes the session permanently. Idempotent; revoking a
// missing or already revoked session is not an error.
func (s *SessionService) InvalidateSession(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	session.IsRevoked = true
	err = s.store.Update(ctx, session)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}

// IsSessionValid is the single authoritative liveness check: the session
// exists, its expiry is strictly in the future, it is not revoked, and the
// presented refresh token hashes to the stored digest. The digest comparison
// is constant-time.
func (s *SessionService) IsSessionValid(ctx context.Context, sessionID uuid.UUID, refreshToken string) (bool, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}
	if !session.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	if session.IsRevoked {
		return false, nil
	}
	return security.HashEqual(security.HashRefreshToken(refreshToken), session.LastRefreshTokenHash), nil
}

// CleanupExpired purges sessions past their expiry. Invoked by the operator
// command, never by a background timer.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx)
}
