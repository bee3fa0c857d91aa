package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/observability"

	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the narrow contract the session manager needs: keyed
// lookups on the opaque session id, nothing more. Any storage engine that
// can do a transactional read-modify-write on a single row satisfies it.
type SessionStore interface {
	Insert(ctx context.Context, s *domain.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	// Update persists expires_at, last_refresh_token_hash and is_revoked as
	// one atomic write; readers never observe a half-updated row.
	Update(ctx context.Context, s *domain.Session) error
	// DeleteExpired purges rows whose expiry has passed. Expiry is enforced
	// lazily at validation time; this exists only for operator-run cleanup.
	DeleteExpired(ctx context.Context) (int64, error)
}

type GormSessionStore struct{ db *gorm.DB }

func NewSessionStore(db *gorm.DB) SessionStore { return &GormSessionStore{db: db} }

func (r *GormSessionStore) Insert(ctx context.Context, s *domain.Session) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "insert", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "session", "insert", "success")
	return nil
}

func (r *GormSessionStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var s domain.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "session", "find_by_id", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(ctx, "session", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "find_by_id", "success")
	return &s, nil
}

func (r *GormSessionStore) Update(ctx context.Context, s *domain.Session) error {
	res := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"expires_at":              s.ExpiresAt,
			"last_refresh_token_hash": s.LastRefreshTokenHash,
			"is_revoked":              s.IsRevoked,
		})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "session", "update", "not_found")
		return ErrSessionNotFound
	}
	observability.RecordRepositoryOperation(ctx, "session", "update", "success")
	return nil
}

func (r *GormSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "delete_expired", "error")
		return res.RowsAffected, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "session", "delete_expired", "success")
	return res.RowsAffected, nil
}
