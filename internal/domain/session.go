package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record backing one login. The raw refresh token
// is never stored; only a one-way hash of the most recently issued one.
//
// Invariants: ID is never reused, IsRevoked only ever flips false->true, and
// ExpiresAt only ever moves forward.
type Session struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               string    `gorm:"size:36;index;not null" json:"user_id"`
	LastRefreshTokenHash string    `gorm:"size:128;not null" json:"-"`
	InitiatedAt          time.Time `json:"initiated_at"`
	ExpiresAt            time.Time `gorm:"index;not null" json:"expires_at"`
	IsRevoked            bool      `gorm:"not null;default:false" json:"is_revoked"`
}
