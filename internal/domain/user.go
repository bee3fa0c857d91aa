package domain

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// AllRoles is the fixed role dictionary seeded at startup.
var AllRoles = []string{RoleMember, RoleAdmin}

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Roles        []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:32;uniqueIndex;not null" json:"name"`
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// FieldError is a single structured validation failure, surfaced to the
// caller when account creation is rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
