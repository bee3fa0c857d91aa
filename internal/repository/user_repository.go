package repository

import (
	"context"
	"errors"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/observability"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	AddRole(ctx context.Context, userID string, roleName string) error
	EnsureRole(ctx context.Context, name string) (*domain.Role, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Preload("Roles").Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "success")
	return &u, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Preload("Roles").Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "find_by_username", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "find_by_username", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "find_by_username", "success")
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "user", "create", "success")
	return nil
}

func (r *GormUserRepository) AddRole(ctx context.Context, userID string, roleName string) error {
	var role domain.Role
	if err := r.db.WithContext(ctx).Where("name = ?", roleName).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "add_role", "not_found")
			return ErrRoleNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "add_role", "error")
		return err
	}
	u := domain.User{ID: userID}
	if err := r.db.WithContext(ctx).Model(&u).Association("Roles").Append(&role); err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "add_role", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "user", "add_role", "success")
	return nil
}

func (r *GormUserRepository) EnsureRole(ctx context.Context, name string) (*domain.Role, error) {
	role := domain.Role{Name: name}
	err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&role).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "ensure_role", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "ensure_role", "success")
	return &role, nil
}
