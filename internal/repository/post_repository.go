package repository

import (
	"context"
	"errors"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/observability"

	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	// FindInGroup scopes the lookup to a group so a post id from another
	// group can never be addressed through the wrong route.
	FindInGroup(ctx context.Context, groupID, postID uint) (*domain.Post, error)
	ListByGroup(ctx context.Context, groupID uint) ([]domain.Post, error)
	Save(ctx context.Context, p *domain.Post) error
	Delete(ctx context.Context, p *domain.Post) error
}

type GormPostRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &GormPostRepository{db: db} }

func (r *GormPostRepository) Create(ctx context.Context, p *domain.Post) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "post", "create", "success")
	return nil
}

func (r *GormPostRepository) FindInGroup(ctx context.Context, groupID, postID uint) (*domain.Post, error) {
	var p domain.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ? AND id = ?", groupID, postID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "post", "find_in_group", "not_found")
			return nil, ErrPostNotFound
		}
		observability.RecordRepositoryOperation(ctx, "post", "find_in_group", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "post", "find_in_group", "success")
	return &p, nil
}

func (r *GormPostRepository) ListByGroup(ctx context.Context, groupID uint) ([]domain.Post, error) {
	var posts []domain.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("date_created DESC").
		Find(&posts).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "list_by_group", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "post", "list_by_group", "success")
	return posts, nil
}

func (r *GormPostRepository) Save(ctx context.Context, p *domain.Post) error {
	err := r.db.WithContext(ctx).Save(p).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "save", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "post", "save", "success")
	return nil
}

func (r *GormPostRepository) Delete(ctx context.Context, p *domain.Post) error {
	err := r.db.WithContext(ctx).Select("Comments").Delete(p).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "delete", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "post", "delete", "success")
	return nil
}
