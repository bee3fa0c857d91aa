package repository

import (
	"context"
	"errors"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/observability"

	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	FindInPost(ctx context.Context, postID, commentID uint) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]domain.Comment, error)
	Save(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, c *domain.Comment) error
}

type GormCommentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &GormCommentRepository{db: db} }

func (r *GormCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "comment", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "comment", "create", "success")
	return nil
}

func (r *GormCommentRepository) FindInPost(ctx context.Context, postID, commentID uint) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND id = ?", postID, commentID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "comment", "find_in_post", "not_found")
			return nil, ErrCommentNotFound
		}
		observability.RecordRepositoryOperation(ctx, "comment", "find_in_post", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "comment", "find_in_post", "success")
	return &c, nil
}

func (r *GormCommentRepository) ListByPost(ctx context.Context, postID uint) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("date_created ASC").
		Find(&comments).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "comment", "list_by_post", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "comment", "list_by_post", "success")
	return comments, nil
}

func (r *GormCommentRepository) Save(ctx context.Context, c *domain.Comment) error {
	err := r.db.WithContext(ctx).Save(c).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "comment", "save", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "comment", "save", "success")
	return nil
}

func (r *GormCommentRepository) Delete(ctx context.Context, c *domain.Comment) error {
	err := r.db.WithContext(ctx).Delete(c).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "comment", "delete", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "comment", "delete", "success")
	return nil
}
