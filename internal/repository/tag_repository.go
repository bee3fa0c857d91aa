package repository

import (
	"context"
	"errors"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/observability"

	"gorm.io/gorm"
)

var ErrTagNotFound = errors.New("tag not found")

type TagRepository interface {
	Create(ctx context.Context, t *domain.Tag) error
	FindByID(ctx context.Context, id uint) (*domain.Tag, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Tag, error)
	List(ctx context.Context, usableOnly bool) ([]domain.Tag, error)
	Save(ctx context.Context, t *domain.Tag) error
	Delete(ctx context.Context, t *domain.Tag) error
}

type GormTagRepository struct{ db *gorm.DB }

func NewTagRepository(db *gorm.DB) TagRepository { return &GormTagRepository{db: db} }

func (r *GormTagRepository) Create(ctx context.Context, t *domain.Tag) error {
	err := r.db.WithContext(ctx).Create(t).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "tag", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "tag", "create", "success")
	return nil
}

func (r *GormTagRepository) FindByID(ctx context.Context, id uint) (*domain.Tag, error) {
	var t domain.Tag
	err := r.db.WithContext(ctx).First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "tag", "find_by_id", "not_found")
			return nil, ErrTagNotFound
		}
		observability.RecordRepositoryOperation(ctx, "tag", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "tag", "find_by_id", "success")
	return &t, nil
}

func (r *GormTagRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Tag, error) {
	var tags []domain.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "tag", "find_by_ids", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "tag", "find_by_ids", "success")
	return tags, nil
}

func (r *GormTagRepository) List(ctx context.Context, usableOnly bool) ([]domain.Tag, error) {
	var tags []domain.Tag
	q := r.db.WithContext(ctx).Order("name ASC")
	if usableOnly {
		q = q.Where("usable = ?", true)
	}
	if err := q.Find(&tags).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "tag", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "tag", "list", "success")
	return tags, nil
}

func (r *GormTagRepository) Save(ctx context.Context, t *domain.Tag) error {
	err := r.db.WithContext(ctx).Save(t).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "tag", "save", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "tag", "save", "success")
	return nil
}

func (r *GormTagRepository) Delete(ctx context.Context, t *domain.Tag) error {
	err := r.db.WithContext(ctx).Delete(t).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "tag", "delete", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "tag", "delete", "success")
	return nil
}
