package repository

import (
	"context"
	"errors"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/observability"

	"gorm.io/gorm"
)

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository interface {
	Create(ctx context.Context, g *domain.Group) error
	FindByID(ctx context.Context, id uint) (*domain.Group, error)
	FindWithDetails(ctx context.Context, id uint) (*domain.Group, error)
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Group], error)
	ListAllDetailed(ctx context.Context) ([]domain.Group, error)
	Save(ctx context.Context, g *domain.Group) error
	ReplaceTags(ctx context.Context, g *domain.Group, tags []domain.Tag) error
	AddMember(ctx context.Context, g *domain.Group, member *domain.User) error
	Delete(ctx context.Context, g *domain.Group) error
}

type GormGroupRepository struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) GroupRepository { return &GormGroupRepository{db: db} }

func (r *GormGroupRepository) Create(ctx context.Context, g *domain.Group) error {
	err := r.db.WithContext(ctx).Create(g).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "group", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "group", "create", "success")
	return nil
}

func (r *GormGroupRepository) FindByID(ctx context.Context, id uint) (*domain.Group, error) {
	var g domain.Group
	err := r.db.WithContext(ctx).First(&g, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "group", "find_by_id", "not_found")
			return nil, ErrGroupNotFound
		}
		observability.RecordRepositoryOperation(ctx, "group", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "group", "find_by_id", "success")
	return &g, nil
}

func (r *GormGroupRepository) FindWithDetails(ctx context.Context, id uint) (*domain.Group, error) {
	var g domain.Group
	err := r.db.WithContext(ctx).
		Preload("OwnerUser").
		Preload("Members").
		Preload("Tags").
		First(&g, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "group", "find_with_details", "not_found")
			return nil, ErrGroupNotFound
		}
		observability.RecordRepositoryOperation(ctx, "group", "find_with_details", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "group", "find_with_details", "success")
	return &g, nil
}

func (r *GormGroupRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Group], error) {
	req = normalizePageRequest(req)
	result := PageResult[domain.Group]{Page: req.Page, PageSize: req.PageSize}

	base := r.db.WithContext(ctx).Model(&domain.Group{})
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "group", "list_paged", "error")
		return PageResult[domain.Group]{}, err
	}
	err := base.
		Preload("OwnerUser").
		Preload("Members").
		Preload("Tags").
		Order("date_created DESC").
		Offset((req.Page - 1) * req.PageSize).
		Limit(req.PageSize).
		Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "group", "list_paged", "error")
		return PageResult[domain.Group]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(ctx, "group", "list_paged", "success")
	return result, nil
}

func (r *GormGroupRepository) ListAllDetailed(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	err := r.db.WithContext(ctx).
		Preload("OwnerUser").
		Preload("Members").
		Preload("Tags").
		Preload("Posts.User").
		Preload("Posts.Comments.User").
		Find(&groups).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "group", "list_all_detailed", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "group", "list_all_detailed", "success")
	return groups, nil
}

func (r *GormGroupRepository) Save(ctx context.Context, g *domain.Group) error {
	err := r.db.WithContext(ctx).Save(g).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "group", "save", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "group", "save", "success")
	return nil
}

func (r *GormGroupRepository) ReplaceTags(ctx context.Context, g *domain.Group, tags []domain.Tag) error {
	if err := r.db.WithContext(ctx).Model(g).Association("Tags").Replace(tags); err != nil {
		observability.RecordRepositoryOperation(ctx, "group", "replace_tags", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "group", "replace_tags", "success")
	return nil
}

// AddMember appends the member and bumps current_members in one transaction
// so the counter can never drift from the join table on a partial failure.
func (r *GormGroupRepository) AddMember(ctx context.Context, g *domain.Group, member *domain.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(g).Association("Members").Append(member); err != nil {
			return err
		}
		return tx.Model(&domain.Group{}).
			Where("id = ?", g.ID).
			UpdateColumn("current_members", gorm.Expr("current_members + 1")).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "group", "add_member", "error")
		return err
	}
	g.CurrentMembers++
	observability.RecordRepositoryOperation(ctx, "group", "add_member", "success")
	return nil
}

func (r *GormGroupRepository) Delete(ctx context.Context, g *domain.Group) error {
	err := r.db.WithContext(ctx).Select("Posts").Delete(g).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "group", "delete", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "group", "delete", "success")
	return nil
}
