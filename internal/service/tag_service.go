package service

import (
	"context"
	"strings"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/repository"
)

type TagService struct {
	tags repository.TagRepository
}

func NewTagService(tags repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// CreateTag adds a tag to the dictionary. Admin only; the handler enforces
// the role.
func (s *TagService) CreateTag(ctx context.Context, name string, usable bool) (TagView, []domain.FieldError, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TagView{}, []domain.FieldError{{Field: "name", Message: "must not be empty"}}, nil
	}
	tag := &domain.Tag{Name: name, Usable: usable}
	if err := s.tags.Create(ctx, tag); err != nil {
		return TagView{}, nil, err
	}
	return toTagView(*tag), nil, nil
}

// ListTags returns the dictionary. Non-admin callers only see usable tags.
func (s *TagService) ListTags(ctx context.Context, includeUnusable bool) ([]TagView, error) {
	tags, err := s.tags.List(ctx, !includeUnusable)
	if err != nil {
		return nil, err
	}
	views := make([]TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, toTagView(t))
	}
	return views, nil
}

func (s *TagService) UpdateTag(ctx context.Context, id uint, name string, usable bool) (TagView, []domain.FieldError, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TagView{}, []domain.FieldError{{Field: "name", Message: "must not be empty"}}, nil
	}
	tag, err := s.tags.FindByID(ctx, id)
	if err != nil {
		return TagView{}, nil, err
	}
	tag.Name = name
	tag.Usable = usable
	if err := s.tags.Save(ctx, tag); err != nil {
		return TagView{}, nil, err
	}
	return toTagView(*tag), nil, nil
}

func (s *TagService) DeleteTag(ctx context.Context, id uint) error {
	tag, err := s.tags.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.tags.Delete(ctx, tag)
}
