package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/repository"
)

var (
	// ErrForbidden marks an operation attempted by someone other than the
	// resource owner or an admin.
	ErrForbidden     = errors.New("forbidden")
	ErrGroupFull     = errors.New("group is full")
	ErrAlreadyMember = errors.New("already a member of this group")
	ErrNotMember     = errors.New("not a member of this group")
)

type GroupInput struct {
	Title       string
	Description string
	MaxMembers  int
	ImageURL    *string
	TagIDs      []uint
}

type GroupService struct {
	groups   repository.GroupRepository
	tags     repository.TagRepository
	notifier Notifier
}

func NewGroupService(groups repository.GroupRepository, tags repository.TagRepository, notifier Notifier) *GroupService {
	return &GroupService{groups: groups, tags: tags, notifier: notifier}
}

// CreateGroup stores a new group with the creator as owner and first member.
func (s *GroupService) CreateGroup(ctx context.Context, owner *domain.User, in GroupInput) (GroupView, []domain.FieldError, error) {
	if fieldErrs := validateGroupInput(in); len(fieldErrs) > 0 {
		return GroupView{}, fieldErrs, nil
	}
	tags, err := s.resolveUsableTags(ctx, in.TagIDs)
	if err != nil {
		return GroupView{}, nil, err
	}
	group := &domain.Group{
		Title:          in.Title,
		Description:    in.Description,
		CurrentMembers: 1,
		MaxMembers:     in.MaxMembers,
		ImageURL:       in.ImageURL,
		DateCreated:    time.Now(),
		OwnerUserID:    owner.ID,
		OwnerUser:      *owner,
		Members:        []domain.User{*owner},
		Tags:           tags,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return GroupView{}, nil, err
	}
	view := toGroupView(group)
	s.notifier.NotifyNewGroup(ctx, view)
	return view, nil, nil
}

func (s *GroupService) GetGroup(ctx context.Context, id uint) (GroupView, error) {
	group, err := s.groups.FindWithDetails(ctx, id)
	if err != nil {
		return GroupView{}, err
	}
	return toGroupView(group), nil
}

func (s *GroupService) ListGroups(ctx context.Context, req repository.PageRequest) (repository.PageResult[GroupView], error) {
	page, err := s.groups.ListPaged(ctx, req)
	if err != nil {
		return repository.PageResult[GroupView]{}, err
	}
	out := repository.PageResult[GroupView]{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Items:      make([]GroupView, 0, len(page.Items)),
	}
	for i := range page.Items {
		out.Items = append(out.Items, toGroupView(&page.Items[i]))
	}
	return out, nil
}

// UpdateGroup rewrites the mutable fields. Only the owner or an admin may
// update; MaxMembers can never drop below the current member count.
func (s *GroupService) UpdateGroup(ctx context.Context, actorID string, actorIsAdmin bool, id uint, in GroupInput) (GroupView, []domain.FieldError, error) {
	group, err := s.groups.FindWithDetails(ctx, id)
	if err != nil {
		return GroupView{}, nil, err
	}
	if group.OwnerUserID != actorID && !actorIsAdmin {
		return GroupView{}, nil, ErrForbidden
	}
	fieldErrs := validateGroupInput(in)
	if in.MaxMembers < group.CurrentMembers {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "maxMembers", Message: "cannot be below the current member count"})
	}
	if len(fieldErrs) > 0 {
		return GroupView{}, fieldErrs, nil
	}

	group.Title = in.Title
	group.Description = in.Description
	group.MaxMembers = in.MaxMembers
	if in.ImageURL != nil {
		group.ImageURL = in.ImageURL
	}
	if in.TagIDs != nil {
		tags, err := s.resolveUsableTags(ctx, in.TagIDs)
		if err != nil {
			return GroupView{}, nil, err
		}
		if err := s.groups.ReplaceTags(ctx, group, tags); err != nil {
			return GroupView{}, nil, err
		}
		group.Tags = tags
	}
	if err := s.groups.Save(ctx, group); err != nil {
		return GroupView{}, nil, err
	}
	return toGroupView(group), nil, nil
}

// JoinGroup adds the user as a member, enforcing capacity and uniqueness.
func (s *GroupService) JoinGroup(ctx context.Context, id uint, user *domain.User) (GroupView, error) {
	group, err := s.groups.FindWithDetails(ctx, id)
	if err != nil {
		return GroupView{}, err
	}
	if slices.ContainsFunc(group.Members, func(m domain.User) bool { return m.ID == user.ID }) {
		return GroupView{}, ErrAlreadyMember
	}
	if group.CurrentMembers >= group.MaxMembers {
		return GroupView{}, ErrGroupFull
	}
	if err := s.groups.AddMember(ctx, group, user); err != nil {
		return GroupView{}, err
	}
	group.Members = append(group.Members, *user)
	return toGroupView(group), nil
}

func (s *GroupService) DeleteGroup(ctx context.Context, actorID string, actorIsAdmin bool, id uint) error {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if group.OwnerUserID != actorID && !actorIsAdmin {
		return ErrForbidden
	}
	return s.groups.Delete(ctx, group)
}

// IsMember reports whether the user belongs to the group. Used by the post
// and comment services to gate writes.
func (s *GroupService) IsMember(ctx context.Context, id uint, userID string) (*domain.Group, bool, error) {
	group, err := s.groups.FindWithDetails(ctx, id)
	if err != nil {
		return nil, false, err
	}
	member := slices.ContainsFunc(group.Members, func(m domain.User) bool { return m.ID == userID })
	return group, member, nil
}

// AdminOverview returns every group fully expanded with posts and comment
// threads. Admin only; the handler enforces the role.
func (s *GroupService) AdminOverview(ctx context.Context) ([]GroupDetailView, error) {
	groups, err := s.groups.ListAllDetailed(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GroupDetailView, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		detail := GroupDetailView{GroupView: toGroupView(g)}
		for j := range g.Posts {
			p := &g.Posts[j]
			pd := PostDetailView{PostView: toPostView(p)}
			for k := range p.Comments {
				pd.Comments = append(pd.Comments, toCommentView(&p.Comments[k]))
			}
			detail.Posts = append(detail.Posts, pd)
		}
		out = append(out, detail)
	}
	return out, nil
}

func (s *GroupService) resolveUsableTags(ctx context.Context, ids []uint) ([]domain.Tag, error) {
	tags, err := s.tags.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	usable := tags[:0]
	for _, t := range tags {
		if t.Usable {
			usable = append(usable, t)
		}
	}
	return usable, nil
}

func validateGroupInput(in GroupInput) []domain.FieldError {
	var errs []domain.FieldError
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "must not be empty"})
	}
	if in.MaxMembers < 1 {
		errs = append(errs, domain.FieldError{Field: "maxMembers", Message: "must be at least 1"})
	}
	return errs
}
