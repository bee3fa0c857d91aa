package service

import (
	"context"
	"strings"
	"time"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/repository"
)

type PostInput struct {
	Title    string
	ImageURL *string
}

type PostService struct {
	posts    repository.PostRepository
	groups   *GroupService
	notifier Notifier
}

func NewPostService(posts repository.PostRepository, groups *GroupService, notifier Notifier) *PostService {
	return &PostService{posts: posts, groups: groups, notifier: notifier}
}

// CreatePost publishes a post into a group. Only members may post.
func (s *PostService) CreatePost(ctx context.Context, groupID uint, author *domain.User, in PostInput) (PostView, []domain.FieldError, error) {
	if fieldErrs := validatePostInput(in); len(fieldErrs) > 0 {
		return PostView{}, fieldErrs, nil
	}
	group, member, err := s.groups.IsMember(ctx, groupID, author.ID)
	if err != nil {
		return PostView{}, nil, err
	}
	if !member {
		return PostView{}, nil, ErrNotMember
	}
	post := &domain.Post{
		Title:       in.Title,
		ImageURL:    in.ImageURL,
		DateCreated: time.Now(),
		UserID:      author.ID,
		User:        *author,
		GroupID:     groupID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return PostView{}, nil, err
	}
	view := toPostView(post)
	s.notifier.NotifyNewPost(ctx, groupID, group.Title, view)
	return view, nil, nil
}

func (s *PostService) GetPost(ctx context.Context, groupID, postID uint) (PostView, error) {
	post, err := s.posts.FindInGroup(ctx, groupID, postID)
	if err != nil {
		return PostView{}, err
	}
	return toPostView(post), nil
}

func (s *PostService) ListPosts(ctx context.Context, groupID uint) ([]PostView, error) {
	posts, err := s.posts.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, toPostView(&posts[i]))
	}
	return views, nil
}

// UpdatePost rewrites the post body. Only the author or an admin may edit.
func (s *PostService) UpdatePost(ctx context.Context, groupID, postID uint, actorID string, actorIsAdmin bool, in PostInput) (PostView, []domain.FieldError, error) {
	if fieldErrs := validatePostInput(in); len(fieldErrs) > 0 {
		return PostView{}, fieldErrs, nil
	}
	post, err := s.posts.FindInGroup(ctx, groupID, postID)
	if err != nil {
		return PostView{}, nil, err
	}
	if post.UserID != actorID && !actorIsAdmin {
		return PostView{}, nil, ErrForbidden
	}
	post.Title = in.Title
	if in.ImageURL != nil {
		post.ImageURL = in.ImageURL
	}
	if err := s.posts.Save(ctx, post); err != nil {
		return PostView{}, nil, err
	}
	view := toPostView(post)
	s.notifier.NotifyPostUpdated(ctx, groupID, view)
	return view, nil, nil
}

// DeletePost removes the post and its comment thread. The author, the group
// owner, and admins may delete.
func (s *PostService) DeletePost(ctx context.Context, groupID, postID uint, actorID string, actorIsAdmin bool) error {
	post, err := s.posts.FindInGroup(ctx, groupID, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID && !actorIsAdmin {
		group, _, err := s.groups.IsMember(ctx, groupID, actorID)
		if err != nil {
			return err
		}
		if group.OwnerUserID != actorID {
			return ErrForbidden
		}
	}
	if err := s.posts.Delete(ctx, post); err != nil {
		return err
	}
	s.notifier.NotifyPostDeleted(ctx, groupID, postID)
	return nil
}

func validatePostInput(in PostInput) []domain.FieldError {
	if strings.TrimSpace(in.Title) == "" {
		return []domain.FieldError{{Field: "title", Message: "must not be empty"}}
	}
	return nil
}
