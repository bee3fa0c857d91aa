package service

import (
	"context"
	"strings"
	"time"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/repository"
)

type CommentInput struct {
	Content  string
	ImageURL *string
}

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	groups   *GroupService
	notifier Notifier
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, groups *GroupService, notifier Notifier) *CommentService {
	return &CommentService{comments: comments, posts: posts, groups: groups, notifier: notifier}
}

// CreateComment attaches a comment to a post. Only group members may comment;
// the post must belong to the addressed group.
func (s *CommentService) CreateComment(ctx context.Context, groupID, postID uint, author *domain.User, in CommentInput) (CommentView, []domain.FieldError, error) {
	if fieldErrs := validateCommentInput(in); len(fieldErrs) > 0 {
		return CommentView{}, fieldErrs, nil
	}
	if _, err := s.posts.FindInGroup(ctx, groupID, postID); err != nil {
		return CommentView{}, nil, err
	}
	_, member, err := s.groups.IsMember(ctx, groupID, author.ID)
	if err != nil {
		return CommentView{}, nil, err
	}
	if !member {
		return CommentView{}, nil, ErrNotMember
	}
	comment := &domain.Comment{
		Content:     in.Content,
		ImageURL:    in.ImageURL,
		DateCreated: time.Now(),
		UserID:      author.ID,
		User:        *author,
		PostID:      postID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return CommentView{}, nil, err
	}
	view := toCommentView(comment)
	s.notifier.NotifyNewComment(ctx, groupID, postID, view)
	return view, nil, nil
}

func (s *CommentService) ListComments(ctx context.Context, groupID, postID uint) ([]CommentView, error) {
	if _, err := s.posts.FindInGroup(ctx, groupID, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, toCommentView(&comments[i]))
	}
	return views, nil
}

// UpdateComment rewrites the comment body. Only the author or an admin.
func (s *CommentService) UpdateComment(ctx context.Context, groupID, postID, commentID uint, actorID string, actorIsAdmin bool, in CommentInput) (CommentView, []domain.FieldError, error) {
	if fieldErrs := validateCommentInput(in); len(fieldErrs) > 0 {
		return CommentView{}, fieldErrs, nil
	}
	if _, err := s.posts.FindInGroup(ctx, groupID, postID); err != nil {
		return CommentView{}, nil, err
	}
	comment, err := s.comments.FindInPost(ctx, postID, commentID)
	if err != nil {
		return CommentView{}, nil, err
	}
	if comment.UserID != actorID && !actorIsAdmin {
		return CommentView{}, nil, ErrForbidden
	}
	comment.Content = in.Content
	if in.ImageURL != nil {
		comment.ImageURL = in.ImageURL
	}
	if err := s.comments.Save(ctx, comment); err != nil {
		return CommentView{}, nil, err
	}
	return toCommentView(comment), nil, nil
}

// DeleteComment removes the comment. The author, the post author, and admins
// may delete.
func (s *CommentService) DeleteComment(ctx context.Context, groupID, postID, commentID uint, actorID string, actorIsAdmin bool) error {
	post, err := s.posts.FindInGroup(ctx, groupID, postID)
	if err != nil {
		return err
	}
	comment, err := s.comments.FindInPost(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID && post.UserID != actorID && !actorIsAdmin {
		return ErrForbidden
	}
	return s.comments.Delete(ctx, comment)
}

func validateCommentInput(in CommentInput) []domain.FieldError {
	if strings.TrimSpace(in.Content) == "" {
		return []domain.FieldError{{Field: "content", Message: "must not be empty"}}
	}
	return nil
}
