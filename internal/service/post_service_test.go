package service

import (
	"context"
	"slices"
	"testing"
)

type contentFixture struct {
	groups   *GroupService
	posts    *PostService
	comments *CommentService
	notifier *recordingNotifier
	groupID  uint
}

// newContentFixture creates a group owned by u1 with u2 as a member.
func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()
	notifier := &recordingNotifier{}
	groups := NewGroupService(newFakeGroupRepo(), newFakeTagRepo(), notifier)
	postRepo := newFakePostRepo()
	posts := NewPostService(postRepo, groups, notifier)
	comments := NewCommentService(newFakeCommentRepo(), postRepo, groups, notifier)

	ctx := context.Background()
	view, _, err := groups.CreateGroup(ctx, testUser("u1", "alice"), GroupInput{Title: "t", MaxMembers: 10})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := groups.JoinGroup(ctx, view.ID, testUser("u2", "bob")); err != nil {
		t.Fatalf("join: %v", err)
	}
	return &contentFixture{groups: groups, posts: posts, comments: comments, notifier: notifier, groupID: view.ID}
}

func TestCreatePostRequiresMembership(t *testing.T) {
	fx := newContentFixture(t)
	ctx := context.Background()

	if _, _, err := fx.posts.CreatePost(ctx, fx.groupID, testUser("u9", "mallory"), PostInput{Title: "hi"}); err != ErrNotMember {
		t.Fatalf("outsider post: got %v, want ErrNotMember", err)
	}

	view, fieldErrs, err := fx.posts.CreatePost(ctx, fx.groupID, testUser("u2", "bob"), PostInput{Title: "hi"})
	if err != nil || len(fieldErrs) != 0 {
		t.Fatalf("member post: err=%v fieldErrs=%v", err, fieldErrs)
	}
	if view.Author.Username != "bob" || view.GroupID != fx.groupID {
		t.Fatalf("unexpected view %+v", view)
	}
	if !slices.Contains(fx.notifier.Events(), "NewPost") {
		t.Fatal("new post must be announced")
	}
}

func TestPostNotAddressableThroughWrongGroup(t *testing.T) {
	fx := newContentFixture(t)
	ctx := context.Background()

	view, _, err := fx.posts.CreatePost(ctx, fx.groupID, testUser("u2", "bob"), PostInput{Title: "hi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fx.posts.GetPost(ctx, fx.groupID+1, view.ID); err == nil {
		t.Fatal("post must only resolve through its own group")
	}
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	fx := newContentFixture(t)
	ctx := context.Background()

	view, _, err := fx.posts.CreatePost(ctx, fx.groupID, testUser("u2", "bob"), PostInput{Title: "hi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := fx.posts.UpdatePost(ctx, fx.groupID, view.ID, "u1", false, PostInput{Title: "edit"}); err != ErrForbidden {
		t.Fatalf("non-author update: got %v, want ErrForbidden", err)
	}
	updated, _, err := fx.posts.UpdatePost(ctx, fx.groupID, view.ID, "u2", false, PostInput{Title: "edit"})
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Title != "edit" {
		t.Fatalf("title = %q", updated.Title)
	}
	if !slices.Contains(fx.notifier.Events(), "PostUpdated") {
		t.Fatal("post update must be announced")
	}
}

func TestDeletePostByGroupOwner(t *testing.T) {
	fx := newContentFixture(t)
	ctx := context.Background()

	view, _, err := fx.posts.CreatePost(ctx, fx.groupID, testUser("u2", "bob"), PostInput{Title: "hi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := fx.posts.DeletePost(ctx, fx.groupID, view.ID, "u9", false); err != ErrForbidden {
		t.Fatalf("outsider delete: got %v, want ErrForbidden", err)
	}
	// The group owner did not author the post but moderates the group.
	if err := fx.posts.DeletePost(ctx, fx.groupID, view.ID, "u1", false); err != nil {
		t.Fatalf("group owner delete: %v", err)
	}
	if !slices.Contains(fx.notifier.Events(), "PostDeleted") {
		t.Fatal("post deletion must be announced")
	}
}

func TestCommentLifecycle(t *testing.T) {
	fx := newContentFixture(t)
	ctx := context.Background()

	post, _, err := fx.posts.CreatePost(ctx, fx.groupID, testUser("u1", "alice"), PostInput{Title: "hi"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if _, _, err := fx.comments.CreateComment(ctx, fx.groupID, post.ID, testUser("u9", "mallory"), CommentInput{Content: "spam"}); err != ErrNotMember {
		t.Fatalf("outsider comment: got %v, want ErrNotMember", err)
	}

	comment, fieldErrs, err := fx.comments.CreateComment(ctx, fx.groupID, post.ID, testUser("u2", "bob"), CommentInput{Content: "nice"})
	if err != nil || len(fieldErrs) != 0 {
		t.Fatalf("comment: err=%v fieldErrs=%v", err, fieldErrs)
	}
	if !slices.Contains(fx.notifier.Events(), "NewComment") {
		t.Fatal("new comment must be announced")
	}

	if _, _, err := fx.comments.UpdateComment(ctx, fx.groupID, post.ID, comment.ID, "u1", false, CommentInput{Content: "x"}); err != ErrForbidden {
		t.Fatalf("non-author comment edit: got %v, want ErrForbidden", err)
	}

	// The post author moderates their own thread.
	if err := fx.comments.DeleteComment(ctx, fx.groupID, post.ID, comment.ID, "u1", false); err != nil {
		t.Fatalf("post author delete: %v", err)
	}
	listed, err := fx.comments.ListComments(ctx, fx.groupID, post.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty thread, got %d", len(listed))
	}
}

func TestTagDictionary(t *testing.T) {
	svc := NewTagService(newFakeTagRepo())
	ctx := context.Background()

	created, fieldErrs, err := svc.CreateTag(ctx, " golang ", true)
	if err != nil || len(fieldErrs) != 0 {
		t.Fatalf("create: err=%v fieldErrs=%v", err, fieldErrs)
	}
	if created.Name != "golang" {
		t.Fatalf("name = %q, want trimmed", created.Name)
	}

	if _, _, err := svc.UpdateTag(ctx, created.ID, "golang", false); err != nil {
		t.Fatalf("retire: %v", err)
	}

	visible, err := svc.ListTags(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("retired tag must be hidden from non-admin listing: %v", visible)
	}
	all, err := svc.ListTags(ctx, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("admin listing must include retired tags: %v", all)
	}
}
