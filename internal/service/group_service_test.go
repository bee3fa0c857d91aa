package service

import (
	"context"
	"slices"
	"testing"

	"github.com/karkasai/karkasai-backend/internal/domain"
)

func testUser(id, username string) *domain.User {
	return &domain.User{ID: id, Username: username, Email: username + "@example.com"}
}

func newGroupFixture() (*GroupService, *fakeTagRepo, *recordingNotifier) {
	tags := newFakeTagRepo()
	notifier := &recordingNotifier{}
	return NewGroupService(newFakeGroupRepo(), tags, notifier), tags, notifier
}

func TestCreateGroupOwnerIsFirstMember(t *testing.T) {
	svc, _, notifier := newGroupFixture()
	owner := testUser("u1", "alice")

	view, fieldErrs, err := svc.CreateGroup(context.Background(), owner, GroupInput{
		Title: "go study circle", Description: "weekly", MaxMembers: 5,
	})
	if err != nil || len(fieldErrs) != 0 {
		t.Fatalf("create: err=%v fieldErrs=%v", err, fieldErrs)
	}
	if view.Owner.Username != "alice" {
		t.Fatalf("owner = %+v", view.Owner)
	}
	if view.CurrentMembers != 1 || len(view.Members) != 1 || view.Members[0].ID != "u1" {
		t.Fatalf("creator must be the first member: %+v", view)
	}
	if !slices.Contains(notifier.Events(), "NewGroup") {
		t.Fatal("group creation must be announced")
	}
}

func TestCreateGroupValidation(t *testing.T) {
	svc, _, _ := newGroupFixture()

	_, fieldErrs, err := svc.CreateGroup(context.Background(), testUser("u1", "alice"), GroupInput{Title: "  ", MaxMembers: 0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(fieldErrs) != 2 {
		t.Fatalf("expected title and maxMembers errors, got %v", fieldErrs)
	}
}

func TestCreateGroupDropsUnusableTags(t *testing.T) {
	svc, tags, _ := newGroupFixture()
	ctx := context.Background()

	usable := &domain.Tag{Name: "golang", Usable: true}
	retired := &domain.Tag{Name: "flash", Usable: false}
	tags.Create(ctx, usable)
	tags.Create(ctx, retired)

	view, _, err := svc.CreateGroup(ctx, testUser("u1", "alice"), GroupInput{
		Title: "t", MaxMembers: 3, TagIDs: []uint{usable.ID, retired.ID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(view.Tags) != 1 || view.Tags[0].Name != "golang" {
		t.Fatalf("unusable tags must be dropped silently: %+v", view.Tags)
	}
}

func TestJoinGroupCapacityAndUniqueness(t *testing.T) {
	svc, _, _ := newGroupFixture()
	ctx := context.Background()
	owner := testUser("u1", "alice")

	view, _, err := svc.CreateGroup(ctx, owner, GroupInput{Title: "t", MaxMembers: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.JoinGroup(ctx, view.ID, owner); err != ErrAlreadyMember {
		t.Fatalf("owner rejoin: got %v, want ErrAlreadyMember", err)
	}

	joined, err := svc.JoinGroup(ctx, view.ID, testUser("u2", "bob"))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.CurrentMembers != 2 {
		t.Fatalf("currentMembers = %d, want 2", joined.CurrentMembers)
	}

	if _, err := svc.JoinGroup(ctx, view.ID, testUser("u3", "carol")); err != ErrGroupFull {
		t.Fatalf("join full group: got %v, want ErrGroupFull", err)
	}
}

func TestUpdateGroupOwnership(t *testing.T) {
	svc, _, _ := newGroupFixture()
	ctx := context.Background()

	view, _, err := svc.CreateGroup(ctx, testUser("u1", "alice"), GroupInput{Title: "t", MaxMembers: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in := GroupInput{Title: "renamed", MaxMembers: 3}
	if _, _, err := svc.UpdateGroup(ctx, "u2", false, view.ID, in); err != ErrForbidden {
		t.Fatalf("non-owner update: got %v, want ErrForbidden", err)
	}
	if _, _, err := svc.UpdateGroup(ctx, "u2", true, view.ID, in); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	updated, _, err := svc.UpdateGroup(ctx, "u1", false, view.ID, GroupInput{Title: "final", MaxMembers: 4})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "final" || updated.MaxMembers != 4 {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestUpdateGroupRejectsShrinkBelowMembers(t *testing.T) {
	svc, _, _ := newGroupFixture()
	ctx := context.Background()

	view, _, err := svc.CreateGroup(ctx, testUser("u1", "alice"), GroupInput{Title: "t", MaxMembers: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.JoinGroup(ctx, view.ID, testUser("u2", "bob")); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, fieldErrs, err := svc.UpdateGroup(ctx, "u1", false, view.ID, GroupInput{Title: "t", MaxMembers: 1})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(fieldErrs) == 0 {
		t.Fatal("capacity below member count must be rejected")
	}
}

func TestDeleteGroupOwnership(t *testing.T) {
	svc, _, _ := newGroupFixture()
	ctx := context.Background()

	view, _, err := svc.CreateGroup(ctx, testUser("u1", "alice"), GroupInput{Title: "t", MaxMembers: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteGroup(ctx, "u2", false, view.ID); err != ErrForbidden {
		t.Fatalf("non-owner delete: got %v, want ErrForbidden", err)
	}
	if err := svc.DeleteGroup(ctx, "u1", false, view.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.GetGroup(ctx, view.ID); err == nil {
		t.Fatal("deleted group must not resolve")
	}
}
