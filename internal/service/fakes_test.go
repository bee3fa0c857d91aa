package service

import (
	"context"
	"sync"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	roles map[string]*domain.Role
}

func newFakeUserRepo() *fakeUserRepo {
	repo := &fakeUserRepo{
		users: map[string]*domain.User{},
		roles: map[string]*domain.Role{},
	}
	for i, name := range domain.AllRoles {
		repo.roles[name] = &domain.Role{ID: uint(i + 1), Name: name}
	}
	return repo
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) AddRole(_ context.Context, userID string, roleName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[roleName]
	if !ok {
		return repository.ErrRoleNotFound
	}
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Roles = append(u.Roles, *role)
	return nil
}

func (r *fakeUserRepo) EnsureRole(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[name]; ok {
		return role, nil
	}
	role := &domain.Role{ID: uint(len(r.roles) + 1), Name: name}
	r.roles[name] = role
	return role, nil
}

// recordingNotifier captures published events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func (n *recordingNotifier) NotifyNewGroup(context.Context, GroupView) { n.record("NewGroup") }
func (n *recordingNotifier) NotifyNewPost(context.Context, uint, string, PostView) {
	n.record("NewPost")
}
func (n *recordingNotifier) NotifyPostUpdated(context.Context, uint, PostView) {
	n.record("PostUpdated")
}
func (n *recordingNotifier) NotifyPostDeleted(context.Context, uint, uint) { n.record("PostDeleted") }
func (n *recordingNotifier) NotifyNewComment(context.Context, uint, uint, CommentView) {
	n.record("NewComment")
}
