package service

import (
	"context"
	"slices"
	"sync"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/repository"
)

type fakeGroupRepo struct {
	mu     sync.Mutex
	nextID uint
	groups map[uint]*domain.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[uint]*domain.Group{}}
}

func (r *fakeGroupRepo) Create(_ context.Context, g *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	g.ID = r.nextID
	cp := *g
	r.groups[g.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) find(id uint) (*domain.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, repository.ErrGroupNotFound
	}
	cp := *g
	cp.Members = slices.Clone(g.Members)
	cp.Tags = slices.Clone(g.Tags)
	cp.Posts = slices.Clone(g.Posts)
	return &cp, nil
}

func (r *fakeGroupRepo) FindByID(_ context.Context, id uint) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(id)
}

func (r *fakeGroupRepo) FindWithDetails(_ context.Context, id uint) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(id)
}

func (r *fakeGroupRepo) ListPaged(_ context.Context, req repository.PageRequest) (repository.PageResult[domain.Group], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := repository.PageResult[domain.Group]{Page: 1, PageSize: len(r.groups), Total: int64(len(r.groups)), TotalPages: 1}
	for _, g := range r.groups {
		result.Items = append(result.Items, *g)
	}
	return result, nil
}

func (r *fakeGroupRepo) ListAllDetailed(context.Context) ([]domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Group
	for _, g := range r.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (r *fakeGroupRepo) Save(_ context.Context, g *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[g.ID]; !ok {
		return repository.ErrGroupNotFound
	}
	cp := *g
	r.groups[g.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) ReplaceTags(_ context.Context, g *domain.Group, tags []domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.groups[g.ID]
	if !ok {
		return repository.ErrGroupNotFound
	}
	stored.Tags = slices.Clone(tags)
	return nil
}

func (r *fakeGroupRepo) AddMember(_ context.Context, g *domain.Group, member *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.groups[g.ID]
	if !ok {
		return repository.ErrGroupNotFound
	}
	stored.Members = append(stored.Members, *member)
	stored.CurrentMembers++
	g.CurrentMembers = stored.CurrentMembers
	return nil
}

func (r *fakeGroupRepo) Delete(_ context.Context, g *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, g.ID)
	return nil
}

type fakePostRepo struct {
	mu     sync.Mutex
	nextID uint
	posts  map[uint]*domain.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[uint]*domain.Post{}}
}

func (r *fakePostRepo) Create(_ context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakePostRepo) FindInGroup(_ context.Context, groupID, postID uint) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok || p.GroupID != groupID {
		return nil, repository.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) ListByGroup(_ context.Context, groupID uint) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Post
	for _, p := range r.posts {
		if p.GroupID == groupID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Save(_ context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; !ok {
		return repository.ErrPostNotFound
	}
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, p.ID)
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	nextID   uint
	comments map[uint]*domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[uint]*domain.Comment{}}
}

func (r *fakeCommentRepo) Create(_ context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) FindInPost(_ context.Context, postID, commentID uint) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok || c.PostID != postID {
		return nil, repository.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) ListByPost(_ context.Context, postID uint) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Save(_ context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[c.ID]; !ok {
		return repository.ErrCommentNotFound
	}
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, c.ID)
	return nil
}

type fakeTagRepo struct {
	mu     sync.Mutex
	nextID uint
	tags   map[uint]*domain.Tag
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: map[uint]*domain.Tag{}}
}

func (r *fakeTagRepo) Create(_ context.Context, t *domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.tags[t.ID] = &cp
	return nil
}

func (r *fakeTagRepo) FindByID(_ context.Context, id uint) (*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tags[id]
	if !ok {
		return nil, repository.ErrTagNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTagRepo) FindByIDs(_ context.Context, ids []uint) ([]domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Tag
	for _, id := range ids {
		if t, ok := r.tags[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTagRepo) List(_ context.Context, usableOnly bool) ([]domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Tag
	for _, t := range r.tags {
		if usableOnly && !t.Usable {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTagRepo) Save(_ context.Context, t *domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[t.ID]; !ok {
		return repository.ErrTagNotFound
	}
	cp := *t
	r.tags[t.ID] = &cp
	return nil
}

func (r *fakeTagRepo) Delete(_ context.Context, t *domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tags, t.ID)
	return nil
}
