package service

import (
	"time"

	"github.com/karkasai/karkasai-backend/internal/domain"
)

// View types are the JSON shapes returned by the API and broadcast over the
// realtime channel. They carry author usernames resolved from preloaded
// associations so clients never need a second lookup.

type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type TagView struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Usable bool   `json:"usable"`
}

type GroupView struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	CurrentMembers int        `json:"currentMembers"`
	MaxMembers     int        `json:"maxMembers"`
	ImageURL       *string    `json:"imageUrl,omitempty"`
	DateCreated    time.Time  `json:"dateCreated"`
	Owner          UserView   `json:"owner"`
	Members        []UserView `json:"members,omitempty"`
	Tags           []TagView  `json:"tags,omitempty"`
}

type PostView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	DateCreated time.Time `json:"dateCreated"`
	GroupID     uint      `json:"groupId"`
	Author      UserView  `json:"author"`
}

type CommentView struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	DateCreated time.Time `json:"dateCreated"`
	PostID      uint      `json:"postId"`
	Author      UserView  `json:"author"`
}

// PostDetailView nests the comment thread; used by the admin overview.
type PostDetailView struct {
	PostView
	Comments []CommentView `json:"comments"`
}

// GroupDetailView is the fully expanded group used by the admin overview.
type GroupDetailView struct {
	GroupView
	Posts []PostDetailView `json:"posts"`
}

func toUserView(u domain.User) UserView {
	return UserView{ID: u.ID, Username: u.Username}
}

func toTagView(t domain.Tag) TagView {
	return TagView{ID: t.ID, Name: t.Name, Usable: t.Usable}
}

func toGroupView(g *domain.Group) GroupView {
	view := GroupView{
		ID:             g.ID,
		Title:          g.Title,
		Description:    g.Description,
		CurrentMembers: g.CurrentMembers,
		MaxMembers:     g.MaxMembers,
		ImageURL:       g.ImageURL,
		DateCreated:    g.DateCreated,
		Owner:          toUserView(g.OwnerUser),
	}
	if view.Owner.ID == "" {
		view.Owner = UserView{ID: g.OwnerUserID}
	}
	for _, m := range g.Members {
		view.Members = append(view.Members, toUserView(m))
	}
	for _, t := range g.Tags {
		view.Tags = append(view.Tags, toTagView(t))
	}
	return view
}

func toPostView(p *domain.Post) PostView {
	view := PostView{
		ID:          p.ID,
		Title:       p.Title,
		ImageURL:    p.ImageURL,
		DateCreated: p.DateCreated,
		GroupID:     p.GroupID,
		Author:      toUserView(p.User),
	}
	if view.Author.ID == "" {
		view.Author = UserView{ID: p.UserID}
	}
	return view
}

func toCommentView(c *domain.Comment) CommentView {
	view := CommentView{
		ID:          c.ID,
		Content:     c.Content,
		ImageURL:    c.ImageURL,
		DateCreated: c.DateCreated,
		PostID:      c.PostID,
		Author:      toUserView(c.User),
	}
	if view.Author.ID == "" {
		view.Author = UserView{ID: c.UserID}
	}
	return view
}
