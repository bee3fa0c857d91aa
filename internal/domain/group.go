package domain

import "time"

type Group struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:128;not null" json:"title"`
	Description    string    `gorm:"size:1024;not null" json:"description"`
	CurrentMembers int       `gorm:"not null" json:"current_members"`
	MaxMembers     int       `gorm:"not null" json:"max_members"`
	ImageURL       *string   `gorm:"size:512" json:"image_url,omitempty"`
	DateCreated    time.Time `json:"date_created"`
	OwnerUserID    string    `gorm:"size:36;index;not null" json:"owner_user_id"`
	OwnerUser      User      `gorm:"foreignKey:OwnerUserID" json:"-"`
	Members        []User    `gorm:"many2many:group_members" json:"-"`
	Posts          []Post    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tags           []Tag     `gorm:"many2many:group_tags" json:"-"`
}

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	ImageURL    *string   `gorm:"size:512" json:"image_url,omitempty"`
	DateCreated time.Time `json:"date_created"`
	UserID      string    `gorm:"size:36;index;not null" json:"user_id"`
	User        User      `json:"-"`
	GroupID     uint      `gorm:"index;not null" json:"group_id"`
	Comments    []Comment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Content     string    `gorm:"size:2048;not null" json:"content"`
	ImageURL    *string   `gorm:"size:512" json:"image_url,omitempty"`
	DateCreated time.Time `json:"date_created"`
	UserID      string    `gorm:"size:36;index;not null" json:"user_id"`
	User        User      `json:"-"`
	PostID      uint      `gorm:"index;not null" json:"post_id"`
}

type Tag struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Usable bool    `gorm:"not null;default:true" json:"usable"`
	Groups []Group `gorm:"many2many:group_tags" json:"-"`
}
