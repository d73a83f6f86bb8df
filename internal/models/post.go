package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the Weave application.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"author"`
	CommunityID *uint      `gorm:"index" json:"community_id,omitempty"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	Content     string     `gorm:"type:text" json:"content"`
	MediaURL    string     `json:"media_url"`
	// LikesCount is not persisted; computed at query time
	LikesCount int64 `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int64          `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// BeforeSave enforces that a post carries content, media, or both.
func (p *Post) BeforeSave(_ *gorm.DB) error {
	if p.Content == "" && p.MediaURL == "" {
		return NewConstraintViolationError("Post must have content or media")
	}
	return nil
}
