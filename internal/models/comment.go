package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. Replies reference their parent by
// ParentCommentID; the parent must belong to the same post.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          uint      `gorm:"not null;index" json:"post_id"`
	AuthorID        uint      `gorm:"not null" json:"author_id"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment_id,omitempty"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships
	Author User     `gorm:"foreignKey:AuthorID" json:"author"`
	Post   Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Parent *Comment `gorm:"foreignKey:ParentCommentID" json:"parent,omitempty"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate rejects empty comments before they reach the store.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.Content == "" {
		return NewConstraintViolationError("Comment content is required")
	}
	return nil
}
