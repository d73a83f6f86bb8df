package models

import "time"

// Community represents a user-created community namespace.
type Community struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	CreatorID   uint   `gorm:"not null" json:"creator_id"`
	Creator     User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	IsPrivate   bool   `gorm:"default:false" json:"is_private"`
	// MemberCount is denormalized and maintained by the membership write path
	// under row-level locks. It must equal the live membership row count.
	MemberCount int       `gorm:"not null;default:0" json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Community) TableName() string {
	return "communities"
}
