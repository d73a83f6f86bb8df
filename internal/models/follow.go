package models

import (
	"time"

	"gorm.io/gorm"
)

// FollowStatus represents the status of a follow edge.
type FollowStatus string

const (
	// FollowStatusPending indicates a follow request awaiting a decision.
	FollowStatusPending FollowStatus = "pending"
	// FollowStatusAccepted indicates an accepted follow edge.
	FollowStatusAccepted FollowStatus = "accepted"
	// FollowStatusRejected indicates a declined follow request.
	FollowStatusRejected FollowStatus = "rejected"
)

// Follow represents a directed follow edge between two users. Graph and
// recommendation operations traverse only accepted edges.
type Follow struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	FollowerID  uint         `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowingID uint         `gorm:"not null;uniqueIndex:idx_follow_pair" json:"following_id"`
	Status      FollowStatus `gorm:"type:varchar(20);default:'pending';index:idx_follows_status" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relationships
	Follower  User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate rejects self-referential edges before they reach the store.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.FollowerID == f.FollowingID {
		return NewInvalidEdgeError("Cannot follow yourself")
	}
	return nil
}
