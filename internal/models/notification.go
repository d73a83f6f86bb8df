package models

import "time"

// NotificationKind classifies fan-out events.
type NotificationKind string

const (
	// NotificationKindNewPost signals a followed user published a post.
	NotificationKindNewPost NotificationKind = "new_post"
	// NotificationKindFollowRequest signals a pending follow request.
	NotificationKindFollowRequest NotificationKind = "follow_request"
)

// Notification is a persisted fan-out event for a single recipient.
// Rows are written atomically with the triggering entity; real-time delivery
// over the pub/sub channel is best-effort after commit.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	ActorID     uint             `gorm:"not null" json:"actor_id"`
	Kind        NotificationKind `gorm:"type:varchar(30);not null" json:"kind"`
	PostID      *uint            `json:"post_id,omitempty"`
	Read        bool             `gorm:"default:false" json:"read"`
	CreatedAt   time.Time        `json:"created_at"`

	// Relationships
	Recipient User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	Actor     User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
