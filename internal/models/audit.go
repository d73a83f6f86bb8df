package models

import "time"

// AuditEntry records a destructive or counter-affecting write. Entries are
// written synchronously by the write path rather than by storage triggers so
// ordering and failure semantics stay visible to callers.
type AuditEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    uint      `gorm:"index" json:"actor_id"`
	Action     string    `gorm:"size:60;not null" json:"action"`
	EntityKind string    `gorm:"size:30;not null" json:"entity_kind"`
	EntityID   uint      `json:"entity_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (AuditEntry) TableName() string {
	return "audit_entries"
}
