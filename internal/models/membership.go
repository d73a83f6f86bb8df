package models

import "time"

// MembershipRole defines a member's role in a community.
type MembershipRole string

const (
	// MembershipRoleAdmin is the community administrator role.
	MembershipRoleAdmin MembershipRole = "admin"
	// MembershipRoleModerator is the community moderator role.
	MembershipRoleModerator MembershipRole = "moderator"
	// MembershipRoleMember is the default member role.
	MembershipRoleMember MembershipRole = "member"
)

// ParseMembershipRole resolves a role name to its typed value.
func ParseMembershipRole(name string) (MembershipRole, error) {
	switch MembershipRole(name) {
	case MembershipRoleAdmin, MembershipRoleModerator, MembershipRoleMember:
		return MembershipRole(name), nil
	default:
		return "", NewValidationError("Invalid role: must be admin, moderator, or member")
	}
}

// Membership maps users to communities and tracks role.
type Membership struct {
	CommunityID uint           `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	Community   *Community     `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	UserID      uint           `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        MembershipRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}
