package models

import "gorm.io/gorm"

// GroupMembership snapshots the member's username and email at join time so the
// per-group uniqueness constraints live on this table alone, without a join
// against users on every insert.
type GroupMembership struct {
	gorm.Model

	UserID   uint   `gorm:"not null;index"`
	GroupID  uint   `gorm:"not null;uniqueIndex:idx_group_username;uniqueIndex:idx_group_email"`
	Username string `gorm:"not null;uniqueIndex:idx_group_username"`
	Email    string `gorm:"not null;uniqueIndex:idx_group_email"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Group Group `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
