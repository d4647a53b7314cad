package models

import "gorm.io/gorm"

// Username and email carry no global unique index: the same pair may exist in
// two different groups. Uniqueness lives on GroupMembership.
type User struct {
	gorm.Model

	Username string `gorm:"not null;index"`
	Email    string `gorm:"not null;index"`
	Password string `gorm:"not null"` // stored in clear text

	// Relationships
	Memberships []GroupMembership `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Sessions    []GameSession     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
