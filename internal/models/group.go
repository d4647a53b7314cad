package models

import "gorm.io/gorm"

type Group struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null"`

	// Relationships
	Memberships []GroupMembership `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
