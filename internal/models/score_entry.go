package models

import "time"

// ScoreEntry is append-only. Username is a denormalized copy kept alongside the
// nullable user link so historical scores survive changes to the user record;
// group attribution falls back to username matching when UserID is NULL.
type ScoreEntry struct {
	ID        uint      `gorm:"primarykey"`
	Username  string    `gorm:"not null;index"`
	UserID    *uint     `gorm:"index"`
	Score     int       `gorm:"not null"`
	GameMode  string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"index"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
