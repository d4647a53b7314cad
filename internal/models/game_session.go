package models

import (
	"time"

	"gorm.io/datatypes"
)

// GameSession is a live game a spectator can watch. State holds the latest
// board snapshot pushed by the player.
type GameSession struct {
	ID        string `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index"`
	Username  string `gorm:"not null"`
	Score     int    `gorm:"not null;default:0"`
	GameMode  string `gorm:"not null"`
	IsActive  bool   `gorm:"not null;default:true;index"`
	State     datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}
