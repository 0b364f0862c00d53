package model

import "time"

// DefaultRating is assigned to every freshly registered account.
const DefaultRating = 1000

// DefaultAvatarRef is served until the player uploads an avatar.
const DefaultAvatarRef = "/static/avatars/default.png"

// Account represents a player account.
type Account struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:32;not null" json:"username"`
	PasswordHash string     `gorm:"size:64;not null" json:"-"`
	Rating       int        `gorm:"default:1000" json:"rating"`
	AvatarRef    string     `gorm:"size:255" json:"avatar_ref"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastActiveAt *time.Time `json:"last_active_at"`
}
