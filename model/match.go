package model

import (
	"time"

	"gorm.io/datatypes"
)

// QueueEntry is one account waiting to be matched. Re-joining replaces the
// existing entry, so at most one live row per username.
type QueueEntry struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Rating   int       `gorm:"not null" json:"rating"`
	JoinedAt time.Time `gorm:"index;not null" json:"joined_at"`
}

// Match pairs two queue entries. Winner stays empty until a result is
// reported; Snapshot keeps the ratings captured at pairing time.
type Match struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Player1    string         `gorm:"size:32;not null" json:"player1"`
	Player2    string         `gorm:"size:32;not null" json:"player2"`
	Winner     string         `gorm:"size:32;default:''" json:"winner"`
	Snapshot   datatypes.JSON `json:"snapshot"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	ResolvedAt *time.Time     `json:"resolved_at"`
}

// Resolved reports whether a result has been recorded for the match.
func (m *Match) Resolved() bool {
	return m.Winner != ""
}
