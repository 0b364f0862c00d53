package model

import "time"

// FriendRequest is a pending directed invitation from Sender to Receiver.
// Accept or decline removes the row.
type FriendRequest struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Sender    string    `gorm:"uniqueIndex:idx_request_pair;size:32;not null" json:"sender"`
	Receiver  string    `gorm:"uniqueIndex:idx_request_pair;size:32;not null;index" json:"receiver"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Friendship is an undirected edge stored exactly once, keyed by the
// lexicographically ordered username pair. Symmetry holds by construction.
type Friendship struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserLow   string    `gorm:"uniqueIndex:idx_friend_pair;size:32;not null" json:"user_low"`
	UserHigh  string    `gorm:"uniqueIndex:idx_friend_pair;size:32;not null;index" json:"user_high"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Block is a unilateral edge: Blocker no longer accepts requests from
// Blocked, and any friendship between the two is severed when it is created.
type Block struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Blocker   string    `gorm:"uniqueIndex:idx_block_pair;size:32;not null" json:"blocker"`
	Blocked   string    `gorm:"uniqueIndex:idx_block_pair;size:32;not null" json:"blocked"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CanonicalPair orders two usernames for the Friendship edge key.
func CanonicalPair(a, b string) (low, high string) {
	if a > b {
		return b, a
	}
	return a, b
}
