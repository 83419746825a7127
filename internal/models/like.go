package models

import "time"

// Like records that a user liked a tweet. Unique per (UserID, TweetID).
type Like struct {
	UserID    uint64
	TweetID   uint64
	CreatedAt time.Time
}
