package models

import "time"

// TweetType distinguishes the four tweet variants. Every type except
// NORMAL carries a reference to exactly one other tweet.
type TweetType string

const (
	TweetTypeNormal  TweetType = "NORMAL"
	TweetTypeComment TweetType = "COMMENT"
	TweetTypeRetweet TweetType = "RETWEET"
	TweetTypeQuote   TweetType = "QUOTE"
)

// Tweet is one row of the tweets table. ReferenceTweetID is set exactly
// when Type is not NORMAL; it is an identifier, not a loaded tweet, and the
// referenced row may no longer exist (comments and quotes survive deletion
// of their target, retweets do not).
type Tweet struct {
	ID               uint64
	AuthorID         uint64
	Text             string
	Type             TweetType
	ReferenceTweetID *uint64
	CreatedAt        time.Time
}

// HasReference reports whether the tweet points at another tweet.
func (t *Tweet) HasReference() bool {
	return t.Type != TweetTypeNormal && t.ReferenceTweetID != nil
}
