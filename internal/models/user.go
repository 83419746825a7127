package models

import "time"

// UserStatus is the privacy setting of an account.
type UserStatus string

const (
	UserStatusPublic  UserStatus = "PUBLIC"
	UserStatusPrivate UserStatus = "PRIVATE"
)

// User represents an account record in the users table.
type User struct {
	ID       uint64
	Username string
	Name     string
	Bio      string
	Location string
	Link     string
	BirthDay *time.Time
	Status   UserStatus
	// LastSeenOfTimeline marks the newest home-timeline item the user has
	// been served. Written only by the timeline service.
	LastSeenOfTimeline *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UserProfile is the row shape returned by follower/following listings.
type UserProfile struct {
	ID       uint64
	Username string
	Name     string
	Bio      string
}
