package entity

import "time"

// Post is a piece of user content. Private posts are only listed for their owner.
type Post struct {
	ID        string
	UserID    string
	Content   string
	ImageURLs []string
	IsPublic  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
