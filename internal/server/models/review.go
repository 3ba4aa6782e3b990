package models

import "time"

// Review is a user-submitted review of a location, moderated the same way
// locations are.
type Review struct {
	ID         int64
	LocationID int64
	CreatorID  int64
	Rating     int
	Text       string
	Verified   bool
	CreatedAt  time.Time

	PhotoPaths []string
}
