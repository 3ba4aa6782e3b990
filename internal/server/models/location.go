package models

import "time"

// Location is a user-submitted map point of interest. It stays invisible to
// public listings until an administrator flips Verified.
type Location struct {
	ID          int64
	Title       string
	Description string
	Latitude    float64
	Longitude   float64
	PlaceType   string
	// CreatorID is nullable: early submissions predate account linkage.
	CreatorID *int64
	Verified  bool
	CreatedAt time.Time

	// PhotoPaths are resolved attachment references, populated on reads.
	PhotoPaths []string
}
