package models

import "time"

// Session is a server-stored login session. The token handed to the client
// references it; deleting the row invalidates the token on logout.
type Session struct {
	ID        string
	UserID    int64
	Expires   time.Time
	CreatedAt time.Time
}
