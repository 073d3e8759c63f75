package domain

import "time"

// Notification is an append-only message surfaced to a user, newest
// first. Link is an optional deep-link into the UI.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Link      string
	CreatedAt time.Time
}
