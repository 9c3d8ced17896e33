package models

import "time"

// PushSubscription is a browser push endpoint registered by one user.
// A user may hold several (one per browser/device); (UserID, Endpoint) is
// unique and re-subscribing the same endpoint updates the row in place.
type PushSubscription struct {
	ID               string
	UserID           string
	Endpoint         string
	P256dhKey        string
	AuthKey          string
	UserAgent        string
	IsActive         bool
	LastNotification *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// User is the owning principal for remote-store data. Authentication itself
// (magic-link delivery etc.) happens outside this codebase.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
