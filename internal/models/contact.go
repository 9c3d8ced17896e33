// Package models defines the domain types shared by the local and remote
// stores: contacts, interactions, reminders and push subscriptions.
package models

import "time"

// Contact is a tracked relationship. In the remote store a contact belongs to
// exactly one user; the local store has no ownership concept and leaves
// OwnerID empty.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Group     string    `json:"group,omitempty"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactSummary is a contact annotated for list views: the date of the most
// recent interaction, a human-readable "time since" string, and the contact's
// due and upcoming reminders.
type ContactSummary struct {
	Contact
	LastInteraction   *time.Time `json:"lastInteraction,omitempty"`
	TimeSinceLastSeen string     `json:"timeSinceLastInteraction,omitempty"`
	DueReminders      []Reminder `json:"dueReminders"`
	UpcomingReminders []Reminder `json:"upcomingReminders"`
}
