package models

import "time"

// Interaction is a logged touchpoint with a contact on a given date.
// It always references an existing contact and is removed with it.
type Interaction struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contactId"`
	Date      time.Time `json:"date"`
	Note      string    `json:"note,omitempty"`
}
