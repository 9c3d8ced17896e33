package push

import (
	"fmt"

	"github.com/dmitrijs2005/keepintouch/internal/models"
)

const notificationIcon = "/icon-256.png"

// Action is a button rendered on the notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// Payload is the JSON document delivered to the browser push collaborator.
type Payload struct {
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon,omitempty"`
	Badge              string         `json:"badge,omitempty"`
	URL                string         `json:"url,omitempty"`
	Tag                string         `json:"tag,omitempty"`
	RequireInteraction bool           `json:"requireInteraction,omitempty"`
	Actions            []Action       `json:"actions,omitempty"`
	Data               map[string]any `json:"data,omitempty"`
}

// ReminderPayload builds the single-reminder notification: title, a body
// referencing the contact, a deep link to the contact page and
// view/acknowledge actions.
func ReminderPayload(r *models.Reminder, contactName string) Payload {
	body := "For " + contactName
	if r.Description != "" {
		body += " - " + r.Description
	}
	url := "/contacts/" + r.ContactID
	return Payload{
		Title:              "Reminder: " + r.Title,
		Body:               body,
		Icon:               notificationIcon,
		Badge:              notificationIcon,
		URL:                url,
		Tag:                "reminder-" + r.ID,
		RequireInteraction: true,
		Actions: []Action{
			{Action: "view", Title: "View Contact", Icon: notificationIcon},
			{Action: "acknowledge", Title: "Mark Complete"},
		},
		Data: map[string]any{
			"reminderId": r.ID,
			"contactId":  r.ContactID,
			"url":        url,
		},
	}
}

// DigestPayload builds the aggregate "N reminders due" notification sent
// instead of one-per-reminder when several are due at once.
func DigestPayload(count int) Payload {
	plural := ""
	if count > 1 {
		plural = "s"
	}
	return Payload{
		Title:              fmt.Sprintf("%d Reminder%s Due", count, plural),
		Body:               fmt.Sprintf("You have %d reminder%s that need your attention.", count, plural),
		Icon:               notificationIcon,
		Badge:              notificationIcon,
		URL:                "/",
		Tag:                "multiple-reminders",
		RequireInteraction: true,
		Actions: []Action{
			{Action: "view", Title: "View Reminders", Icon: notificationIcon},
		},
		Data: map[string]any{
			"type":  "multiple-reminders",
			"count": count,
			"url":   "/",
		},
	}
}

// TestPayload is sent from the manual test endpoint.
func TestPayload() Payload {
	return Payload{
		Title: "KeepInTouch Test Notification",
		Body:  "Push notifications are working correctly!",
		Icon:  notificationIcon,
		Badge: notificationIcon,
		URL:   "/",
		Tag:   "test-notification",
	}
}
