// Package storage defines the operation set implemented by both the local
// blob store and the postgres-backed remote store, and the Manager facade
// that routes between them based on auth state.
package storage

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/models"
)

// SortContactSummaries orders list views the way both stores present them:
// by last interaction ascending, with never-contacted contacts first, among
// themselves by creation time.
func SortContactSummaries(s []models.ContactSummary) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		switch {
		case a.LastInteraction == nil && b.LastInteraction == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.LastInteraction == nil:
			return true
		case b.LastInteraction == nil:
			return false
		default:
			return a.LastInteraction.Before(*b.LastInteraction)
		}
	})
}

// CreateReminderInput carries the fields for a new reminder. For recurring
// reminders RecurringUnit and RecurringValue are required; for one-time
// reminders they must be absent.
type CreateReminderInput struct {
	ContactID      string
	Title          string
	Description    string
	DueDate        time.Time
	Type           models.ReminderType
	RecurringUnit  models.RecurringUnit
	RecurringValue int
}

// InteractionUpdate is a partial update; nil fields are left unchanged.
type InteractionUpdate struct {
	Date *time.Time
	Note *string
}

// ReminderUpdate is a partial update; nil fields are left unchanged.
// Changing any of DueDate/RecurringUnit/RecurringValue on a recurring
// reminder recomputes NextDueDate.
type ReminderUpdate struct {
	Title          *string
	Description    *string
	DueDate        *time.Time
	Type           *models.ReminderType
	RecurringUnit  *models.RecurringUnit
	RecurringValue *int
}

// Store is the operation set shared by the local and remote stores. Local
// operations are synchronous and ignore the context; remote operations are
// request/response and owner-scoped via the user ID carried in ctx.
type Store interface {
	// ContactsWithLastInteraction lists every contact annotated with its
	// most recent interaction and its due/upcoming reminders, ordered by
	// last-interaction ascending; contacts that were never contacted sort
	// first, among themselves by creation time.
	ContactsWithLastInteraction(ctx context.Context) ([]models.ContactSummary, error)

	AddContact(ctx context.Context, name, group string) (*models.Contact, error)
	Contact(ctx context.Context, id string) (*models.Contact, error)
	// DeleteContact removes the contact and cascades to all of its
	// interactions and reminders.
	DeleteContact(ctx context.Context, id string) error

	AddInteraction(ctx context.Context, contactID string, date *time.Time, note string) (*models.Interaction, error)
	UpdateInteraction(ctx context.Context, id string, upd InteractionUpdate) (*models.Interaction, error)
	DeleteInteraction(ctx context.Context, id string) error
	// ContactInteractions lists a contact's interactions, newest first.
	ContactInteractions(ctx context.Context, contactID string) ([]models.Interaction, error)

	AddReminder(ctx context.Context, in CreateReminderInput) (*models.Reminder, error)
	UpdateReminder(ctx context.Context, id string, upd ReminderUpdate) (*models.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
	AcknowledgeReminder(ctx context.Context, id string) (*models.Reminder, error)
	ContactReminders(ctx context.Context, contactID string) ([]models.Reminder, error)
	AllReminders(ctx context.Context) ([]models.Reminder, error)
	// DueReminders lists unacknowledged reminders with dueDate < now.
	DueReminders(ctx context.Context) ([]models.Reminder, error)
	// UpcomingReminders lists unacknowledged reminders with
	// now < dueDate < now+withinDays.
	UpcomingReminders(ctx context.Context, withinDays int) ([]models.Reminder, error)
}

// LocalStore adds the blob-level operations the Manager needs for migration.
type LocalStore interface {
	Store

	// Data returns the entire blob. Corrupt or missing data reads as empty.
	Data() models.LocalData
	HasData() bool
	Clear() error
}

// RemoteStore adds the bulk import used by local-to-cloud migration.
type RemoteStore interface {
	Store

	// ImportLocal bulk-creates the blob's entities under the acting user,
	// minting fresh IDs (remapping children to their new parents) while
	// preserving original timestamps. Not transactional: a failure partway
	// leaves a partial remote copy.
	ImportLocal(ctx context.Context, data models.LocalData) error
}
