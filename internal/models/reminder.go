package models

import "time"

// ReminderType distinguishes one-shot reminders from recurring ones.
type ReminderType string

const (
	ReminderOneTime   ReminderType = "ONE_TIME"
	ReminderRecurring ReminderType = "RECURRING"
)

// RecurringUnit is the calendar unit a recurring reminder advances by.
type RecurringUnit string

const (
	UnitDays   RecurringUnit = "DAYS"
	UnitWeeks  RecurringUnit = "WEEKS"
	UnitMonths RecurringUnit = "MONTHS"
	UnitYears  RecurringUnit = "YEARS"
)

// ValidRecurringUnit reports whether u is one of the four supported units.
func ValidRecurringUnit(u RecurringUnit) bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
		return true
	}
	return false
}

// Reminder is a scheduled nudge tied to a contact.
//
// Invariants:
//   - Type == ReminderRecurring iff RecurringUnit and RecurringValue are set
//     and RecurringValue >= 1.
//   - NextDueDate is non-nil only for unacknowledged recurring reminders and
//     always equals DueDate advanced by one recurrence step.
//   - IsAcknowledged == true iff AcknowledgedAt is non-nil; a recurring
//     reminder is rolled forward atomically within acknowledgment and stays
//     unacknowledged.
type Reminder struct {
	ID             string        `json:"id"`
	ContactID      string        `json:"contactId"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	DueDate        time.Time     `json:"dueDate"`
	Type           ReminderType  `json:"reminderType"`
	RecurringUnit  RecurringUnit `json:"recurringUnit,omitempty"`
	RecurringValue int           `json:"recurringValue,omitempty"`
	IsAcknowledged bool          `json:"isAcknowledged"`
	AcknowledgedAt *time.Time    `json:"acknowledgedAt,omitempty"`
	NextDueDate    *time.Time    `json:"nextDueDate,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}
