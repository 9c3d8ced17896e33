// Package reminder implements the recurrence state machine shared by both
// stores: due-date advancement on acknowledgment and the due/upcoming/future
// classification used for display and notification targeting.
package reminder

import (
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/dmitrijs2005/keepintouch/internal/timex"
)

// UpcomingWindowDays is the default horizon for the "upcoming" bucket.
const UpcomingWindowDays = 30

// Bucket is the time classification of a reminder relative to some instant.
type Bucket string

const (
	BucketDue          Bucket = "due"
	BucketUpcoming     Bucket = "upcoming"
	BucketFuture       Bucket = "future"
	BucketAcknowledged Bucket = "acknowledged"
)

// NextDue computes the next occurrence for a recurring reminder's schedule.
// Returns nil unless the reminder type is recurring with a valid recurrence.
func NextDue(r *models.Reminder) *time.Time {
	if r.Type != models.ReminderRecurring || r.RecurringValue < 1 {
		return nil
	}
	next := timex.NextOccurrence(r.DueDate, r.RecurringUnit, r.RecurringValue)
	return &next
}

// Acknowledge applies the acknowledgment transition to r in place.
//
// ONE_TIME: PENDING -> DONE, terminal; AcknowledgedAt is stamped.
//
// RECURRING with NextDueDate set: a self-loop. The due date advances to
// NextDueDate, NextDueDate moves one more step out, and the reminder returns
// to PENDING with AcknowledgedAt cleared — it never reaches DONE.
//
// RECURRING without NextDueDate is an inconsistent state; it falls back to
// the ONE_TIME transition so the reminder at least closes out.
func Acknowledge(r *models.Reminder, now time.Time) {
	r.IsAcknowledged = true
	r.AcknowledgedAt = &now
	r.UpdatedAt = now

	if r.Type == models.ReminderRecurring && r.NextDueDate != nil {
		r.DueDate = *r.NextDueDate
		r.NextDueDate = NextDue(r)
		r.IsAcknowledged = false
		r.AcknowledgedAt = nil
	}
}

// Classify places r into a bucket relative to now. Pending reminders
// partition into due (< now), upcoming (within the window) and future;
// acknowledged reminders — reachable only for ONE_TIME — form the fourth
// bucket.
func Classify(r *models.Reminder, now time.Time) Bucket {
	if r.IsAcknowledged {
		return BucketAcknowledged
	}
	if r.DueDate.Before(now) {
		return BucketDue
	}
	if r.DueDate.Before(now.AddDate(0, 0, UpcomingWindowDays)) {
		return BucketUpcoming
	}
	return BucketFuture
}
