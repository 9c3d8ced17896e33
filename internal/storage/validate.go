package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/dmitrijs2005/keepintouch/internal/reminder"
)

// NormalizeRequired trims s and rejects it when empty after trimming.
func NormalizeRequired(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", common.ErrValidation, field)
	}
	return s, nil
}

// Normalize validates the input in place: required fields are trimmed and
// checked, and the recurrence settings must be consistent with the type.
func (in *CreateReminderInput) Normalize() error {
	title, err := NormalizeRequired("title", in.Title)
	if err != nil {
		return err
	}
	in.Title = title
	in.Description = strings.TrimSpace(in.Description)

	switch in.Type {
	case models.ReminderOneTime:
		if in.RecurringUnit != "" || in.RecurringValue != 0 {
			return fmt.Errorf("%w: one-time reminder cannot carry a recurrence", common.ErrValidation)
		}
	case models.ReminderRecurring:
		if !models.ValidRecurringUnit(in.RecurringUnit) {
			return fmt.Errorf("%w: unknown recurring unit %q", common.ErrValidation, in.RecurringUnit)
		}
		if in.RecurringValue < 1 {
			return fmt.Errorf("%w: recurring value must be at least 1", common.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown reminder type %q", common.ErrValidation, in.Type)
	}
	return nil
}

// Apply merges the non-nil fields of u into r. Any change to the due date,
// type or recurrence settings recomputes NextDueDate so the invariant
// "NextDueDate is DueDate advanced one step" holds after every edit.
func (u ReminderUpdate) Apply(r *models.Reminder, now time.Time) {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = strings.TrimSpace(*u.Description)
	}
	scheduleChanged := false
	if u.DueDate != nil {
		r.DueDate = *u.DueDate
		scheduleChanged = true
	}
	if u.Type != nil {
		r.Type = *u.Type
		scheduleChanged = true
	}
	if u.RecurringUnit != nil {
		r.RecurringUnit = *u.RecurringUnit
		scheduleChanged = true
	}
	if u.RecurringValue != nil {
		r.RecurringValue = *u.RecurringValue
		scheduleChanged = true
	}
	if scheduleChanged {
		r.NextDueDate = reminder.NextDue(r)
	}
	r.UpdatedAt = now
}

// Validate checks a partial reminder update before it is applied.
func (u *ReminderUpdate) Validate() error {
	if u.Title != nil {
		title, err := NormalizeRequired("title", *u.Title)
		if err != nil {
			return err
		}
		u.Title = &title
	}
	if u.RecurringUnit != nil && !models.ValidRecurringUnit(*u.RecurringUnit) {
		return fmt.Errorf("%w: unknown recurring unit %q", common.ErrValidation, *u.RecurringUnit)
	}
	if u.RecurringValue != nil && *u.RecurringValue < 1 {
		return fmt.Errorf("%w: recurring value must be at least 1", common.ErrValidation)
	}
	return nil
}
