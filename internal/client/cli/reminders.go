package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/dmitrijs2005/keepintouch/internal/storage"
)

// Remind creates a reminder for a contact, prompting for schedule details.
func (a *App) Remind(ctx context.Context, args []string) error {
	contactID, err := a.argOrPrompt(args, "Enter contact id")
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Enter description (optional)", os.Stdout)
	if err != nil {
		return err
	}
	dueDate, err := GetDate(a.reader, "Enter due date", time.Now().AddDate(0, 0, 7), os.Stdout)
	if err != nil {
		return err
	}

	in := storage.CreateReminderInput{
		ContactID:   contactID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Type:        models.ReminderOneTime,
	}

	recurring, err := getSimpleText(a.reader, "Repeat? (e.g. '2 weeks', empty for one-time)", os.Stdout)
	if err != nil {
		return err
	}
	if recurring != "" {
		value, unit, err := parseRecurrence(recurring)
		if err != nil {
			return err
		}
		in.Type = models.ReminderRecurring
		in.RecurringUnit = unit
		in.RecurringValue = value
	}

	reminder, err := a.manager.AddReminder(a.opCtx(ctx), in)
	if err != nil {
		return err
	}
	printlnFn("Added reminder", reminder.ID, "due", reminder.DueDate.Format("2006-01-02"))
	return nil
}

// parseRecurrence turns inputs like "2 weeks" or "1 month" into a recurrence
// step.
func parseRecurrence(s string) (int, models.RecurringUnit, error) {
	parts := strings.Fields(strings.ToUpper(strings.TrimSpace(s)))
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("expected '<number> <days|weeks|months|years>', got %q", s)
	}
	value, err := strconv.Atoi(parts[0])
	if err != nil || value < 1 {
		return 0, "", fmt.Errorf("invalid repeat count %q", parts[0])
	}
	unit := models.RecurringUnit(strings.TrimSuffix(parts[1], "S") + "S")
	if !models.ValidRecurringUnit(unit) {
		return 0, "", fmt.Errorf("invalid repeat unit %q", parts[1])
	}
	return value, unit, nil
}

// Reminders lists all reminders, or one contact's when an ID is given.
func (a *App) Reminders(ctx context.Context, args []string) error {
	var (
		items []models.Reminder
		err   error
	)
	if len(args) > 0 {
		items, err = a.manager.GetContactReminders(a.opCtx(ctx), args[0])
	} else {
		items, err = a.manager.GetAllReminders(a.opCtx(ctx))
	}
	if err != nil {
		return err
	}
	a.printReminders(items, "No reminders.")
	return nil
}

// Due lists unacknowledged reminders that are past due.
func (a *App) Due(ctx context.Context) error {
	items, err := a.manager.GetDueReminders(a.opCtx(ctx))
	if err != nil {
		return err
	}
	a.printReminders(items, "Nothing due. Nice work!")
	return nil
}

// Upcoming lists unacknowledged reminders due within the next month.
func (a *App) Upcoming(ctx context.Context) error {
	items, err := a.manager.GetUpcomingReminders(a.opCtx(ctx), 30)
	if err != nil {
		return err
	}
	a.printReminders(items, "Nothing coming up.")
	return nil
}

// Ack acknowledges a reminder; recurring ones roll forward to their next
// occurrence.
func (a *App) Ack(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: ack <reminderId>")
		return nil
	}

	reminder, err := a.manager.AcknowledgeReminder(a.opCtx(ctx), args[0])
	if err != nil {
		return err
	}
	if reminder.Type == models.ReminderRecurring {
		printlnFn("Acknowledged. Next due", reminder.DueDate.Format("2006-01-02"))
	} else {
		printlnFn("Acknowledged.")
	}
	return nil
}

func (a *App) printReminders(items []models.Reminder, empty string) {
	if len(items) == 0 {
		printlnFn(empty)
		return
	}
	for _, r := range items {
		line := r.Title + " - due " + r.DueDate.Format("2006-01-02")
		if r.Type == models.ReminderRecurring {
			line += fmt.Sprintf(" (repeats every %d %s)", r.RecurringValue, strings.ToLower(string(r.RecurringUnit)))
		}
		if r.IsAcknowledged {
			line += " [done]"
		}
		printlnFn(r.ID, "|", line)
	}
}
