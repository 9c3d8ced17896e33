package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// getSimpleText is an indirection used to facilitate testing.
var getSimpleText = GetSimpleText

// Contacts lists every contact with its last interaction and reminder counts.
func (a *App) Contacts(ctx context.Context) error {
	summaries, err := a.manager.GetContactsWithLastInteraction(a.opCtx(ctx))
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		printlnFn("No contacts yet. Use 'addcontact' to add one.")
		return nil
	}

	for _, s := range summaries {
		line := s.Name
		if s.Group != "" {
			line += " [" + s.Group + "]"
		}
		if s.LastInteraction != nil {
			line += " - last seen " + s.TimeSinceLastSeen
		} else {
			line += " - never contacted"
		}
		if len(s.DueReminders) > 0 {
			line += fmt.Sprintf(" - %d due", len(s.DueReminders))
		}
		if len(s.UpcomingReminders) > 0 {
			line += fmt.Sprintf(" - %d upcoming", len(s.UpcomingReminders))
		}
		printlnFn(s.ID, "|", line)
	}
	return nil
}

func (a *App) AddContact(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	group, err := getSimpleText(a.reader, "Enter group (optional)", os.Stdout)
	if err != nil {
		return err
	}

	contact, err := a.manager.AddContact(a.opCtx(ctx), name, group)
	if err != nil {
		return err
	}
	printlnFn("Added contact", contact.Name, "with id", contact.ID)
	return nil
}

func (a *App) DeleteContact(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: delcontact <id>")
		return nil
	}
	id := strings.TrimSpace(args[0])

	if err := a.manager.DeleteContact(a.opCtx(ctx), id); err != nil {
		return err
	}
	printlnFn("Deleted contact", id)
	return nil
}
