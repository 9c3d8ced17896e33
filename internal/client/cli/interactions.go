package cli

import (
	"context"
	"os"
	"time"
)

// LogInteraction records a touchpoint with a contact. The contact ID comes
// from the first argument or an interactive prompt; the date defaults to
// today.
func (a *App) LogInteraction(ctx context.Context, args []string) error {
	contactID, err := a.argOrPrompt(args, "Enter contact id")
	if err != nil {
		return err
	}

	date, err := GetDate(a.reader, "Enter date", time.Now(), os.Stdout)
	if err != nil {
		return err
	}
	note, err := GetMultiline(a.reader, "Enter note (optional)", os.Stdout)
	if err != nil {
		return err
	}

	interaction, err := a.manager.AddInteraction(a.opCtx(ctx), contactID, &date, note)
	if err != nil {
		return err
	}
	printlnFn("Logged interaction", interaction.ID, "on", interaction.Date.Format("2006-01-02"))
	return nil
}

// Interactions lists a contact's interactions, newest first.
func (a *App) Interactions(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: interactions <contactId>")
		return nil
	}

	items, err := a.manager.GetContactInteractions(a.opCtx(ctx), args[0])
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printlnFn("No interactions logged for this contact.")
		return nil
	}
	for _, it := range items {
		line := it.Date.Format("2006-01-02")
		if it.Note != "" {
			line += " - " + it.Note
		}
		printlnFn(it.ID, "|", line)
	}
	return nil
}

// argOrPrompt returns the first argument when present, otherwise prompts for
// the value interactively.
func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return getSimpleText(a.reader, prompt, os.Stdout)
}
