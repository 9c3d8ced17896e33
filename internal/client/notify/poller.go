package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/logging"
	"github.com/dmitrijs2005/keepintouch/internal/models"
)

// Store is the slice of the storage manager the poller reads from.
type Store interface {
	GetDueReminders(ctx context.Context) ([]models.Reminder, error)
	GetContact(ctx context.Context, id string) (*models.Contact, error)
}

// startupDelay gives the REPL a moment to print its banner before the first
// check fires.
const startupDelay = 5 * time.Second

// Poller periodically checks the active store for due reminders and raises a
// local notification. Stopping cancels future ticks only; an in-flight check
// finishes on its own.
type Poller struct {
	store    Store
	notifier Notifier
	logger   logging.Logger
	interval time.Duration
	// ctxFn decorates the context for store calls so the check runs as the
	// logged-in user once the client switches to the remote store.
	ctxFn func(context.Context) context.Context
}

func NewPoller(store Store, notifier Notifier, logger logging.Logger,
	interval time.Duration, ctxFn func(context.Context) context.Context) *Poller {
	if ctxFn == nil {
		ctxFn = func(ctx context.Context) context.Context { return ctx }
	}
	return &Poller{
		store:    store,
		notifier: notifier,
		logger:   logger,
		interval: interval,
		ctxFn:    ctxFn,
	}
}

// Start runs the poll loop until ctx is cancelled: once shortly after start,
// then on every interval tick.
func (p *Poller) Start(ctx context.Context) {
	first := time.NewTimer(startupDelay)
	defer first.Stop()

	select {
	case <-first.C:
		p.CheckOnce(ctx)
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.CheckOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// CheckOnce performs one due-reminder check and raises at most one
// notification.
func (p *Poller) CheckOnce(ctx context.Context) {
	sctx := p.ctxFn(ctx)

	due, err := p.store.GetDueReminders(sctx)
	if err != nil {
		p.logger.Warn(ctx, "reminder check failed", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	var title, body string
	if len(due) == 1 {
		r := due[0]
		title = "Reminder: " + r.Title
		body = "For " + p.contactName(sctx, r.ContactID)
		if r.Description != "" {
			body += " - " + r.Description
		}
	} else {
		title = fmt.Sprintf("%d Reminders Due", len(due))
		body = fmt.Sprintf("You have %d reminders that need your attention.", len(due))
	}

	if err := p.notifier.Notify(ctx, title, body); err != nil {
		p.logger.Warn(ctx, "failed to show notification", "error", err)
	}
}

func (p *Poller) contactName(ctx context.Context, contactID string) string {
	contact, err := p.store.GetContact(ctx, contactID)
	if err != nil {
		return "a contact"
	}
	return contact.Name
}
