// Package checker implements the periodic reminder dispatch run: walk every
// user holding an active push subscription, find their due reminders and
// deliver a notification, with a coarse per-user dedup window so a user is
// not pinged again within the hour.
package checker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/keepintouch/internal/auth"
	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/logging"
	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/dmitrijs2005/keepintouch/internal/push"
	"github.com/dmitrijs2005/keepintouch/internal/server/subscriptions"
)

const (
	// dedupWindow suppresses a second notification to the same user within
	// this interval. The guard is deliberately coarse: it keys on the last
	// delivery to the user, not on which reminders were included, so a
	// reminder that stays unacknowledged is re-notified on a later run.
	dedupWindow = time.Hour

	defaultConcurrency = 5
)

// Store is the slice of the remote store a dispatch run needs: the user's
// reminders due as of the pass instant (inclusive boundary) and contact
// lookups for notification bodies.
type Store interface {
	RemindersDueAt(ctx context.Context, at time.Time) ([]models.Reminder, error)
	Contact(ctx context.Context, id string) (*models.Contact, error)
}

// Pusher is the notification side of the dispatch run.
type Pusher interface {
	Configured() bool
	SendReminderNotification(ctx context.Context, userID string, r *models.Reminder, contactName string) push.Result
	SendMultipleRemindersNotification(ctx context.Context, userID string, count int) push.Result
	CleanupInactive(ctx context.Context) (int64, error)
}

// Result summarizes one dispatch run.
type Result struct {
	UsersChecked  int
	RemindersSent int
	Errors        []string
}

type Checker struct {
	store       Store
	subs        subscriptions.Repository
	pusher      Pusher
	logger      logging.Logger
	nowFn       func() time.Time
	concurrency int
}

func New(store Store, subs subscriptions.Repository, pusher Pusher, logger logging.Logger) *Checker {
	return &Checker{
		store:       store,
		subs:        subs,
		pusher:      pusher,
		logger:      logger,
		nowFn:       time.Now,
		concurrency: defaultConcurrency,
	}
}

// CheckAndSendReminders runs one dispatch pass. Users are processed with
// bounded concurrency; a failure for one user is recorded and never aborts
// the others. After the pass, long-inactive subscriptions are swept.
func (c *Checker) CheckAndSendReminders(ctx context.Context) (Result, error) {
	var res Result
	if !c.pusher.Configured() {
		res.Errors = append(res.Errors, common.ErrVAPIDNotConfigured.Error())
		return res, nil
	}

	userIDs, err := c.subs.UserIDsWithActive(ctx)
	if err != nil {
		err = fmt.Errorf("listing users with subscriptions: %w", err)
		res.Errors = append(res.Errors, err.Error())
		return res, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			sent, errs := c.checkUser(gctx, userID)
			mu.Lock()
			res.UsersChecked++
			res.RemindersSent += sent
			res.Errors = append(res.Errors, errs...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	if _, err := c.pusher.CleanupInactive(ctx); err != nil {
		res.Errors = append(res.Errors, err.Error())
	}

	c.logger.Info(ctx, "reminder check finished",
		"users_checked", res.UsersChecked,
		"reminders_sent", res.RemindersSent,
		"errors", len(res.Errors))
	return res, nil
}

// checkUser processes one user: skip if recently notified, otherwise load
// due reminders and send either a single detailed notification or one
// aggregate notification covering all of them.
func (c *Checker) checkUser(ctx context.Context, userID string) (sent int, errs []string) {
	now := c.nowFn()

	recent, err := c.subs.HasRecentNotification(ctx, userID, now.Add(-dedupWindow))
	if err != nil {
		return 0, []string{fmt.Sprintf("user %s: checking last notification: %v", userID, err)}
	}
	if recent {
		return 0, nil
	}

	uctx := auth.WithUserID(ctx, userID)
	due, err := c.store.RemindersDueAt(uctx, now)
	if err != nil {
		return 0, []string{fmt.Sprintf("user %s: loading due reminders: %v", userID, err)}
	}
	if len(due) == 0 {
		return 0, nil
	}

	var pr push.Result
	if len(due) == 1 {
		r := &due[0]
		pr = c.pusher.SendReminderNotification(ctx, userID, r, c.contactName(uctx, r.ContactID))
	} else {
		pr = c.pusher.SendMultipleRemindersNotification(ctx, userID, len(due))
	}
	for _, e := range pr.Errors {
		errs = append(errs, fmt.Sprintf("user %s: %s", userID, e))
	}
	if pr.Success > 0 {
		sent = len(due)
	}
	return sent, errs
}

func (c *Checker) contactName(ctx context.Context, contactID string) string {
	contact, err := c.store.Contact(ctx, contactID)
	if err != nil {
		return "a contact"
	}
	return contact.Name
}
