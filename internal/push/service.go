package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/logging"
	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/dmitrijs2005/keepintouch/internal/server/subscriptions"
)

// inactiveRetention is how long a deactivated subscription row is kept
// before the cleanup sweep removes it.
const inactiveRetention = 30 * 24 * time.Hour

// Result summarizes one fan-out to a user's subscriptions.
type Result struct {
	Success int
	Failed  int
	Errors  []string
}

// Service delivers notifications to every active subscription of a user and
// maintains subscription health: endpoints reported gone by the push service
// are deactivated, successful deliveries stamp the dedup timestamp.
type Service struct {
	vapid  VAPIDConfig
	sender Sender
	subs   subscriptions.Repository
	logger logging.Logger
	nowFn  func() time.Time
}

func NewService(vapid VAPIDConfig, sender Sender, subs subscriptions.Repository, logger logging.Logger) *Service {
	return &Service{
		vapid:  vapid,
		sender: sender,
		subs:   subs,
		logger: logger,
		nowFn:  time.Now,
	}
}

// VAPIDPublicKey exposes the public key for subscription endpoints.
func (s *Service) VAPIDPublicKey() string { return s.vapid.PublicKey }

// Configured reports whether the service holds usable VAPID keys.
func (s *Service) Configured() bool { return s.vapid.Configured() }

// SendToUser delivers the payload to every active subscription of the user.
// Per-subscription deliveries run concurrently and are awaited jointly; one
// failing endpoint never blocks the others. Delivery failures are recorded
// in the Result rather than returned, so a partial fan-out still reports
// what got through.
func (s *Service) SendToUser(ctx context.Context, userID string, p Payload) Result {
	var res Result
	if err := s.vapid.validate(); err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	subs, err := s.subs.ActiveByUser(ctx, userID)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("loading subscriptions: %v", err))
		return res
	}
	if len(subs) == 0 {
		return res
	}

	body, err := json.Marshal(p)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("encoding payload: %v", err))
		return res
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i := range subs {
		wg.Add(1)
		go func(sub *models.PushSubscription) {
			defer wg.Done()
			status, err := s.sender.Send(ctx, sub, body)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Failed++
				res.Errors = append(res.Errors, fmt.Sprintf("endpoint %s: %v", sub.Endpoint, err))
			case gone(status):
				res.Failed++
				s.deactivate(ctx, sub)
			case status >= 400:
				res.Failed++
				res.Errors = append(res.Errors, fmt.Sprintf("endpoint %s: push service returned %d", sub.Endpoint, status))
			default:
				res.Success++
				s.stamp(ctx, sub)
			}
		}(&subs[i])
	}
	wg.Wait()
	return res
}

func (s *Service) stamp(ctx context.Context, sub *models.PushSubscription) {
	if err := s.subs.StampNotification(ctx, sub.ID, s.nowFn()); err != nil {
		s.logger.Warn(ctx, "failed to stamp notification time",
			"subscription_id", sub.ID, "error", err)
	}
}

func (s *Service) deactivate(ctx context.Context, sub *models.PushSubscription) {
	if err := s.subs.DeactivateByID(ctx, sub.ID); err != nil {
		s.logger.Warn(ctx, "failed to deactivate expired subscription",
			"subscription_id", sub.ID, "error", err)
		return
	}
	s.logger.Info(ctx, "deactivated expired subscription",
		"subscription_id", sub.ID, "endpoint", sub.Endpoint)
}

// SendReminderNotification sends the single-reminder payload.
func (s *Service) SendReminderNotification(ctx context.Context, userID string, r *models.Reminder, contactName string) Result {
	return s.SendToUser(ctx, userID, ReminderPayload(r, contactName))
}

// SendMultipleRemindersNotification sends one aggregate payload for count
// due reminders instead of count separate notifications.
func (s *Service) SendMultipleRemindersNotification(ctx context.Context, userID string, count int) Result {
	return s.SendToUser(ctx, userID, DigestPayload(count))
}

// SendTestNotification sends the diagnostic payload used by the test endpoint.
func (s *Service) SendTestNotification(ctx context.Context, userID string) Result {
	return s.SendToUser(ctx, userID, TestPayload())
}

// CleanupInactive removes subscriptions that have been inactive longer than
// the retention window and returns how many rows were deleted.
func (s *Service) CleanupInactive(ctx context.Context) (int64, error) {
	cutoff := s.nowFn().Add(-inactiveRetention)
	n, err := s.subs.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up subscriptions: %w", err)
	}
	if n > 0 {
		s.logger.Info(ctx, "cleaned up inactive subscriptions", "deleted", n)
	}
	return n, nil
}
