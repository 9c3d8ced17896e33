package subscriptions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/models"
)

// Repository is the push-subscription lifecycle store: client subscribe and
// unsubscribe, delivery bookkeeping, and the sweep of long-dead endpoints.
type Repository interface {
	// Upsert creates a subscription or, when (userID, endpoint) already
	// exists, updates the keys in place and re-activates it.
	Upsert(ctx context.Context, sub *models.PushSubscription) (*models.PushSubscription, error)

	// Deactivate marks a user's subscription for the endpoint inactive and
	// returns how many rows it touched.
	Deactivate(ctx context.Context, userID, endpoint string) (int64, error)

	// DeactivateByID marks one subscription inactive; used when the push
	// provider reports the endpoint permanently gone.
	DeactivateByID(ctx context.Context, id string) error

	ActiveByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)

	// UserIDsWithActive enumerates users holding at least one active
	// subscription, the population a dispatch run walks.
	UserIDsWithActive(ctx context.Context) ([]string, error)

	// HasRecentNotification reports whether any of the user's active
	// subscriptions was notified at or after since.
	HasRecentNotification(ctx context.Context, userID string, since time.Time) (bool, error)

	// StampNotification records a successful delivery on one subscription.
	StampNotification(ctx context.Context, id string, at time.Time) error

	// DeleteInactiveBefore hard-deletes subscriptions that have been
	// inactive since before cutoff. Returns the number deleted.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
