package checker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/keepintouch/internal/auth"
	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/logging"
	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/dmitrijs2005/keepintouch/internal/push"
	"github.com/dmitrijs2005/keepintouch/internal/server/subscriptions"
)

type fakeStore struct {
	due      map[string][]models.Reminder
	contacts map[string]*models.Contact
	dueErr   error

	mu     sync.Mutex
	lastAt time.Time
}

func (f *fakeStore) RemindersDueAt(ctx context.Context, at time.Time) ([]models.Reminder, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, common.ErrUnauthorized
	}
	f.mu.Lock()
	f.lastAt = at
	f.mu.Unlock()
	return f.due[userID], nil
}

func (f *fakeStore) Contact(_ context.Context, id string) (*models.Contact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return c, nil
}

type fakeSubs struct {
	users     []string
	notified  map[string]time.Time // userID -> last delivery
	usersErr  error
	recentErr error
}

func (f *fakeSubs) UserIDsWithActive(_ context.Context) ([]string, error) {
	return f.users, f.usersErr
}

func (f *fakeSubs) HasRecentNotification(_ context.Context, userID string, since time.Time) (bool, error) {
	if f.recentErr != nil {
		return false, f.recentErr
	}
	at, ok := f.notified[userID]
	return ok && !at.Before(since), nil
}

func (f *fakeSubs) Upsert(_ context.Context, sub *models.PushSubscription) (*models.PushSubscription, error) {
	return sub, nil
}
func (f *fakeSubs) Deactivate(_ context.Context, _, _ string) (int64, error) { return 0, nil }
func (f *fakeSubs) DeactivateByID(_ context.Context, _ string) error         { return nil }
func (f *fakeSubs) ActiveByUser(_ context.Context, _ string) ([]models.PushSubscription, error) {
	return nil, nil
}
func (f *fakeSubs) StampNotification(_ context.Context, _ string, _ time.Time) error { return nil }
func (f *fakeSubs) DeleteInactiveBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type sentSingle struct {
	userID      string
	reminderID  string
	contactName string
}

type sentDigest struct {
	userID string
	count  int
}

type fakePusher struct {
	mu         sync.Mutex
	configured bool
	result     push.Result
	singles    []sentSingle
	digests    []sentDigest
	cleanups   int
}

func (f *fakePusher) Configured() bool { return f.configured }

func (f *fakePusher) SendReminderNotification(_ context.Context, userID string, r *models.Reminder, contactName string) push.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singles = append(f.singles, sentSingle{userID, r.ID, contactName})
	return f.result
}

func (f *fakePusher) SendMultipleRemindersNotification(_ context.Context, userID string, count int) push.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.digests = append(f.digests, sentDigest{userID, count})
	return f.result
}

func (f *fakePusher) CleanupInactive(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	return 0, nil
}

func reminderDue(id string) models.Reminder {
	return models.Reminder{ID: id, ContactID: "c-" + id, Title: "t-" + id,
		DueDate: time.Now().Add(-24 * time.Hour)}
}

func newChecker(t *testing.T, store *fakeStore, subs subscriptions.Repository, pusher *fakePusher) *Checker {
	t.Helper()
	return New(store, subs, pusher, logging.NewNopLogger())
}

func TestCheckAndSendReminders_SingleReminderUsesDetailedPayload(t *testing.T) {
	store := &fakeStore{
		due:      map[string][]models.Reminder{"u1": {reminderDue("r1")}},
		contacts: map[string]*models.Contact{"c-r1": {ID: "c-r1", Name: "Alice"}},
	}
	subs := &fakeSubs{users: []string{"u1"}}
	pusher := &fakePusher{configured: true, result: push.Result{Success: 1}}

	res, err := newChecker(t, store, subs, pusher).CheckAndSendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.UsersChecked)
	assert.Equal(t, 1, res.RemindersSent)
	assert.Empty(t, res.Errors)
	require.Len(t, pusher.singles, 1)
	assert.Equal(t, sentSingle{"u1", "r1", "Alice"}, pusher.singles[0])
	assert.Empty(t, pusher.digests)
}

func TestCheckAndSendReminders_MultipleDueSendsOneDigest(t *testing.T) {
	store := &fakeStore{
		due: map[string][]models.Reminder{
			"u1": {reminderDue("r1"), reminderDue("r2"), reminderDue("r3")},
		},
	}
	subs := &fakeSubs{users: []string{"u1"}}
	pusher := &fakePusher{configured: true, result: push.Result{Success: 1}}

	res, err := newChecker(t, store, subs, pusher).CheckAndSendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.RemindersSent)
	assert.Empty(t, pusher.singles)
	require.Len(t, pusher.digests, 1)
	assert.Equal(t, sentDigest{"u1", 3}, pusher.digests[0])
}

func TestCheckAndSendReminders_RecentlyNotifiedUserSkipped(t *testing.T) {
	store := &fakeStore{
		due: map[string][]models.Reminder{"u1": {reminderDue("r1")}},
	}
	subs := &fakeSubs{
		users:    []string{"u1"},
		notified: map[string]time.Time{"u1": time.Now().Add(-10 * time.Minute)},
	}
	pusher := &fakePusher{configured: true, result: push.Result{Success: 1}}

	res, err := newChecker(t, store, subs, pusher).CheckAndSendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.UsersChecked)
	assert.Equal(t, 0, res.RemindersSent)
	assert.Empty(t, pusher.singles)
	assert.Empty(t, pusher.digests)
}

func TestCheckAndSendReminders_StaleNotificationDoesNotSuppress(t *testing.T) {
	store := &fakeStore{
		due:      map[string][]models.Reminder{"u1": {reminderDue("r1")}},
		contacts: map[string]*models.Contact{"c-r1": {ID: "c-r1", Name: "Alice"}},
	}
	subs := &fakeSubs{
		users:    []string{"u1"},
		notified: map[string]time.Time{"u1": time.Now().Add(-2 * time.Hour)},
	}
	pusher := &fakePusher{configured: true, result: push.Result{Success: 1}}

	res, err := newChecker(t, store, subs, pusher).CheckAndSendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.RemindersSent)
}

func TestCheckAndSendReminders_NoDueReminders(t *testing.T) {
	store := &fakeStore{due: map[string][]models.Reminder{}}
	subs := &fakeSubs{users: []string{"u1", "u2"}}
	pusher := &fakePusher{configured: true}

	res, err := newChecker(t, store, subs, pusher).CheckAndSendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.UsersChecked)
	assert.Equal(t, 0, res.RemindersSent)
	assert.Equal(t, 1, pusher.cleanups)
}

func TestCheckAndSendReminders_QueriesDueAtPassInstant(t *testing.T) {
	store := &fakeStore{
		due:      map[string][]models.Reminder{"u1": {reminderDue("r1")}},
		contacts: map[string]*models.Contact{"c-r1": {ID: "c-r1", Name: "Alice"}},
	}
	subs := &fakeSubs{users: []string{"u1"}}
	pusher := &fakePusher{configured: true, result: push.Result{Success: 1}}

	c := newChecker(t, store, subs, pusher)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.nowFn = func() time.Time { return now }

	_, err := c.CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now, store.lastAt)
}

func TestCheckAndSendReminders_OneFailingUserDoesNotAbortOthers(t *testing.T) {
	store := &fakeStore{
		due: map[string][]models.Reminder{
			"u1": {reminderDue("r1"), reminderDue("r2")},
			"u2": {reminderDue("r3"), reminderDue("r4")},
		},
	}
	subs := &fakeSubs{users: []string{"u1", "u2"}, recentErr: nil}
	pusher := &fakePusher{configured: true, result: push.Result{Success: 1}}

	// u1's dedup lookup fails; u2 must still be processed.
	subsFailing := &failingRecentSubs{fakeSubs: subs, failFor: "u1"}

	res, err := newChecker(t, store, subsFailing, pusher).CheckAndSendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.UsersChecked)
	assert.Equal(t, 2, res.RemindersSent)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "u1")
}

type failingRecentSubs struct {
	*fakeSubs
	failFor string
}

func (f *failingRecentSubs) HasRecentNotification(ctx context.Context, userID string, since time.Time) (bool, error) {
	if userID == f.failFor {
		return false, errors.New("db down")
	}
	return f.fakeSubs.HasRecentNotification(ctx, userID, since)
}

func TestCheckAndSendReminders_VAPIDNotConfigured(t *testing.T) {
	store := &fakeStore{}
	subs := &fakeSubs{users: []string{"u1"}}
	pusher := &fakePusher{configured: false}

	res, err := newChecker(t, store, subs, pusher).CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], common.ErrVAPIDNotConfigured.Error())
	assert.Zero(t, res.UsersChecked)
}

func TestCheckAndSendReminders_FailedDeliveryNotCounted(t *testing.T) {
	store := &fakeStore{
		due:      map[string][]models.Reminder{"u1": {reminderDue("r1")}},
		contacts: map[string]*models.Contact{"c-r1": {ID: "c-r1", Name: "Alice"}},
	}
	subs := &fakeSubs{users: []string{"u1"}}
	pusher := &fakePusher{configured: true, result: push.Result{Failed: 1, Errors: []string{"endpoint x: boom"}}}

	res, err := newChecker(t, store, subs, pusher).CheckAndSendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.RemindersSent)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "boom")
}
