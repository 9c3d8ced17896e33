package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/models"
)

// fakeLocal counts calls so tests can tell which store the manager routed to.
type fakeLocal struct {
	Store

	data     models.LocalData
	cleared  bool
	clearErr error
	calls    int
}

func (f *fakeLocal) AddContact(ctx context.Context, name, group string) (*models.Contact, error) {
	f.calls++
	return &models.Contact{ID: "local-1", Name: name}, nil
}

func (f *fakeLocal) DueReminders(ctx context.Context) ([]models.Reminder, error) {
	f.calls++
	return nil, nil
}

func (f *fakeLocal) Data() models.LocalData { return f.data }
func (f *fakeLocal) HasData() bool          { return !f.data.Empty() }
func (f *fakeLocal) Clear() error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = true
	f.data = models.LocalData{}
	return nil
}

type fakeRemote struct {
	Store

	imported  *models.LocalData
	importErr error
	calls     int
}

func (f *fakeRemote) AddContact(ctx context.Context, name, group string) (*models.Contact, error) {
	f.calls++
	return &models.Contact{ID: "remote-1", Name: name}, nil
}

func (f *fakeRemote) DueReminders(ctx context.Context) ([]models.Reminder, error) {
	f.calls++
	return nil, nil
}

func (f *fakeRemote) ImportLocal(ctx context.Context, data models.LocalData) error {
	if f.importErr != nil {
		return f.importErr
	}
	f.imported = &data
	return nil
}

func newTestManager() (*Manager, *fakeLocal, *fakeRemote) {
	local := &fakeLocal{}
	remote := &fakeRemote{}
	return NewManager(local, remote), local, remote
}

func sampleLocalData() models.LocalData {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.LocalData{
		Contacts:     []models.Contact{{ID: "c-1", Name: "Alice", CreatedAt: now}},
		Interactions: []models.Interaction{{ID: "i-1", ContactID: "c-1", Date: now}},
		Reminders:    []models.Reminder{{ID: "r-1", ContactID: "c-1", Title: "Call", DueDate: now, Type: models.ReminderOneTime}},
	}
}

func TestManager_RoutesToLocalByDefault(t *testing.T) {
	m, local, remote := newTestManager()

	got, err := m.AddContact(context.Background(), "Alice", "")
	if err != nil {
		t.Fatalf("AddContact error: %v", err)
	}
	if got.ID != "local-1" || local.calls != 1 || remote.calls != 0 {
		t.Fatalf("expected local routing, got %+v (local=%d remote=%d)", got, local.calls, remote.calls)
	}
}

func TestManager_RoutesToRemoteWhenAuthenticated(t *testing.T) {
	m, local, remote := newTestManager()
	m.SetAuthenticated(true)

	got, err := m.AddContact(context.Background(), "Alice", "")
	if err != nil {
		t.Fatalf("AddContact error: %v", err)
	}
	if got.ID != "remote-1" || remote.calls != 1 || local.calls != 0 {
		t.Fatalf("expected remote routing, got %+v (local=%d remote=%d)", got, local.calls, remote.calls)
	}
}

func TestManager_LogoutSwitchesBack(t *testing.T) {
	m, local, remote := newTestManager()

	m.SetAuthenticated(true)
	if _, err := m.GetDueReminders(context.Background()); err != nil {
		t.Fatalf("GetDueReminders error: %v", err)
	}
	m.SetAuthenticated(false)
	if _, err := m.GetDueReminders(context.Background()); err != nil {
		t.Fatalf("GetDueReminders error: %v", err)
	}

	if remote.calls != 1 || local.calls != 1 {
		t.Fatalf("unexpected routing: local=%d remote=%d", local.calls, remote.calls)
	}
	if m.IsAuthenticated() {
		t.Fatalf("expected unauthenticated state")
	}
}

func TestMigrateToCloud_RequiresAuth(t *testing.T) {
	m, local, _ := newTestManager()
	local.data = sampleLocalData()

	err := m.MigrateToCloud(context.Background())
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if local.cleared {
		t.Fatalf("blob must stay in place on failed migration")
	}
}

func TestMigrateToCloud_EmptyBlobIsNoOp(t *testing.T) {
	m, local, remote := newTestManager()
	m.SetAuthenticated(true)

	if err := m.MigrateToCloud(context.Background()); err != nil {
		t.Fatalf("MigrateToCloud error: %v", err)
	}
	if remote.imported != nil || local.cleared {
		t.Fatalf("empty blob must not trigger import or clear")
	}
}

func TestMigrateToCloud_ImportsAndClears(t *testing.T) {
	m, local, remote := newTestManager()
	m.SetAuthenticated(true)
	local.data = sampleLocalData()

	if err := m.MigrateToCloud(context.Background()); err != nil {
		t.Fatalf("MigrateToCloud error: %v", err)
	}
	if remote.imported == nil {
		t.Fatalf("expected import call")
	}
	if len(remote.imported.Contacts) != 1 || len(remote.imported.Interactions) != 1 || len(remote.imported.Reminders) != 1 {
		t.Fatalf("unexpected imported data: %+v", remote.imported)
	}
	if !local.cleared || m.HasLocalData() {
		t.Fatalf("blob must be cleared after migration")
	}
}

func TestMigrateToCloud_ImportFailureKeepsBlob(t *testing.T) {
	m, local, remote := newTestManager()
	m.SetAuthenticated(true)
	local.data = sampleLocalData()
	remote.importErr = errors.New("connection reset")

	err := m.MigrateToCloud(context.Background())
	if err == nil || !errors.Is(err, remote.importErr) {
		t.Fatalf("want wrapped import error, got %v", err)
	}
	if local.cleared || !m.HasLocalData() {
		t.Fatalf("blob must survive a failed import")
	}
}

func TestSortContactSummaries(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -1)
	stale := now.AddDate(0, -2, 0)

	s := []models.ContactSummary{
		{Contact: models.Contact{Name: "Recent", CreatedAt: now}, LastInteraction: &recent},
		{Contact: models.Contact{Name: "NeverB", CreatedAt: now.Add(time.Hour)}},
		{Contact: models.Contact{Name: "Stale", CreatedAt: now}, LastInteraction: &stale},
		{Contact: models.Contact{Name: "NeverA", CreatedAt: now}},
	}
	SortContactSummaries(s)

	want := []string{"NeverA", "NeverB", "Stale", "Recent"}
	for i, name := range want {
		if s[i].Name != name {
			t.Fatalf("position %d: want %s, got %s", i, name, s[i].Name)
		}
	}
}
