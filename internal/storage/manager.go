package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/models"
)

// Manager is the single entry point UI code talks to. Every operation is
// routed to the remote store when the session is authenticated and to the
// local store otherwise; this is the only place in the system that inspects
// auth state. Switching auth state never migrates data by itself —
// MigrateToCloud is an explicit call.
type Manager struct {
	local  LocalStore
	remote RemoteStore

	mu            sync.RWMutex
	authenticated bool
}

// NewManager builds a facade over the two stores. Instances are constructed
// by the composition root and injected; there is no package-level singleton.
func NewManager(local LocalStore, remote RemoteStore) *Manager {
	return &Manager{local: local, remote: remote}
}

// SetAuthenticated switches which store subsequent operations hit.
func (m *Manager) SetAuthenticated(authenticated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = authenticated
}

// IsAuthenticated reports the cached auth flag.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

func (m *Manager) store() Store {
	if m.IsAuthenticated() {
		return m.remote
	}
	return m.local
}

func (m *Manager) GetContactsWithLastInteraction(ctx context.Context) ([]models.ContactSummary, error) {
	return m.store().ContactsWithLastInteraction(ctx)
}

func (m *Manager) AddContact(ctx context.Context, name, group string) (*models.Contact, error) {
	return m.store().AddContact(ctx, name, group)
}

func (m *Manager) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	return m.store().Contact(ctx, id)
}

func (m *Manager) DeleteContact(ctx context.Context, id string) error {
	return m.store().DeleteContact(ctx, id)
}

func (m *Manager) AddInteraction(ctx context.Context, contactID string, date *time.Time, note string) (*models.Interaction, error) {
	return m.store().AddInteraction(ctx, contactID, date, note)
}

func (m *Manager) UpdateInteraction(ctx context.Context, id string, upd InteractionUpdate) (*models.Interaction, error) {
	return m.store().UpdateInteraction(ctx, id, upd)
}

func (m *Manager) DeleteInteraction(ctx context.Context, id string) error {
	return m.store().DeleteInteraction(ctx, id)
}

func (m *Manager) GetContactInteractions(ctx context.Context, contactID string) ([]models.Interaction, error) {
	return m.store().ContactInteractions(ctx, contactID)
}

func (m *Manager) AddReminder(ctx context.Context, in CreateReminderInput) (*models.Reminder, error) {
	return m.store().AddReminder(ctx, in)
}

func (m *Manager) UpdateReminder(ctx context.Context, id string, upd ReminderUpdate) (*models.Reminder, error) {
	return m.store().UpdateReminder(ctx, id, upd)
}

func (m *Manager) DeleteReminder(ctx context.Context, id string) error {
	return m.store().DeleteReminder(ctx, id)
}

func (m *Manager) AcknowledgeReminder(ctx context.Context, id string) (*models.Reminder, error) {
	return m.store().AcknowledgeReminder(ctx, id)
}

func (m *Manager) GetContactReminders(ctx context.Context, contactID string) ([]models.Reminder, error) {
	return m.store().ContactReminders(ctx, contactID)
}

func (m *Manager) GetAllReminders(ctx context.Context) ([]models.Reminder, error) {
	return m.store().AllReminders(ctx)
}

func (m *Manager) GetDueReminders(ctx context.Context) ([]models.Reminder, error) {
	return m.store().DueReminders(ctx)
}

func (m *Manager) GetUpcomingReminders(ctx context.Context, withinDays int) ([]models.Reminder, error) {
	return m.store().UpcomingReminders(ctx, withinDays)
}

// HasLocalData reports whether the (unauthenticated) local blob holds
// anything worth migrating.
func (m *Manager) HasLocalData() bool {
	return m.local.HasData()
}

// ClearLocalData drops the local blob.
func (m *Manager) ClearLocalData() error {
	return m.local.Clear()
}

// MigrateToCloud copies everything in the local blob into the remote store
// under the acting user and then clears the blob. The caller must be
// authenticated. The copy is not transactional: on a partial failure the
// blob is left in place so the user can retry, at the cost of possible
// duplicate remote rows (remote creation always mints fresh IDs).
func (m *Manager) MigrateToCloud(ctx context.Context) error {
	if !m.IsAuthenticated() {
		return fmt.Errorf("%w: must be authenticated to migrate data", common.ErrUnauthorized)
	}

	data := m.local.Data()
	if data.Empty() {
		return nil
	}

	if err := m.remote.ImportLocal(ctx, data); err != nil {
		return fmt.Errorf("migrating local data: %w", err)
	}
	return m.local.Clear()
}
