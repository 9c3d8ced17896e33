// Package localstore persists contacts, interactions and reminders for
// unauthenticated sessions in a single JSON blob on disk. Every mutation
// reads the whole blob, modifies it and writes it back; there is no partial
// write. A missing or unparseable blob reads as an empty data set.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/dmitrijs2005/keepintouch/internal/reminder"
	"github.com/dmitrijs2005/keepintouch/internal/storage"
	"github.com/dmitrijs2005/keepintouch/internal/timex"
	"github.com/google/uuid"
)

// Store is the local blob store. Operations never suspend; the mutex guards
// the read-modify-write cycle within this process only — concurrent writers
// from other processes race and the loser's write is lost, as accepted in
// the design.
type Store struct {
	path  string
	mu    sync.Mutex
	nowFn func() time.Time
}

var _ storage.LocalStore = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path, nowFn: time.Now}
}

// load reads the blob. Read errors and corrupt JSON both yield an empty
// data set; corruption is never propagated as a fatal error.
func (s *Store) load() models.LocalData {
	var data models.LocalData
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.LocalData{}
	}
	return data
}

func (s *Store) save(data models.LocalData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding local data: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing local data: %w", err)
	}
	return nil
}

// Data returns the entire blob.
func (s *Store) Data() models.LocalData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// HasData reports whether the blob holds at least one entity.
func (s *Store) HasData() bool {
	d := s.Data()
	return !d.Empty()
}

// Clear removes the blob file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing local data: %w", err)
	}
	return nil
}

func (s *Store) AddContact(_ context.Context, name, group string) (*models.Contact, error) {
	name, err := storage.NormalizeRequired("name", name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	contact := models.Contact{
		ID:        uuid.NewString(),
		Name:      name,
		Group:     trimmed(group),
		CreatedAt: s.nowFn(),
	}
	data.Contacts = append(data.Contacts, contact)
	if err := s.save(data); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *Store) Contact(_ context.Context, id string) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	for i := range data.Contacts {
		if data.Contacts[i].ID == id {
			c := data.Contacts[i]
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *Store) DeleteContact(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	idx := -1
	for i := range data.Contacts {
		if data.Contacts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return common.ErrNotFound
	}

	data.Contacts = append(data.Contacts[:idx], data.Contacts[idx+1:]...)

	// cascade
	kept := data.Interactions[:0]
	for _, in := range data.Interactions {
		if in.ContactID != id {
			kept = append(kept, in)
		}
	}
	data.Interactions = kept

	keptR := data.Reminders[:0]
	for _, r := range data.Reminders {
		if r.ContactID != id {
			keptR = append(keptR, r)
		}
	}
	data.Reminders = keptR

	return s.save(data)
}

func (s *Store) AddInteraction(_ context.Context, contactID string, date *time.Time, note string) (*models.Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	if !containsContact(data.Contacts, contactID) {
		return nil, common.ErrNotFound
	}

	when := s.nowFn()
	if date != nil {
		when = *date
	}
	interaction := models.Interaction{
		ID:        uuid.NewString(),
		ContactID: contactID,
		Date:      when,
		Note:      trimmed(note),
	}
	data.Interactions = append(data.Interactions, interaction)
	if err := s.save(data); err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (s *Store) UpdateInteraction(_ context.Context, id string, upd storage.InteractionUpdate) (*models.Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	for i := range data.Interactions {
		if data.Interactions[i].ID != id {
			continue
		}
		if upd.Date != nil {
			data.Interactions[i].Date = *upd.Date
		}
		if upd.Note != nil {
			data.Interactions[i].Note = trimmed(*upd.Note)
		}
		if err := s.save(data); err != nil {
			return nil, err
		}
		out := data.Interactions[i]
		return &out, nil
	}
	return nil, common.ErrNotFound
}

func (s *Store) DeleteInteraction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	for i := range data.Interactions {
		if data.Interactions[i].ID == id {
			data.Interactions = append(data.Interactions[:i], data.Interactions[i+1:]...)
			return s.save(data)
		}
	}
	return common.ErrNotFound
}

func (s *Store) ContactInteractions(_ context.Context, contactID string) ([]models.Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	result := make([]models.Interaction, 0)
	for _, in := range data.Interactions {
		if in.ContactID == contactID {
			result = append(result, in)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (s *Store) AddReminder(_ context.Context, in storage.CreateReminderInput) (*models.Reminder, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	if !containsContact(data.Contacts, in.ContactID) {
		return nil, common.ErrNotFound
	}

	now := s.nowFn()
	r := models.Reminder{
		ID:             uuid.NewString(),
		ContactID:      in.ContactID,
		Title:          in.Title,
		Description:    in.Description,
		DueDate:        in.DueDate,
		Type:           in.Type,
		RecurringUnit:  in.RecurringUnit,
		RecurringValue: in.RecurringValue,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.NextDueDate = reminder.NextDue(&r)

	data.Reminders = append(data.Reminders, r)
	if err := s.save(data); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) UpdateReminder(_ context.Context, id string, upd storage.ReminderUpdate) (*models.Reminder, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	for i := range data.Reminders {
		if data.Reminders[i].ID != id {
			continue
		}
		r := &data.Reminders[i]
		upd.Apply(r, s.nowFn())
		if err := s.save(data); err != nil {
			return nil, err
		}
		out := *r
		return &out, nil
	}
	return nil, common.ErrNotFound
}

func (s *Store) DeleteReminder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	for i := range data.Reminders {
		if data.Reminders[i].ID == id {
			data.Reminders = append(data.Reminders[:i], data.Reminders[i+1:]...)
			return s.save(data)
		}
	}
	return common.ErrNotFound
}

func (s *Store) AcknowledgeReminder(_ context.Context, id string) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	for i := range data.Reminders {
		if data.Reminders[i].ID != id {
			continue
		}
		reminder.Acknowledge(&data.Reminders[i], s.nowFn())
		if err := s.save(data); err != nil {
			return nil, err
		}
		out := data.Reminders[i]
		return &out, nil
	}
	return nil, common.ErrNotFound
}

func (s *Store) ContactReminders(_ context.Context, contactID string) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	result := make([]models.Reminder, 0)
	for _, r := range data.Reminders {
		if r.ContactID == contactID {
			result = append(result, r)
		}
	}
	sortByDueDate(result)
	return result, nil
}

func (s *Store) AllReminders(_ context.Context) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	result := append([]models.Reminder(nil), data.Reminders...)
	sortByDueDate(result)
	return result, nil
}

func (s *Store) DueReminders(_ context.Context) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	data := s.load()
	result := make([]models.Reminder, 0)
	for _, r := range data.Reminders {
		if !r.IsAcknowledged && r.DueDate.Before(now) {
			result = append(result, r)
		}
	}
	sortByDueDate(result)
	return result, nil
}

func (s *Store) UpcomingReminders(_ context.Context, withinDays int) ([]models.Reminder, error) {
	if withinDays <= 0 {
		withinDays = reminder.UpcomingWindowDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	cutoff := now.AddDate(0, 0, withinDays)
	data := s.load()
	result := make([]models.Reminder, 0)
	for _, r := range data.Reminders {
		if !r.IsAcknowledged && r.DueDate.After(now) && r.DueDate.Before(cutoff) {
			result = append(result, r)
		}
	}
	sortByDueDate(result)
	return result, nil
}

func (s *Store) ContactsWithLastInteraction(_ context.Context) ([]models.ContactSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	data := s.load()

	summaries := make([]models.ContactSummary, 0, len(data.Contacts))
	for _, c := range data.Contacts {
		summary := models.ContactSummary{
			Contact:           c,
			DueReminders:      make([]models.Reminder, 0),
			UpcomingReminders: make([]models.Reminder, 0),
		}

		for _, in := range data.Interactions {
			if in.ContactID != c.ID {
				continue
			}
			if summary.LastInteraction == nil || in.Date.After(*summary.LastInteraction) {
				d := in.Date
				summary.LastInteraction = &d
			}
		}
		if summary.LastInteraction != nil {
			summary.TimeSinceLastSeen = timex.FormatTimeSince(*summary.LastInteraction, now)
		}

		for _, r := range data.Reminders {
			if r.ContactID != c.ID {
				continue
			}
			switch reminder.Classify(&r, now) {
			case reminder.BucketDue:
				summary.DueReminders = append(summary.DueReminders, r)
			case reminder.BucketUpcoming:
				summary.UpcomingReminders = append(summary.UpcomingReminders, r)
			}
		}

		summaries = append(summaries, summary)
	}

	storage.SortContactSummaries(summaries)
	return summaries, nil
}

func sortByDueDate(rs []models.Reminder) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].DueDate.Before(rs[j].DueDate) })
}

func containsContact(contacts []models.Contact, id string) bool {
	for i := range contacts {
		if contacts[i].ID == id {
			return true
		}
	}
	return false
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
