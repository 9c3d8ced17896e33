// Package pgstore implements the remote store over PostgreSQL. Every
// operation is scoped to the acting user carried in the request context;
// rows owned by someone else answer with the same generic not-found error
// as rows that do not exist.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/auth"
	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/dbx"
	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/dmitrijs2005/keepintouch/internal/reminder"
	"github.com/dmitrijs2005/keepintouch/internal/storage"
	"github.com/dmitrijs2005/keepintouch/internal/timex"
	"github.com/google/uuid"
)

// Store is the postgres-backed remote store.
type Store struct {
	db    *sql.DB
	nowFn func() time.Time
}

var _ storage.RemoteStore = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db, nowFn: time.Now}
}

func owner(ctx context.Context) (string, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", common.ErrUnauthorized
	}
	return userID, nil
}

const reminderColumns = `r.id, r.contact_id, r.title, COALESCE(r.description, ''), r.due_date,
	r.reminder_type, COALESCE(r.recurring_unit, ''), COALESCE(r.recurring_value, 0),
	r.is_acknowledged, r.acknowledged_at, r.next_due_date, r.created_at, r.updated_at`

func scanReminder(row interface{ Scan(...any) error }) (*models.Reminder, error) {
	var r models.Reminder
	var acknowledgedAt, nextDueDate sql.NullTime
	err := row.Scan(
		&r.ID, &r.ContactID, &r.Title, &r.Description, &r.DueDate,
		&r.Type, &r.RecurringUnit, &r.RecurringValue,
		&r.IsAcknowledged, &acknowledgedAt, &nextDueDate, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if acknowledgedAt.Valid {
		r.AcknowledgedAt = &acknowledgedAt.Time
	}
	if nextDueDate.Valid {
		r.NextDueDate = &nextDueDate.Time
	}
	return &r, nil
}

// ownsContact verifies the contact exists and belongs to userID.
func ownsContact(ctx context.Context, db dbx.DBTX, userID, contactID string) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM contacts WHERE id = $1 AND user_id = $2)`
	if err := db.QueryRowContext(ctx, query, contactID, userID).Scan(&exists); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return common.ErrNotFound
	}
	return nil
}

func (s *Store) AddContact(ctx context.Context, name, group string) (*models.Contact, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	name, err = storage.NormalizeRequired("name", name)
	if err != nil {
		return nil, err
	}

	contact := &models.Contact{
		ID:        uuid.NewString(),
		Name:      name,
		Group:     strings.TrimSpace(group),
		OwnerID:   userID,
		CreatedAt: s.nowFn(),
	}
	query := `INSERT INTO contacts (id, user_id, name, group_name, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)`
	if _, err := s.db.ExecContext(ctx, query,
		contact.ID, userID, contact.Name, contact.Group, contact.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}

func (s *Store) Contact(ctx context.Context, id string) (*models.Contact, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	var c models.Contact
	query := `SELECT id, user_id, name, COALESCE(group_name, ''), created_at
		FROM contacts WHERE id = $1 AND user_id = $2`
	err = s.db.QueryRowContext(ctx, query, id, userID).
		Scan(&c.ID, &c.OwnerID, &c.Name, &c.Group, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}

// DeleteContact removes the contact; interactions and reminders go with it
// via ON DELETE CASCADE.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	userID, err := owner(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *Store) AddInteraction(ctx context.Context, contactID string, date *time.Time, note string) (*models.Interaction, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := ownsContact(ctx, s.db, userID, contactID); err != nil {
		return nil, err
	}

	when := s.nowFn()
	if date != nil {
		when = *date
	}
	interaction := &models.Interaction{
		ID:        uuid.NewString(),
		ContactID: contactID,
		Date:      when,
		Note:      strings.TrimSpace(note),
	}
	query := `INSERT INTO interactions (id, contact_id, interaction_date, note)
		VALUES ($1, $2, $3, NULLIF($4, ''))`
	if _, err := s.db.ExecContext(ctx, query,
		interaction.ID, interaction.ContactID, interaction.Date, interaction.Note); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return interaction, nil
}

func (s *Store) UpdateInteraction(ctx context.Context, id string, upd storage.InteractionUpdate) (*models.Interaction, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	var result *models.Interaction
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var in models.Interaction
		query := `SELECT i.id, i.contact_id, i.interaction_date, COALESCE(i.note, '')
			FROM interactions i
			JOIN contacts c ON c.id = i.contact_id
			WHERE i.id = $1 AND c.user_id = $2`
		err := tx.QueryRowContext(ctx, query, id, userID).
			Scan(&in.ID, &in.ContactID, &in.Date, &in.Note)
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		if upd.Date != nil {
			in.Date = *upd.Date
		}
		if upd.Note != nil {
			in.Note = strings.TrimSpace(*upd.Note)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE interactions SET interaction_date = $2, note = NULLIF($3, '') WHERE id = $1`,
			in.ID, in.Date, in.Note); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		result = &in
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) DeleteInteraction(ctx context.Context, id string) error {
	userID, err := owner(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM interactions i
		USING contacts c
		WHERE i.contact_id = c.id AND i.id = $1 AND c.user_id = $2`
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *Store) ContactInteractions(ctx context.Context, contactID string) ([]models.Interaction, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := ownsContact(ctx, s.db, userID, contactID); err != nil {
		return nil, err
	}

	query := `SELECT id, contact_id, interaction_date, COALESCE(note, '')
		FROM interactions WHERE contact_id = $1 ORDER BY interaction_date DESC`
	rows, err := s.db.QueryContext(ctx, query, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to select interactions: %w", err)
	}
	defer rows.Close()

	result := make([]models.Interaction, 0)
	for rows.Next() {
		var in models.Interaction
		if err := rows.Scan(&in.ID, &in.ContactID, &in.Date, &in.Note); err != nil {
			return nil, err
		}
		result = append(result, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) AddReminder(ctx context.Context, in storage.CreateReminderInput) (*models.Reminder, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	if err := ownsContact(ctx, s.db, userID, in.ContactID); err != nil {
		return nil, err
	}

	now := s.nowFn()
	r := &models.Reminder{
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
	r.NextDueDate = reminder.NextDue(r)

	if err := s.insertReminder(ctx, s.db, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) insertReminder(ctx context.Context, db dbx.DBTX, r *models.Reminder) error {
	query := `INSERT INTO reminders (id, contact_id, title, description, due_date,
			reminder_type, recurring_unit, recurring_value,
			is_acknowledged, acknowledged_at, next_due_date, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), NULLIF($8, 0), $9, $10, $11, $12, $13)`
	_, err := db.ExecContext(ctx, query,
		r.ID, r.ContactID, r.Title, r.Description, r.DueDate,
		r.Type, string(r.RecurringUnit), r.RecurringValue,
		r.IsAcknowledged, r.AcknowledgedAt, r.NextDueDate, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// reminderForUpdate loads a reminder owned by userID inside the transaction.
func reminderForUpdate(ctx context.Context, tx dbx.DBTX, userID, id string) (*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders r
		JOIN contacts c ON c.id = r.contact_id
		WHERE r.id = $1 AND c.user_id = $2`
	r, err := scanReminder(tx.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r, nil
}

func saveReminder(ctx context.Context, tx dbx.DBTX, r *models.Reminder) error {
	query := `UPDATE reminders SET title = $2, description = NULLIF($3, ''), due_date = $4,
			reminder_type = $5, recurring_unit = NULLIF($6, ''), recurring_value = NULLIF($7, 0),
			is_acknowledged = $8, acknowledged_at = $9, next_due_date = $10, updated_at = $11
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, query,
		r.ID, r.Title, r.Description, r.DueDate,
		r.Type, string(r.RecurringUnit), r.RecurringValue,
		r.IsAcknowledged, r.AcknowledgedAt, r.NextDueDate, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) UpdateReminder(ctx context.Context, id string, upd storage.ReminderUpdate) (*models.Reminder, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	var result *models.Reminder
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r, err := reminderForUpdate(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		upd.Apply(r, s.nowFn())
		if err := saveReminder(ctx, tx, r); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	userID, err := owner(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM reminders r
		USING contacts c
		WHERE r.contact_id = c.id AND r.id = $1 AND c.user_id = $2`
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *Store) AcknowledgeReminder(ctx context.Context, id string) (*models.Reminder, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	var result *models.Reminder
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r, err := reminderForUpdate(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		reminder.Acknowledge(r, s.nowFn())
		if err := saveReminder(ctx, tx, r); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ContactReminders(ctx context.Context, contactID string) ([]models.Reminder, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := ownsContact(ctx, s.db, userID, contactID); err != nil {
		return nil, err
	}

	query := `SELECT ` + reminderColumns + `
		FROM reminders r WHERE r.contact_id = $1 ORDER BY r.due_date`
	return s.selectReminders(ctx, query, contactID)
}

func (s *Store) AllReminders(ctx context.Context) ([]models.Reminder, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + reminderColumns + `
		FROM reminders r
		JOIN contacts c ON c.id = r.contact_id
		WHERE c.user_id = $1 ORDER BY r.due_date`
	return s.selectReminders(ctx, query, userID)
}

func (s *Store) DueReminders(ctx context.Context) ([]models.Reminder, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + reminderColumns + `
		FROM reminders r
		JOIN contacts c ON c.id = r.contact_id
		WHERE c.user_id = $1 AND NOT r.is_acknowledged AND r.due_date < $2
		ORDER BY r.due_date`
	return s.selectReminders(ctx, query, userID, s.nowFn())
}

// RemindersDueAt lists the acting user's unacknowledged reminders whose due
// date has arrived at the given instant, inclusive. Notification dispatch
// uses this instead of DueReminders so a reminder due exactly at the pass
// instant is picked up.
func (s *Store) RemindersDueAt(ctx context.Context, at time.Time) ([]models.Reminder, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + reminderColumns + `
		FROM reminders r
		JOIN contacts c ON c.id = r.contact_id
		WHERE c.user_id = $1 AND NOT r.is_acknowledged AND r.due_date <= $2
		ORDER BY r.due_date`
	return s.selectReminders(ctx, query, userID, at)
}

func (s *Store) UpcomingReminders(ctx context.Context, withinDays int) ([]models.Reminder, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	if withinDays <= 0 {
		withinDays = reminder.UpcomingWindowDays
	}

	now := s.nowFn()
	query := `SELECT ` + reminderColumns + `
		FROM reminders r
		JOIN contacts c ON c.id = r.contact_id
		WHERE c.user_id = $1 AND NOT r.is_acknowledged AND r.due_date > $2 AND r.due_date < $3
		ORDER BY r.due_date`
	return s.selectReminders(ctx, query, userID, now, now.AddDate(0, 0, withinDays))
}

func (s *Store) selectReminders(ctx context.Context, query string, args ...any) ([]models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select reminders: %w", err)
	}
	defer rows.Close()

	result := make([]models.Reminder, 0)
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ContactsWithLastInteraction(ctx context.Context) ([]models.ContactSummary, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	now := s.nowFn()

	query := `SELECT c.id, c.user_id, c.name, COALESCE(c.group_name, ''), c.created_at,
			(SELECT MAX(i.interaction_date) FROM interactions i WHERE i.contact_id = c.id)
		FROM contacts c WHERE c.user_id = $1 ORDER BY c.created_at`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select contacts: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ContactSummary, 0)
	byContact := make(map[string]int)
	for rows.Next() {
		var sum models.ContactSummary
		var last sql.NullTime
		if err := rows.Scan(&sum.ID, &sum.OwnerID, &sum.Name, &sum.Group, &sum.CreatedAt, &last); err != nil {
			return nil, err
		}
		if last.Valid {
			sum.LastInteraction = &last.Time
			sum.TimeSinceLastSeen = timex.FormatTimeSince(last.Time, now)
		}
		sum.DueReminders = make([]models.Reminder, 0)
		sum.UpcomingReminders = make([]models.Reminder, 0)
		byContact[sum.ID] = len(summaries)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pending, err := s.selectReminders(ctx, `SELECT `+reminderColumns+`
		FROM reminders r
		JOIN contacts c ON c.id = r.contact_id
		WHERE c.user_id = $1 AND NOT r.is_acknowledged
		ORDER BY r.due_date`, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range pending {
		idx, ok := byContact[r.ContactID]
		if !ok {
			continue
		}
		switch reminder.Classify(&r, now) {
		case reminder.BucketDue:
			summaries[idx].DueReminders = append(summaries[idx].DueReminders, r)
		case reminder.BucketUpcoming:
			summaries[idx].UpcomingReminders = append(summaries[idx].UpcomingReminders, r)
		}
	}

	storage.SortContactSummaries(summaries)
	return summaries, nil
}
