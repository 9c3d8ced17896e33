package pgstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/google/uuid"
)

// ImportLocal bulk-creates the entities of a local blob under the acting
// user. Local IDs are remapped to freshly minted ones and children follow
// their remapped parent; original timestamps are preserved.
//
// The import is deliberately not transactional: a failure partway leaves a
// partial remote copy and the caller's local data untouched. Retrying is
// safe in the sense that it cannot corrupt references, but because every
// attempt mints fresh IDs a retry after partial failure can duplicate rows.
// There is no duplicate detection; this is a known limitation.
func (s *Store) ImportLocal(ctx context.Context, data models.LocalData) error {
	userID, err := owner(ctx)
	if err != nil {
		return err
	}

	contactIDs := make(map[string]string, len(data.Contacts))
	for _, c := range data.Contacts {
		newID := uuid.NewString()
		query := `INSERT INTO contacts (id, user_id, name, group_name, created_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5)`
		if _, err := s.db.ExecContext(ctx, query, newID, userID, c.Name, c.Group, c.CreatedAt); err != nil {
			return fmt.Errorf("importing contact %q: %w", c.Name, err)
		}
		contactIDs[c.ID] = newID
	}

	for _, in := range data.Interactions {
		contactID, ok := contactIDs[in.ContactID]
		if !ok {
			// orphan in the blob; skip rather than fail the import
			continue
		}
		query := `INSERT INTO interactions (id, contact_id, interaction_date, note)
			VALUES ($1, $2, $3, NULLIF($4, ''))`
		if _, err := s.db.ExecContext(ctx, query, uuid.NewString(), contactID, in.Date, in.Note); err != nil {
			return fmt.Errorf("importing interaction: %w", err)
		}
	}

	for _, r := range data.Reminders {
		contactID, ok := contactIDs[r.ContactID]
		if !ok {
			continue
		}
		r.ID = uuid.NewString()
		r.ContactID = contactID
		if err := s.insertReminder(ctx, s.db, &r); err != nil {
			return fmt.Errorf("importing reminder %q: %w", r.Title, err)
		}
	}

	return nil
}
