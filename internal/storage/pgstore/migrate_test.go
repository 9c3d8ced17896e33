package pgstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/models"
)

// captureArg records the value it matched so a later expectation can assert
// the same value shows up again (parent ID remapped into a child row).
type captureArg struct{ v *driver.Value }

func (c captureArg) Match(v driver.Value) bool {
	*c.v = v
	return true
}

type sameAs struct{ v *driver.Value }

func (s sameAs) Match(v driver.Value) bool { return v == *s.v }

func TestImportLocal_RemapsChildrenToFreshIDs(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s, mock, db := newStoreWithMock(t, now)
	defer db.Close()

	created := time.Date(2023, 11, 5, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	data := models.LocalData{
		Contacts: []models.Contact{
			{ID: "local-c1", Name: "Alice", Group: "friends", CreatedAt: created},
		},
		Interactions: []models.Interaction{
			{ID: "local-i1", ContactID: "local-c1", Date: created, Note: "lunch"},
			{ID: "local-i2", ContactID: "gone", Date: created, Note: "orphan"},
		},
		Reminders: []models.Reminder{
			{ID: "local-r1", ContactID: "local-c1", Title: "Call", DueDate: due,
				Type: models.ReminderOneTime, CreatedAt: created, UpdatedAt: created},
		},
	}

	var newContactID driver.Value
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+contacts`).
		WithArgs(captureArg{&newContactID}, "u-1", "Alice", "friends", created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+interactions`).
		WithArgs(sqlmock.AnyArg(), sameAs{&newContactID}, created, "lunch").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+reminders`).
		WithArgs(sqlmock.AnyArg(), sameAs{&newContactID}, "Call", "", due,
			"ONE_TIME", "", int64(0), false, nil, nil, created, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.ImportLocal(ownerCtx(), data); err != nil {
		t.Fatalf("ImportLocal error: %v", err)
	}
	checkExpectations(t, mock)
}

func TestImportLocal_Unauthorized(t *testing.T) {
	s, _, db := newStoreWithMock(t, time.Now())
	defer db.Close()

	err := s.ImportLocal(context.Background(), models.LocalData{
		Contacts: []models.Contact{{ID: "c-1", Name: "Alice"}},
	})
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestImportLocal_ContactInsertError(t *testing.T) {
	s, mock, db := newStoreWithMock(t, time.Now())
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+contacts`).
		WillReturnError(errors.New("db down"))

	err := s.ImportLocal(ownerCtx(), models.LocalData{
		Contacts: []models.Contact{{ID: "c-1", Name: "Alice"}},
	})
	if err == nil || !strings.Contains(err.Error(), `importing contact "Alice"`) {
		t.Fatalf("want wrapped import error, got %v", err)
	}
}
