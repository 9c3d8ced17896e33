package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/models"
)

var subscriptionCols = []string{
	"id", "user_id", "endpoint", "p256dh_key", "auth_key",
	"user_agent", "is_active", "last_notification", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	q := `(?s)INSERT\s+INTO\s+push_subscriptions\s*\(id,\s*user_id,\s*endpoint,.*ON\s+CONFLICT\s*\(user_id,\s*endpoint\).*RETURNING`

	rows := sqlmock.NewRows(subscriptionCols).
		AddRow("s-1", "u-1", "https://push.example/ep", "p256", "auth", "firefox", true, nil, now, now)
	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "u-1", "https://push.example/ep", "p256", "auth", "firefox").
		WillReturnRows(rows)

	got, err := repo.Upsert(context.Background(), &models.PushSubscription{
		UserID:    "u-1",
		Endpoint:  "https://push.example/ep",
		P256dhKey: "p256",
		AuthKey:   "auth",
		UserAgent: "firefox",
	})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if got.ID != "s-1" || !got.IsActive || got.LastNotification != nil {
		t.Fatalf("unexpected subscription: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+push_subscriptions`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Upsert(context.Background(), &models.PushSubscription{UserID: "u-1", Endpoint: "e"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDeactivate_ReturnsAffectedRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+push_subscriptions\s+SET\s+is_active\s*=\s*FALSE.*WHERE\s+user_id\s*=\s*\$1\s+AND\s+endpoint\s*=\s*\$2`
	mock.ExpectExec(q).WithArgs("u-1", "https://push.example/ep").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Deactivate(context.Background(), "u-1", "https://push.example/ep")
	if err != nil {
		t.Fatalf("Deactivate error: %v", err)
	}
	if n != 1 {
		t.Fatalf("unexpected affected rows: %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDeactivateByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+push_subscriptions\s+SET\s+is_active\s*=\s*FALSE.*WHERE\s+id\s*=\s*\$1`
	mock.ExpectExec(q).WithArgs("s-9").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeactivateByID(context.Background(), "s-9")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestActiveByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stamped := now.Add(-time.Hour)

	q := `(?s)^SELECT\s+id,.*FROM\s+push_subscriptions\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+is_active`
	rows := sqlmock.NewRows(subscriptionCols).
		AddRow("s-1", "u-1", "ep1", "p1", "a1", "", true, stamped, now, now).
		AddRow("s-2", "u-1", "ep2", "p2", "a2", "chrome", true, nil, now, now)
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.ActiveByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ActiveByUser error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected subscriptions: %+v", got)
	}
	if got[0].LastNotification == nil || !got[0].LastNotification.Equal(stamped) {
		t.Fatalf("unexpected last notification: %+v", got[0].LastNotification)
	}
	if got[1].LastNotification != nil || got[1].UserAgent != "chrome" {
		t.Fatalf("unexpected subscription: %+v", got[1])
	}
}

func TestUserIDsWithActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+DISTINCT\s+user_id\s+FROM\s+push_subscriptions\s+WHERE\s+is_active`
	mock.ExpectQuery(q).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u-1").AddRow("u-2"))

	got, err := repo.UserIDsWithActive(context.Background())
	if err != nil {
		t.Fatalf("UserIDsWithActive error: %v", err)
	}
	if len(got) != 2 || got[0] != "u-1" || got[1] != "u-2" {
		t.Fatalf("unexpected user ids: %v", got)
	}
}

func TestHasRecentNotification(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	since := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	q := `(?s)^SELECT\s+EXISTS\s*\(.*last_notification\s*>=\s*\$2\)`
	mock.ExpectQuery(q).WithArgs("u-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	got, err := repo.HasRecentNotification(context.Background(), "u-1", since)
	if err != nil {
		t.Fatalf("HasRecentNotification error: %v", err)
	}
	if !got {
		t.Fatalf("expected recent notification")
	}
}

func TestStampNotification(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	q := `(?s)^UPDATE\s+push_subscriptions\s+SET\s+last_notification\s*=\s*\$2`
	mock.ExpectExec(q).WithArgs("s-1", at).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.StampNotification(context.Background(), "s-1", at); err != nil {
		t.Fatalf("StampNotification error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDeleteInactiveBefore(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cutoff := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	q := `(?s)^DELETE\s+FROM\s+push_subscriptions\s+WHERE\s+NOT\s+is_active\s+AND\s+updated_at\s*<\s*\$1`
	mock.ExpectExec(q).WithArgs(cutoff).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteInactiveBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteInactiveBefore error: %v", err)
	}
	if n != 3 {
		t.Fatalf("unexpected affected rows: %d", n)
	}
}
