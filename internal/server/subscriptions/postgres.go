// Package subscriptions provides the PostgreSQL-backed repository for
// browser push subscriptions.
package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/dbx"
	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const subscriptionColumns = `id, user_id, endpoint, p256dh_key, auth_key, COALESCE(user_agent, ''), is_active, last_notification, created_at, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	var lastNotification sql.NullTime
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey,
		&sub.UserAgent, &sub.IsActive, &lastNotification, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastNotification.Valid {
		sub.LastNotification = &lastNotification.Time
	}
	return &sub, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, sub *models.PushSubscription) (*models.PushSubscription, error) {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh_key, auth_key, user_agent, is_active)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), TRUE)
		ON CONFLICT (user_id, endpoint)
		DO UPDATE SET
			p256dh_key = EXCLUDED.p256dh_key,
			auth_key = EXCLUDED.auth_key,
			user_agent = EXCLUDED.user_agent,
			is_active = TRUE,
			updated_at = now()
		RETURNING ` + subscriptionColumns
	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), sub.UserID, sub.Endpoint, sub.P256dhKey, sub.AuthKey, sub.UserAgent)
	saved, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, userID, endpoint string) (int64, error) {
	query := `UPDATE push_subscriptions SET is_active = FALSE, updated_at = now() WHERE user_id = $1 AND endpoint = $2`
	res, err := r.db.ExecContext(ctx, query, userID, endpoint)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) DeactivateByID(ctx context.Context, id string) error {
	query := `UPDATE push_subscriptions SET is_active = FALSE, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
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

func (r *PostgresRepository) ActiveByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM push_subscriptions WHERE user_id = $1 AND is_active`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select subscriptions: %w", err)
	}
	defer rows.Close()

	var result []models.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) UserIDsWithActive(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM push_subscriptions WHERE is_active`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select subscribed users: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) HasRecentNotification(ctx context.Context, userID string, since time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM push_subscriptions
		WHERE user_id = $1 AND is_active AND last_notification >= $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) StampNotification(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE push_subscriptions SET last_notification = $2, updated_at = now() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM push_subscriptions WHERE NOT is_active AND updated_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
