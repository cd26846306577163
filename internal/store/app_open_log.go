package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/placement-tracker/apiserver/types"
)

// AppOpenLogRepository handles persistence for per-user notification logs.
type AppOpenLogRepository struct {
	db *sql.DB
}

func NewAppOpenLogRepository(db *sql.DB) *AppOpenLogRepository {
	return &AppOpenLogRepository{db: db}
}

// GetByUser returns the log row for the given user.
func (r *AppOpenLogRepository) GetByUser(ctx context.Context, userID int) (types.AppOpenLog, error) {
	const query = `
		SELECT id, user_id, last_sent_at, created_at, updated_at
		FROM app_open_logs
		WHERE user_id = $1`
	var log types.AppOpenLog
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&log.ID,
		&log.UserID,
		&log.LastSentAt,
		&log.CreatedAt,
		&log.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.AppOpenLog{}, ErrNotFound
		}
		return types.AppOpenLog{}, err
	}
	return log, nil
}

// Touch records a notification attempt at sentAt, creating the log row
// lazily on first use. The unique index on user_id keeps this to a single
// row per user even under concurrent events.
func (r *AppOpenLogRepository) Touch(ctx context.Context, userID int, sentAt time.Time) error {
	const query = `
		INSERT INTO app_open_logs (user_id, last_sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET last_sent_at = EXCLUDED.last_sent_at, updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, query, userID, sentAt, time.Now())
	return err
}
