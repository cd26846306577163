package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/placement-tracker/apiserver/types"
)

// ApplicationRepository handles persistence for job applications.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, user_id, company_name, website_url, applied_at, image_url, status, notes, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (types.Application, error) {
	var app types.Application
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.CompanyName,
		&app.WebsiteUrl,
		&app.AppliedAt,
		&app.ImageUrl,
		&app.Status,
		&app.Notes,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	return app, err
}

// List returns applications matching the filter, newest first. A zero
// filter lists every application across all users (admin path).
func (r *ApplicationRepository) List(ctx context.Context, filter types.ApplicationFilter) ([]types.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE ($1 = 0 OR user_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, filter.UserID, filter.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]types.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

// Get returns the application with the given id owned by userID.
func (r *ApplicationRepository) Get(ctx context.Context, userID, id int) (types.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE id = $1 AND user_id = $2`
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	const query = `
		INSERT INTO applications (user_id, company_name, website_url, applied_at, image_url, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		app.UserID,
		app.CompanyName,
		app.WebsiteUrl,
		app.AppliedAt,
		app.ImageUrl,
		app.Status,
		app.Notes,
		app.CreatedAt,
		app.UpdatedAt,
	).Scan(&app.ID); err != nil {
		return types.Application{}, err
	}
	return app, nil
}

// Patch applies the non-nil fields of patch onto the record identified by
// (id, userID) and returns the updated row. A record belonging to another
// user is indistinguishable from a missing one: both yield ErrNotFound.
func (r *ApplicationRepository) Patch(ctx context.Context, userID, id int, patch types.ApplicationPatch) (types.Application, error) {
	const query = `
		UPDATE applications
		SET company_name = COALESCE($3, company_name),
			website_url = COALESCE($4, website_url),
			applied_at = COALESCE($5, applied_at),
			image_url = COALESCE($6, image_url),
			status = COALESCE($7, status),
			notes = COALESCE($8, notes),
			updated_at = $9
		WHERE id = $1 AND user_id = $2
		RETURNING ` + applicationColumns
	app, err := scanApplication(r.db.QueryRowContext(
		ctx,
		query,
		id,
		userID,
		patch.CompanyName,
		patch.WebsiteUrl,
		patch.AppliedAt,
		patch.ImageUrl,
		patch.Status,
		patch.Notes,
		time.Now(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

// UpdateStatus sets only the status of the record identified by
// (id, userID) and returns the updated row.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, userID, id int, status string) (types.Application, error) {
	const query = `
		UPDATE applications
		SET status = $3,
			updated_at = $4
		WHERE id = $1 AND user_id = $2
		RETURNING ` + applicationColumns
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id, userID, status, time.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, userID, id int) error {
	const query = `DELETE FROM applications WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
