package applications

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetByID returns the application when it belongs to userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, applicationID string) (JobApplication, error) {
	const query = `
SELECT id, user_id, job_title, job_description, platform, application_url, status, created_at
FROM job_applications
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var app JobApplication
	err := r.DB.QueryRowContext(ctx, query, applicationID, userID).Scan(
		&app.ID,
		&app.UserID,
		&app.JobTitle,
		&app.JobDescription,
		&app.Platform,
		&app.ApplicationURL,
		&app.Status,
		&app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return JobApplication{}, ErrNotFound
		}
		return JobApplication{}, err
	}
	return app, nil
}

var _ Repo = (*PGRepo)(nil)
