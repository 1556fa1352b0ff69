package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"
	createAttempts  = 3
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create computes max+1 inside the INSERT. Two concurrent inserts can pick the same
// number; the unique constraint rejects the loser, which retries.
func (r *PGRepo) Create(ctx context.Context, v Version) (Version, error) {
	const query = `
INSERT INTO resume_versions (id, user_id, job_application_id, version, content, source, created_at)
SELECT $1, $2, $3, COALESCE(MAX(version), 0) + 1, $4, $5, $6
FROM resume_versions
WHERE job_application_id = $3
RETURNING version`
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		var version int
		err = r.DB.QueryRowContext(ctx, query,
			v.ID,
			v.UserID,
			v.JobApplicationID,
			v.Content,
			v.Source,
			v.CreatedAt,
		).Scan(&version)
		if err == nil {
			v.Version = version
			v.Analysis = nil
			return v, nil
		}
		if !isUniqueViolation(err) {
			return Version{}, err
		}
	}
	return Version{}, fmt.Errorf("assign version after %d attempts: %w", createAttempts, err)
}

// GetByID returns a version by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, versionID string) (Version, error) {
	const query = `
SELECT id, user_id, job_application_id, version, content, source,
       match_score, score_breakdown, suggestions, analyzed_at, created_at
FROM resume_versions
WHERE id = $1 AND user_id = $2
LIMIT 1`
	v, err := scanVersion(r.DB.QueryRowContext(ctx, query, versionID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	return v, nil
}

// ListByApplication lists versions ordered by version descending.
func (r *PGRepo) ListByApplication(ctx context.Context, userID, applicationID string) ([]Version, error) {
	const query = `
SELECT id, user_id, job_application_id, version, content, source,
       match_score, score_breakdown, suggestions, analyzed_at, created_at
FROM resume_versions
WHERE user_id = $1 AND job_application_id = $2
ORDER BY version DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Delete hard-deletes a version.
func (r *PGRepo) Delete(ctx context.Context, userID, versionID string) error {
	const query = `DELETE FROM resume_versions WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, versionID, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetAnalysis overwrites the analysis columns of a version.
func (r *PGRepo) SetAnalysis(ctx context.Context, userID, versionID string, analysis Analysis) error {
	breakdown, err := json.Marshal(analysis.ScoreBreakdown)
	if err != nil {
		return err
	}
	const query = `
UPDATE resume_versions
SET match_score = $1, score_breakdown = $2, suggestions = $3, analyzed_at = $4
WHERE id = $5 AND user_id = $6`
	res, err := r.DB.ExecContext(ctx, query,
		analysis.MatchScore,
		string(breakdown),
		analysis.Suggestions,
		analysis.AnalyzedAt,
		versionID,
		userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (Version, error) {
	var (
		v           Version
		matchScore  sql.NullInt64
		breakdown   []byte
		suggestions sql.NullString
		analyzedAt  sql.NullTime
	)
	if err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.JobApplicationID,
		&v.Version,
		&v.Content,
		&v.Source,
		&matchScore,
		&breakdown,
		&suggestions,
		&analyzedAt,
		&v.CreatedAt,
	); err != nil {
		return Version{}, err
	}
	if analyzedAt.Valid {
		a := Analysis{
			MatchScore:  int(matchScore.Int64),
			Suggestions: suggestions.String,
			AnalyzedAt:  analyzedAt.Time,
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &a.ScoreBreakdown); err != nil {
				return Version{}, fmt.Errorf("decode score breakdown: %w", err)
			}
		}
		v.Analysis = &a
	}
	return v, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ Repo = (*PGRepo)(nil)
