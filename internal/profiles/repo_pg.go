package profiles

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) GetUser(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, name
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&user.ID, &user.Email, &user.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) GetProfile(ctx context.Context, userID string) (Profile, error) {
	const query = `
SELECT id, user_id, email, phone, linkedin, github, portfolio, location, summary, custom_prompt
FROM profiles
WHERE user_id = $1
LIMIT 1`
	var p Profile
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.Email,
		&p.Phone,
		&p.LinkedIn,
		&p.GitHub,
		&p.Portfolio,
		&p.Location,
		&p.Summary,
		&p.CustomPrompt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}

	const eduQuery = `
SELECT id, institution, degree, field, start_date, end_date, current
FROM educations
WHERE profile_id = $1
ORDER BY start_date DESC NULLS LAST, id`
	rows, err := r.DB.QueryContext(ctx, eduQuery, p.ID)
	if err != nil {
		return Profile{}, err
	}
	defer rows.Close()

	p.Educations = []Education{}
	for rows.Next() {
		var edu Education
		var start, end sql.NullTime
		if err := rows.Scan(&edu.ID, &edu.Institution, &edu.Degree, &edu.Field, &start, &end, &edu.Current); err != nil {
			return Profile{}, err
		}
		edu.StartDate = timePtr(start)
		edu.EndDate = timePtr(end)
		p.Educations = append(p.Educations, edu)
	}
	return p, rows.Err()
}

func (r *PGRepo) ListExperiences(ctx context.Context, userID string) ([]Experience, error) {
	const query = `
SELECT e.id, e.company, e.position, e.location, e.description, e.start_date, e.end_date, e.current,
       b.id, b.content, b.sort_order
FROM experiences e
LEFT JOIN experience_bullets b ON b.experience_id = e.id
WHERE e.user_id = $1
ORDER BY e.start_date DESC, e.id, b.sort_order, b.id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Experience{}
	index := map[string]int{}
	for rows.Next() {
		var exp Experience
		var end sql.NullTime
		var bullet nullBullet
		if err := rows.Scan(
			&exp.ID,
			&exp.Company,
			&exp.Position,
			&exp.Location,
			&exp.Description,
			&exp.StartDate,
			&end,
			&exp.Current,
			&bullet.seq,
			&bullet.content,
			&bullet.order,
		); err != nil {
			return nil, err
		}
		i, ok := index[exp.ID]
		if !ok {
			exp.EndDate = timePtr(end)
			exp.Bullets = []Bullet{}
			out = append(out, exp)
			i = len(out) - 1
			index[exp.ID] = i
		}
		if b, ok := bullet.value(); ok {
			out[i].Bullets = append(out[i].Bullets, b)
		}
	}
	return out, rows.Err()
}

func (r *PGRepo) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	const query = `
SELECT p.id, p.title, p.summary, p.description, p.role, p.tech_stack, p.url,
       p.start_date, p.end_date, p.archived, p.sort_order, p.created_at,
       b.id, b.content, b.sort_order
FROM projects p
LEFT JOIN project_bullets b ON b.project_id = p.id
WHERE p.user_id = $1
ORDER BY p.sort_order, p.created_at, p.id, b.sort_order, b.id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Project{}
	index := map[string]int{}
	for rows.Next() {
		var p Project
		var start, end sql.NullTime
		var bullet nullBullet
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Summary,
			&p.Description,
			&p.Role,
			&p.TechStack,
			&p.URL,
			&start,
			&end,
			&p.Archived,
			&p.Order,
			&p.CreatedAt,
			&bullet.seq,
			&bullet.content,
			&bullet.order,
		); err != nil {
			return nil, err
		}
		i, ok := index[p.ID]
		if !ok {
			p.StartDate = timePtr(start)
			p.EndDate = timePtr(end)
			p.Bullets = []Bullet{}
			out = append(out, p)
			i = len(out) - 1
			index[p.ID] = i
		}
		if b, ok := bullet.value(); ok {
			out[i].Bullets = append(out[i].Bullets, b)
		}
	}
	return out, rows.Err()
}

func (r *PGRepo) ListSkills(ctx context.Context, userID string) ([]Skill, error) {
	const query = `
SELECT s.name, s.category, us.proficiency, us.created_at
FROM user_skills us
JOIN skills s ON s.id = us.skill_id
WHERE us.user_id = $1
ORDER BY us.created_at, s.id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Skill{}
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.Name, &s.Category, &s.Proficiency, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListCertifications(ctx context.Context, userID string) ([]Certification, error) {
	const query = `
SELECT id, title, description
FROM certifications
WHERE user_id = $1
ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Certification{}
	for rows.Next() {
		var c Certification
		if err := rows.Scan(&c.ID, &c.Title, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetCustomPrompt(ctx context.Context, userID, prompt string) error {
	const query = `
UPDATE profiles
SET custom_prompt = $2, updated_at = now()
WHERE user_id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, prompt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type nullBullet struct {
	seq     sql.NullInt64
	content sql.NullString
	order   sql.NullInt32
}

func (b nullBullet) value() (Bullet, bool) {
	if !b.seq.Valid {
		return Bullet{}, false
	}
	return Bullet{Seq: b.seq.Int64, Content: b.content.String, Order: int(b.order.Int32)}, true
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

var _ Repo = (*PGRepo)(nil)
