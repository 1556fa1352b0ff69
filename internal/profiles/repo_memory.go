package profiles

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	user           User
	profile        *Profile
	experiences    []Experience
	projects       []Project
	skills         []Skill
	certifications []Certification
}

// MemoryRepo keeps profile data in memory and is safe for concurrent use.
// Rows are returned in insertion order, which the aggregator does not rely on.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]*memoryRecord
	seq   int64
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]*memoryRecord)}
}

// PutUser creates or replaces a user.
func (r *MemoryRepo) PutUser(user User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(user.ID)
	rec.user = user
}

// PutProfile creates or replaces the user's profile.
func (r *MemoryRepo) PutProfile(userID string, profile Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.UserID = userID
	r.record(userID).profile = &profile
}

// AddExperience appends an experience, assigning bullet sequence numbers.
func (r *MemoryRepo) AddExperience(userID string, exp Experience) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp.Bullets = r.sequence(exp.Bullets)
	rec := r.record(userID)
	rec.experiences = append(rec.experiences, exp)
}

// AddProject appends a project, assigning bullet sequence numbers.
func (r *MemoryRepo) AddProject(userID string, project Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project.Bullets = r.sequence(project.Bullets)
	if project.CreatedAt.IsZero() {
		r.seq++
		project.CreatedAt = time.Unix(r.seq, 0).UTC()
	}
	rec := r.record(userID)
	rec.projects = append(rec.projects, project)
}

// AddSkill appends a skill.
func (r *MemoryRepo) AddSkill(userID string, skill Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if skill.CreatedAt.IsZero() {
		r.seq++
		skill.CreatedAt = time.Unix(r.seq, 0).UTC()
	}
	rec := r.record(userID)
	rec.skills = append(rec.skills, skill)
}

// AddCertification appends a certification.
func (r *MemoryRepo) AddCertification(userID string, cert Certification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(userID)
	rec.certifications = append(rec.certifications, cert)
}

func (r *MemoryRepo) record(userID string) *memoryRecord {
	rec, ok := r.users[userID]
	if !ok {
		rec = &memoryRecord{user: User{ID: userID}}
		r.users[userID] = rec
	}
	return rec
}

func (r *MemoryRepo) sequence(bullets []Bullet) []Bullet {
	out := make([]Bullet, len(bullets))
	for i, b := range bullets {
		if b.Seq == 0 {
			r.seq++
			b.Seq = r.seq
		}
		out[i] = b
	}
	return out
}

func (r *MemoryRepo) GetUser(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return rec.user, nil
}

func (r *MemoryRepo) GetProfile(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[userID]
	if !ok || rec.profile == nil {
		return Profile{}, ErrNotFound
	}
	profile := *rec.profile
	profile.Educations = append([]Education(nil), rec.profile.Educations...)
	return profile, nil
}

func (r *MemoryRepo) ListExperiences(ctx context.Context, userID string) ([]Experience, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[userID]
	if !ok {
		return []Experience{}, nil
	}
	out := make([]Experience, len(rec.experiences))
	for i, exp := range rec.experiences {
		exp.Bullets = append([]Bullet(nil), exp.Bullets...)
		out[i] = exp
	}
	return out, nil
}

func (r *MemoryRepo) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[userID]
	if !ok {
		return []Project{}, nil
	}
	out := make([]Project, len(rec.projects))
	for i, p := range rec.projects {
		p.Bullets = append([]Bullet(nil), p.Bullets...)
		out[i] = p
	}
	return out, nil
}

func (r *MemoryRepo) ListSkills(ctx context.Context, userID string) ([]Skill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[userID]
	if !ok {
		return []Skill{}, nil
	}
	return append([]Skill{}, rec.skills...), nil
}

func (r *MemoryRepo) ListCertifications(ctx context.Context, userID string) ([]Certification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[userID]
	if !ok {
		return []Certification{}, nil
	}
	return append([]Certification{}, rec.certifications...), nil
}

func (r *MemoryRepo) SetCustomPrompt(ctx context.Context, userID, prompt string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.users[userID]
	if !ok || rec.profile == nil {
		return ErrNotFound
	}
	rec.profile.CustomPrompt = prompt
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
