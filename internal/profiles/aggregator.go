package profiles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"jobtracker-backend/internal/applications"
	"jobtracker-backend/internal/shared/apperr"
)

// Aggregator flattens a user's records into a GenerationInput. It only reads.
type Aggregator struct {
	Repo         Repo
	Applications applications.Repo
}

// NewAggregator constructs an Aggregator.
func NewAggregator(repo Repo, apps applications.Repo) *Aggregator {
	return &Aggregator{Repo: repo, Applications: apps}
}

// Aggregate loads the profile, experience, projects, skills and certifications of userID
// together with the target application. Experiences are ordered by start date descending,
// archived projects are dropped and bullets follow their explicit order.
func (a *Aggregator) Aggregate(ctx context.Context, userID, applicationID string) (GenerationInput, error) {
	if a == nil || a.Repo == nil || a.Applications == nil {
		return GenerationInput{}, apperr.Configuration("profile aggregator not configured")
	}

	app, err := a.Applications.GetByID(ctx, userID, applicationID)
	if err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return GenerationInput{}, apperr.NotFound("job application")
		}
		return GenerationInput{}, fmt.Errorf("load application: %w", err)
	}

	profile, err := a.Repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return GenerationInput{}, apperr.NotFound("profile")
		}
		return GenerationInput{}, fmt.Errorf("load profile: %w", err)
	}
	user, err := a.Repo.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return GenerationInput{}, fmt.Errorf("load user: %w", err)
	}
	if user.ID == "" {
		user.ID = userID
	}

	experiences, err := a.Repo.ListExperiences(ctx, userID)
	if err != nil {
		return GenerationInput{}, fmt.Errorf("load experiences: %w", err)
	}
	projects, err := a.Repo.ListProjects(ctx, userID)
	if err != nil {
		return GenerationInput{}, fmt.Errorf("load projects: %w", err)
	}
	skills, err := a.Repo.ListSkills(ctx, userID)
	if err != nil {
		return GenerationInput{}, fmt.Errorf("load skills: %w", err)
	}
	certs, err := a.Repo.ListCertifications(ctx, userID)
	if err != nil {
		return GenerationInput{}, fmt.Errorf("load certifications: %w", err)
	}

	if profile.Educations == nil {
		profile.Educations = []Education{}
	}
	if certs == nil {
		certs = []Certification{}
	}

	return GenerationInput{
		User:           user,
		Profile:        profile,
		Experiences:    orderExperiences(experiences),
		Projects:       activeProjects(projects),
		Skills:         orderSkills(skills),
		Certifications: certs,
		Job: JobTarget{
			ApplicationID: app.ID,
			Title:         strings.TrimSpace(app.JobTitle),
			Description:   strings.TrimSpace(app.JobDescription),
		},
	}, nil
}

func orderExperiences(in []Experience) []Experience {
	out := make([]Experience, len(in))
	for i, exp := range in {
		exp.Bullets = OrderBullets(exp.Bullets)
		out[i] = exp
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out
}

func activeProjects(in []Project) []Project {
	out := make([]Project, 0, len(in))
	for _, p := range in {
		if p.Archived {
			continue
		}
		p.Bullets = OrderBullets(p.Bullets)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func orderSkills(in []Skill) []Skill {
	out := append([]Skill{}, in...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// OrderBullets sorts by Order, then by insertion sequence.
func OrderBullets(in []Bullet) []Bullet {
	out := append([]Bullet{}, in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}
