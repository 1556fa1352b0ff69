package profiles

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the user or profile does not exist.
	ErrNotFound = errors.New("profile not found")
)

// Repo reads the records that feed resume generation.
type Repo interface {
	GetUser(ctx context.Context, userID string) (User, error)
	GetProfile(ctx context.Context, userID string) (Profile, error)
	ListExperiences(ctx context.Context, userID string) ([]Experience, error)
	ListProjects(ctx context.Context, userID string) ([]Project, error)
	ListSkills(ctx context.Context, userID string) ([]Skill, error)
	ListCertifications(ctx context.Context, userID string) ([]Certification, error)
	SetCustomPrompt(ctx context.Context, userID, prompt string) error
}
