package profiles

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"jobtracker-backend/internal/shared/apperr"
)

const maxCustomPromptLength = 4000

// Service manages the saved generation prompt of a profile.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// CustomPrompt returns the saved system instruction, or "" when none is saved.
func (s *Service) CustomPrompt(ctx context.Context, userID string) (string, error) {
	if s == nil || s.Repo == nil {
		return "", apperr.Configuration("profiles service not configured")
	}
	profile, err := s.Repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", apperr.NotFound("profile")
		}
		return "", err
	}
	return profile.CustomPrompt, nil
}

// SaveCustomPrompt stores the system instruction used when a generate request has none.
// An empty prompt clears it.
func (s *Service) SaveCustomPrompt(ctx context.Context, userID, prompt string) error {
	if s == nil || s.Repo == nil {
		return apperr.Configuration("profiles service not configured")
	}
	prompt = strings.TrimSpace(prompt)
	if utf8.RuneCountInString(prompt) > maxCustomPromptLength {
		return apperr.Validation("custom prompt must be at most %d characters", maxCustomPromptLength)
	}
	if err := s.Repo.SetCustomPrompt(ctx, userID, prompt); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("profile")
		}
		return err
	}
	return nil
}
