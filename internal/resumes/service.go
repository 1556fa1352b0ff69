package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"jobtracker-backend/internal/applications"
	"jobtracker-backend/internal/llm"
	"jobtracker-backend/internal/profiles"
	"jobtracker-backend/internal/ratelimit"
	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/resume/fallback"
	"jobtracker-backend/resume/model"
	"jobtracker-backend/resume/render"
)

const (
	minJobDescriptionLength = 10
	defaultLLMTimeout       = 60 * time.Second

	quotaFallbackReason = "llm_quota_or_rate_limit"
	manualImportHint    = "copy the prompt and paste the result via import"
)

// InputSource builds the generation input for a user and job application.
type InputSource interface {
	Aggregate(ctx context.Context, userID, applicationID string) (profiles.GenerationInput, error)
}

// Service stores resume versions and orchestrates their generation.
type Service struct {
	Repo         Repo
	Inputs       InputSource
	Applications applications.Repo
	Limiter      *ratelimit.Limiter
	LLM          llm.Generator
	LLMTimeout   time.Duration
	Now          func() time.Time
}

// GenerateParams are the inputs of one generation request.
type GenerateParams struct {
	UserID             string
	JobApplicationID   string
	JobDescription     string
	CustomInstructions string
}

// CooldownStatus reports the seconds left before each operation may run again.
type CooldownStatus struct {
	Generate int `json:"generate"`
	Analyze  int `json:"analyze"`
}

// Generate builds and stores the next resume version for an application. Only a stored
// version starts the generate cooldown.
func (s *Service) Generate(ctx context.Context, p GenerateParams) (Version, error) {
	if s.Limiter == nil || s.Repo == nil || s.Inputs == nil {
		return Version{}, apperr.Configuration("resume service not configured")
	}
	reservation, err := s.Limiter.Reserve(ctx, p.UserID, ratelimit.ClassGenerate)
	if err != nil {
		return Version{}, err
	}

	v, err := s.generate(ctx, p)
	if err != nil {
		if releaseErr := reservation.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			telemetry.Warn("resume.generate.release_failed", map[string]any{
				"user_id": p.UserID,
				"error":   releaseErr.Error(),
			})
		}
		metrics.IncGenerationFailure(failureReason(err))
		telemetry.Warn("resume.generate.failed", map[string]any{
			"user_id":        p.UserID,
			"application_id": p.JobApplicationID,
			"error":          err.Error(),
		})
		return Version{}, err
	}

	if err := reservation.Commit(context.WithoutCancel(ctx)); err != nil {
		telemetry.Warn("resume.generate.commit_failed", map[string]any{
			"user_id": p.UserID,
			"error":   err.Error(),
		})
	}
	metrics.IncGeneration(v.Source)
	telemetry.Info("resume.generate.stored", map[string]any{
		"user_id":        p.UserID,
		"application_id": v.JobApplicationID,
		"version":        v.Version,
		"source":         v.Source,
	})
	return v, nil
}

func (s *Service) generate(ctx context.Context, p GenerateParams) (Version, error) {
	if s.LLM == nil {
		return Version{}, apperr.Configuration("no generative service is configured")
	}

	in, err := s.Inputs.Aggregate(ctx, p.UserID, p.JobApplicationID)
	if err != nil {
		return Version{}, err
	}
	if override := strings.TrimSpace(p.JobDescription); override != "" {
		if utf8.RuneCountInString(override) < minJobDescriptionLength {
			return Version{}, apperr.Validation("job description must be at least %d characters", minJobDescriptionLength)
		}
		in.Job.Description = override
	}
	if strings.TrimSpace(in.Job.Description) == "" {
		return Version{}, apperr.Validation("job description is required to generate a resume")
	}

	req, err := BuildRequest(in, p.CustomInstructions)
	if err != nil {
		return Version{}, err
	}

	raw, err := s.call(ctx, req)
	var content, source string
	switch {
	case err == nil:
		content, err = parseGenerated(raw)
		if err != nil {
			return Version{}, err
		}
		source = SourceAI
	case llm.IsQuota(err):
		telemetry.Warn("resume.generate.fallback", map[string]any{
			"user_id": p.UserID,
			"reason":  quotaFallbackReason,
			"error":   err.Error(),
		})
		doc := fallback.Mark(fallback.Generate(in), quotaFallbackReason, s.now())
		content, err = doc.Marshal()
		if err != nil {
			return Version{}, err
		}
		source = SourceFallback
	default:
		return Version{}, fmt.Errorf("%w: %s", apperr.ErrUpstream, err.Error())
	}

	v, err := s.Repo.Create(ctx, Version{
		ID:               uuid.NewString(),
		UserID:           p.UserID,
		JobApplicationID: p.JobApplicationID,
		Content:          content,
		Source:           source,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return Version{}, fmt.Errorf("store resume version: %w", err)
	}
	return v, nil
}

func (s *Service) call(ctx context.Context, req llm.Request) (string, error) {
	timeout := s.LLMTimeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.LLM.Generate(callCtx, req)
	metrics.ObserveLLMCall(req.Operation, time.Since(start))
	return raw, err
}

// BuildRequest assembles the generation request. Explicit instructions win over the
// saved profile prompt, which wins over the built-in template.
func BuildRequest(in profiles.GenerationInput, customInstructions string) (llm.Request, error) {
	payload, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return llm.Request{}, fmt.Errorf("encode generation input: %w", err)
	}
	return llm.Request{
		Operation: string(ratelimit.ClassGenerate),
		System:    systemPrompt(customInstructions, in.Profile.CustomPrompt),
		Prompt:    "Candidate data and target job:\n" + string(payload),
		Schema:    model.SchemaJSON(),
	}, nil
}

func systemPrompt(custom, saved string) string {
	if c := strings.TrimSpace(custom); c != "" {
		return c
	}
	if s := strings.TrimSpace(saved); s != "" {
		return s
	}
	return llm.ResumeSystemPrompt()
}

// parseGenerated never falls back: a malformed answer is the caller's to fix by import.
func parseGenerated(raw string) (string, error) {
	obj, err := llm.ExtractJSON(raw)
	if err != nil {
		return "", fmt.Errorf("%w: response contained no JSON object; %s", apperr.ErrGeneration, manualImportHint)
	}
	if err := model.ValidateJSON(obj); err != nil {
		return "", fmt.Errorf("%w: %s; %s", apperr.ErrGeneration, err.Error(), manualImportHint)
	}
	doc, err := model.Decode(obj)
	if err != nil {
		return "", fmt.Errorf("%w: %s; %s", apperr.ErrGeneration, err.Error(), manualImportHint)
	}
	return doc.Normalize().Marshal()
}

// Import stores resume JSON produced outside the service. It must be an object with a
// non-blank summary or an experience or projects list or object, even an empty one.
func (s *Service) Import(ctx context.Context, userID, applicationID, raw string) (Version, error) {
	if s.Repo == nil {
		return Version{}, apperr.Configuration("resume service not configured")
	}
	if err := s.requireApplication(ctx, userID, applicationID); err != nil {
		return Version{}, err
	}

	obj, err := llm.ExtractJSON(raw)
	if err != nil {
		return Version{}, apperr.Validation("content must be a JSON object")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return Version{}, apperr.Validation("content must be a JSON object")
	}
	if !hasResumeContent(fields) {
		return Version{}, apperr.Validation("content needs a summary, experience or projects field")
	}

	v, err := s.Repo.Create(ctx, Version{
		ID:               uuid.NewString(),
		UserID:           userID,
		JobApplicationID: applicationID,
		Content:          obj,
		Source:           SourceImport,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return Version{}, fmt.Errorf("store imported version: %w", err)
	}
	metrics.IncImport()
	telemetry.Info("resume.import.stored", map[string]any{
		"user_id":        userID,
		"application_id": applicationID,
		"version":        v.Version,
	})
	return v, nil
}

func hasResumeContent(fields map[string]any) bool {
	for _, key := range []string{"summary", "experience", "projects"} {
		switch v := fields[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return true
			}
		case []any, map[string]any:
			return true
		}
	}
	return false
}

// List returns the versions of an application, newest first.
func (s *Service) List(ctx context.Context, userID, applicationID string) ([]Version, error) {
	if err := s.requireApplication(ctx, userID, applicationID); err != nil {
		return nil, err
	}
	return s.Repo.ListByApplication(ctx, userID, applicationID)
}

// Get returns one version.
func (s *Service) Get(ctx context.Context, userID, versionID string) (Version, error) {
	v, err := s.Repo.GetByID(ctx, userID, versionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Version{}, apperr.NotFound("resume version")
		}
		return Version{}, err
	}
	return v, nil
}

// Delete removes a version without renumbering the rest.
func (s *Service) Delete(ctx context.Context, userID, versionID string) error {
	if err := s.Repo.Delete(ctx, userID, versionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("resume version")
		}
		return err
	}
	telemetry.Info("resume.deleted", map[string]any{
		"user_id":    userID,
		"version_id": versionID,
	})
	return nil
}

// RenderPDF lays out a stored version as a PDF. Imported content is read leniently.
func (s *Service) RenderPDF(ctx context.Context, userID, versionID string) (Version, []byte, error) {
	v, err := s.Get(ctx, userID, versionID)
	if err != nil {
		return Version{}, nil, err
	}
	doc, err := model.DecodeLenient(v.Content)
	if err != nil {
		return Version{}, nil, fmt.Errorf("%w: stored content is not a resume document: %s", apperr.ErrRender, err.Error())
	}

	start := time.Now()
	result, err := render.Render(doc.Normalize())
	if err != nil {
		return Version{}, nil, err
	}
	metrics.ObserveRender(time.Since(start), result.Pages)
	return v, result.PDF, nil
}

// Cooldown reports the remaining seconds of both operation classes.
func (s *Service) Cooldown(ctx context.Context, userID string) (CooldownStatus, error) {
	if s.Limiter == nil {
		return CooldownStatus{}, apperr.Configuration("rate limiter not configured")
	}
	gen, err := s.Limiter.Check(ctx, userID, ratelimit.ClassGenerate)
	if err != nil {
		return CooldownStatus{}, err
	}
	analyze, err := s.Limiter.Check(ctx, userID, ratelimit.ClassAnalyze)
	if err != nil {
		return CooldownStatus{}, err
	}
	return CooldownStatus{
		Generate: gen.RemainingSeconds(),
		Analyze:  analyze.RemainingSeconds(),
	}, nil
}

func (s *Service) requireApplication(ctx context.Context, userID, applicationID string) error {
	if s.Applications == nil {
		return apperr.Configuration("applications repository not configured")
	}
	if _, err := s.Applications.GetByID(ctx, userID, applicationID); err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return apperr.NotFound("job application")
		}
		return err
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, apperr.ErrConfiguration):
		return "configuration"
	case errors.Is(err, apperr.ErrValidation):
		return "validation"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrGeneration):
		return "invalid_output"
	case errors.Is(err, apperr.ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}
