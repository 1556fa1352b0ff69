// Package analyses scores how well a stored resume version fits its job application.
package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtracker-backend/internal/applications"
	"jobtracker-backend/internal/llm"
	"jobtracker-backend/internal/ratelimit"
	"jobtracker-backend/internal/resumes"
	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/telemetry"
)

const defaultLLMTimeout = 60 * time.Second

// Service runs fit analyses and stores the result on the analyzed version.
type Service struct {
	Applications applications.Repo
	Versions     resumes.Repo
	Limiter      *ratelimit.Limiter
	LLM          llm.Generator
	LLMTimeout   time.Duration
	Now          func() time.Time
}

// Analyze scores versionID against the description of applicationID. A successful
// analysis replaces any previous one and starts the analyze cooldown.
func (s *Service) Analyze(ctx context.Context, userID, applicationID, versionID string) (resumes.Analysis, error) {
	if s.Limiter == nil || s.Applications == nil || s.Versions == nil {
		return resumes.Analysis{}, apperr.Configuration("analysis service not configured")
	}
	reservation, err := s.Limiter.Reserve(ctx, userID, ratelimit.ClassAnalyze)
	if err != nil {
		return resumes.Analysis{}, err
	}

	analysis, err := s.analyze(ctx, userID, applicationID, versionID)
	if err != nil {
		if releaseErr := reservation.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			telemetry.Warn("analysis.release_failed", map[string]any{
				"user_id": userID,
				"error":   releaseErr.Error(),
			})
		}
		metrics.IncAnalysis("failed")
		telemetry.Warn("analysis.failed", map[string]any{
			"user_id":    userID,
			"version_id": versionID,
			"error":      err.Error(),
		})
		return resumes.Analysis{}, err
	}

	if err := reservation.Commit(context.WithoutCancel(ctx)); err != nil {
		telemetry.Warn("analysis.commit_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	metrics.IncAnalysis("completed")
	telemetry.Info("analysis.completed", map[string]any{
		"user_id":     userID,
		"version_id":  versionID,
		"match_score": analysis.MatchScore,
	})
	return analysis, nil
}

func (s *Service) analyze(ctx context.Context, userID, applicationID, versionID string) (resumes.Analysis, error) {
	if s.LLM == nil {
		return resumes.Analysis{}, apperr.Configuration("no generative service is configured")
	}

	app, err := s.Applications.GetByID(ctx, userID, applicationID)
	if err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return resumes.Analysis{}, apperr.NotFound("job application")
		}
		return resumes.Analysis{}, fmt.Errorf("load application: %w", err)
	}
	description := strings.TrimSpace(app.JobDescription)
	if description == "" {
		return resumes.Analysis{}, apperr.Validation("job application has no description to analyze against")
	}

	version, err := s.Versions.GetByID(ctx, userID, versionID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return resumes.Analysis{}, apperr.NotFound("resume version")
		}
		return resumes.Analysis{}, fmt.Errorf("load version: %w", err)
	}
	if version.JobApplicationID != applicationID {
		return resumes.Analysis{}, apperr.NotFound("resume version")
	}

	raw, err := s.call(ctx, BuildRequest(description, version.Content))
	if err != nil {
		return resumes.Analysis{}, fmt.Errorf("%w: %s", apperr.ErrUpstream, err.Error())
	}

	obj, err := llm.ExtractJSON(raw)
	if err != nil {
		return resumes.Analysis{}, fmt.Errorf("%w: analysis response contained no JSON object", apperr.ErrGeneration)
	}
	if err := validateResult(obj); err != nil {
		return resumes.Analysis{}, fmt.Errorf("%w: %s", apperr.ErrGeneration, err.Error())
	}
	analysis, err := parseResult(obj, s.now())
	if err != nil {
		return resumes.Analysis{}, fmt.Errorf("%w: %s", apperr.ErrGeneration, err.Error())
	}

	if err := s.Versions.SetAnalysis(ctx, userID, versionID, analysis); err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return resumes.Analysis{}, apperr.NotFound("resume version")
		}
		return resumes.Analysis{}, fmt.Errorf("store analysis: %w", err)
	}
	return analysis, nil
}

// BuildRequest pairs the job description with the stored resume content.
func BuildRequest(jobDescription, resumeContent string) llm.Request {
	var b strings.Builder
	b.WriteString("Job description:\n")
	b.WriteString(jobDescription)
	b.WriteString("\n\nResume (JSON):\n")
	b.WriteString(resumeContent)
	return llm.Request{
		Operation: string(ratelimit.ClassAnalyze),
		System:    llm.AnalysisSystemPrompt(),
		Prompt:    b.String(),
		Schema:    resultSchema,
	}
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

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
