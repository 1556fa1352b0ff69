package analyses

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"jobtracker-backend/internal/applications"
	"jobtracker-backend/internal/llm"
	"jobtracker-backend/internal/ratelimit"
	"jobtracker-backend/internal/resumes"
	"jobtracker-backend/internal/shared/apperr"
)

type stubGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	last    llm.Request
}

func (g *stubGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = req
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	reply := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return reply, nil
}

type fixture struct {
	svc     *Service
	gen     *stubGenerator
	repo    *resumes.MemoryRepo
	now     time.Time
	version resumes.Version
}

func newFixture(t *testing.T, replies ...string) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}

	apps := applications.NewMemoryRepo()
	apps.Put(applications.JobApplication{ID: "app-1", UserID: "user-1", JobTitle: "Backend Engineer", JobDescription: "Build Go services with Postgres"})
	apps.Put(applications.JobApplication{ID: "app-2", UserID: "user-1", JobTitle: "No description"})

	f.repo = resumes.NewMemoryRepo()
	v, err := f.repo.Create(context.Background(), resumes.Version{
		ID: "v-1", UserID: "user-1", JobApplicationID: "app-1",
		Content: `{"summary":"Go engineer"}`, Source: resumes.SourceImport,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.version = v

	if len(replies) == 0 {
		replies = []string{`{"matchScore":72,"scoreBreakdown":{"skills":80,"experience":65},"suggestions":"Mention Postgres"}`}
	}
	f.gen = &stubGenerator{replies: replies}
	f.svc = &Service{
		Applications: apps,
		Versions:     f.repo,
		Limiter: ratelimit.New(ratelimit.NewMemoryBackend(func() time.Time { return f.now }), map[ratelimit.Class]time.Duration{
			ratelimit.ClassAnalyze: time.Minute,
		}),
		LLM: f.gen,
		Now: func() time.Time { return f.now },
	}
	return f
}

func TestAnalyzeStoresResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.Analyze(ctx, "user-1", "app-1", "v-1")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.MatchScore != 72 || got.ScoreBreakdown["skills"] != 80 || got.Suggestions != "Mention Postgres" {
		t.Fatalf("unexpected analysis %+v", got)
	}
	if !got.AnalyzedAt.Equal(f.now) {
		t.Fatalf("expected analyzedAt %v, got %v", f.now, got.AnalyzedAt)
	}

	stored, err := f.repo.GetByID(ctx, "user-1", "v-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Analysis == nil || stored.Analysis.MatchScore != 72 {
		t.Fatalf("expected stored analysis, got %+v", stored.Analysis)
	}
	if !strings.Contains(f.gen.last.Prompt, "Build Go services with Postgres") || !strings.Contains(f.gen.last.Prompt, `"summary":"Go engineer"`) {
		t.Fatalf("prompt must carry the job description and resume, got %q", f.gen.last.Prompt)
	}
	if f.gen.last.System != llm.AnalysisSystemPrompt() || f.gen.last.Schema != resultSchema {
		t.Fatalf("unexpected request framing")
	}
}

func TestAnalyzeOverwritesPreviousAnalysis(t *testing.T) {
	f := newFixture(t,
		`{"matchScore":40,"scoreBreakdown":{"skills":40},"suggestions":"first"}`,
		`{"matchScore":90,"scoreBreakdown":{"keywords":95},"suggestions":["second","third"]}`,
	)
	ctx := context.Background()

	if _, err := f.svc.Analyze(ctx, "user-1", "app-1", "v-1"); err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	f.now = f.now.Add(2 * time.Minute)
	if _, err := f.svc.Analyze(ctx, "user-1", "app-1", "v-1"); err != nil {
		t.Fatalf("second Analyze: %v", err)
	}

	stored, err := f.repo.GetByID(ctx, "user-1", "v-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	a := stored.Analysis
	if a == nil || a.MatchScore != 90 || a.Suggestions != "second\nthird" {
		t.Fatalf("expected second analysis, got %+v", a)
	}
	if _, ok := a.ScoreBreakdown["skills"]; ok {
		t.Fatalf("breakdown must be replaced, got %+v", a.ScoreBreakdown)
	}
	if !a.AnalyzedAt.Equal(f.now) {
		t.Fatalf("expected latest timestamp, got %v", a.AnalyzedAt)
	}
}

func TestAnalyzeClampsScores(t *testing.T) {
	f := newFixture(t, "```json\n{\"matchScore\":140,\"scoreBreakdown\":{\"skills\":-5,\"impact\":99.6},\"suggestions\":\"\"}\n```")

	got, err := f.svc.Analyze(context.Background(), "user-1", "app-1", "v-1")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.MatchScore != 100 || got.ScoreBreakdown["skills"] != 0 || got.ScoreBreakdown["impact"] != 100 {
		t.Fatalf("unexpected clamped analysis %+v", got)
	}
}

func TestAnalyzeRateLimitedWithinCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Analyze(ctx, "user-1", "app-1", "v-1"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	f.now = f.now.Add(10 * time.Second)
	_, err := f.svc.Analyze(ctx, "user-1", "app-1", "v-1")
	rl, ok := apperr.AsRateLimit(err)
	if !ok || rl.Operation != "analyze" || rl.RemainingSeconds() != 50 {
		t.Fatalf("expected analyze rate limit with 50s, got %v", err)
	}
}

func TestAnalyzeFailures(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(f *fixture)
		app     string
		version string
		want    error
	}{
		{"no generator", func(f *fixture) { f.svc.LLM = nil }, "app-1", "v-1", apperr.ErrConfiguration},
		{"missing description", nil, "app-2", "v-1", apperr.ErrValidation},
		{"foreign application", nil, "app-9", "v-1", apperr.ErrNotFound},
		{"missing version", nil, "app-1", "v-9", apperr.ErrNotFound},
		{"quota", func(f *fixture) { f.gen.err = &llm.Error{Kind: llm.KindQuota, Message: "quota"} }, "app-1", "v-1", apperr.ErrUpstream},
		{"network", func(f *fixture) { f.gen.err = &llm.Error{Kind: llm.KindUnavailable, Message: "down"} }, "app-1", "v-1", apperr.ErrUpstream},
		{"bad json", func(f *fixture) { f.gen.replies = []string{"sorry"} }, "app-1", "v-1", apperr.ErrGeneration},
		{"schema mismatch", func(f *fixture) { f.gen.replies = []string{`{"matchScore":"high"}`} }, "app-1", "v-1", apperr.ErrGeneration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.setup != nil {
				tc.setup(f)
			}
			_, err := f.svc.Analyze(context.Background(), "user-1", tc.app, tc.version)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			d, err := f.svc.Limiter.Check(context.Background(), "user-1", ratelimit.ClassAnalyze)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if !d.Allowed {
				t.Fatalf("a failed analysis must not start the cooldown")
			}
		})
	}
}

func TestAnalyzeVersionMustMatchApplication(t *testing.T) {
	f := newFixture(t)
	if _, err := f.repo.Create(context.Background(), resumes.Version{ID: "v-2", UserID: "user-1", JobApplicationID: "app-3", Content: `{}`}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := f.svc.Analyze(context.Background(), "user-1", "app-1", "v-2")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSuggestionsText(t *testing.T) {
	cases := map[string]string{
		`"  one line  "`:         "one line",
		`["a", " ", "b", 3]`:     "a\nb",
		`[]`:                     "",
		`{"unexpected":"shape"}`: "",
	}
	for in, want := range cases {
		if got := suggestionsText([]byte(in)); got != want {
			t.Fatalf("suggestionsText(%s) = %q, want %q", in, got, want)
		}
	}
}
