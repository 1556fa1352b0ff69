package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobtracker-backend/internal/analyses"
	"jobtracker-backend/internal/applications"
	"jobtracker-backend/internal/llm"
	"jobtracker-backend/internal/llm/gemini"
	"jobtracker-backend/internal/llm/openai"
	"jobtracker-backend/internal/profiles"
	"jobtracker-backend/internal/ratelimit"
	"jobtracker-backend/internal/resumes"
	"jobtracker-backend/internal/services/health"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/server"
	"jobtracker-backend/internal/shared/storage/db"
	"jobtracker-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router built from them.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Redis            redis.UniversalClient
	Limiter          *ratelimit.Limiter
	Generator        llm.Generator
	ProfilesRepo     profiles.Repo
	ApplicationsRepo applications.Repo
	ResumesRepo      resumes.Repo
	ProfilesService  *profiles.Service
	ResumesService   *resumes.Service
	AnalysesService  *analyses.Service
}

// Build connects stores, selects the generative provider and wires handlers.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, DB: sqlDB}

	if err := app.buildLimiter(ctx); err != nil {
		app.Close()
		return nil, err
	}
	generator, err := NewGenerator(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Generator = generator

	app.buildServices()
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Health:          health.NewService(app.DB, app.Redis),
		ResumeHandler:   resumes.NewHandler(app.ResumesService),
		AnalysisHandler: analyses.NewHandler(app.AnalysesService),
		ProfileHandler:  profiles.NewHandler(app.ProfilesService),
	})
	return app, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database", map[string]any{"mode": "memory", "reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database", map[string]any{"mode": "memory", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func (a *App) buildLimiter(ctx context.Context) error {
	cooldowns := map[ratelimit.Class]time.Duration{
		ratelimit.ClassGenerate: a.Config.GenerateCooldown,
		ratelimit.ClassAnalyze:  a.Config.AnalyzeCooldown,
	}
	if a.Config.RateLimitBackend != "redis" {
		a.Limiter = ratelimit.New(ratelimit.NewMemoryBackend(nil), cooldowns)
		return nil
	}
	if a.Config.RedisAddr == "" {
		return fmt.Errorf("RATE_LIMIT_BACKEND=redis requires REDIS_ADDR")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return fmt.Errorf("connect redis: %w", err)
	}
	a.Redis = rdb
	// An in-flight marker outlives the slowest call it guards.
	a.Limiter = ratelimit.New(ratelimit.NewRedisBackend(rdb, 2*a.Config.LLMTimeout), cooldowns)
	return nil
}

// NewGenerator returns nil when no provider is usable; generation then fails with a
// configuration error instead of the process refusing to start.
func NewGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case "none":
		return nil, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			telemetry.Warn("bootstrap.llm", map[string]any{"provider": "openai", "reason": "OPENAI_API_KEY empty"})
			return nil, nil
		}
		return openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	default:
		if cfg.GeminiAPIKey == "" {
			telemetry.Warn("bootstrap.llm", map[string]any{"provider": "gemini", "reason": "GEMINI_API_KEY empty"})
			return nil, nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	}
}

func (a *App) buildServices() {
	if a.DB != nil {
		a.ProfilesRepo = &profiles.PGRepo{DB: a.DB}
		a.ApplicationsRepo = &applications.PGRepo{DB: a.DB}
		a.ResumesRepo = &resumes.PGRepo{DB: a.DB}
	} else {
		a.ProfilesRepo = profiles.NewMemoryRepo()
		a.ApplicationsRepo = applications.NewMemoryRepo()
		a.ResumesRepo = resumes.NewMemoryRepo()
	}

	a.ProfilesService = profiles.NewService(a.ProfilesRepo)
	a.ResumesService = &resumes.Service{
		Repo:         a.ResumesRepo,
		Inputs:       profiles.NewAggregator(a.ProfilesRepo, a.ApplicationsRepo),
		Applications: a.ApplicationsRepo,
		Limiter:      a.Limiter,
		LLM:          a.Generator,
		LLMTimeout:   a.Config.LLMTimeout,
	}
	a.AnalysesService = &analyses.Service{
		Applications: a.ApplicationsRepo,
		Versions:     a.ResumesRepo,
		Limiter:      a.Limiter,
		LLM:          a.Generator,
		LLMTimeout:   a.Config.LLMTimeout,
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
