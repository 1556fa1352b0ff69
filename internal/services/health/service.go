package health

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

const probeTimeout = 2 * time.Second

// Service reports whether the backing stores answer. Nil dependencies are skipped,
// which is the in-memory mode.
type Service struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

// NewService constructs a new health service.
func NewService(db *sql.DB, rdb redis.UniversalClient) *Service {
	return &Service{DB: db, Redis: rdb}
}

// Report is the health payload. Checks maps a dependency to "ok" or its error.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Status probes every configured dependency.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true, Checks: map[string]string{}}
	if s == nil {
		return report
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if s.DB != nil {
		report.record("postgres", s.DB.PingContext(ctx))
	}
	if s.Redis != nil {
		report.record("redis", s.Redis.Ping(ctx).Err())
	}
	return report
}

func (r *Report) record(name string, err error) {
	if err != nil {
		r.OK = false
		r.Checks[name] = err.Error()
		return
	}
	r.Checks[name] = "ok"
}
