package applications

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]JobApplication // applicationID -> application
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]JobApplication),
	}
}

// Put stores or replaces an application.
func (r *MemoryRepo) Put(app JobApplication) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[app.ID] = app
}

// GetByID returns the application when it belongs to userID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, applicationID string) (JobApplication, error) {
	if err := ctx.Err(); err != nil {
		return JobApplication{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.data[applicationID]
	if !ok || app.UserID != userID {
		return JobApplication{}, ErrNotFound
	}
	return app, nil
}

var _ Repo = (*MemoryRepo)(nil)
