package resumes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores resume versions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Version
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]Version),
	}
}

// Create assigns max+1 under the write lock, so concurrent creates never collide.
func (r *MemoryRepo) Create(ctx context.Context, v Version) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := 0
	for _, existing := range r.byID {
		if existing.JobApplicationID == v.JobApplicationID && existing.Version > latest {
			latest = existing.Version
		}
	}
	v.Version = latest + 1
	v.Analysis = nil
	r.byID[v.ID] = v
	return v, nil
}

// GetByID returns a version by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, versionID string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[versionID]
	if !ok || v.UserID != userID {
		return Version{}, ErrNotFound
	}
	return copyVersion(v), nil
}

// ListByApplication returns a user's versions of one application, version descending.
func (r *MemoryRepo) ListByApplication(ctx context.Context, userID, applicationID string) ([]Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Version{}
	for _, v := range r.byID {
		if v.UserID == userID && v.JobApplicationID == applicationID {
			out = append(out, copyVersion(v))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Version > out[j].Version
	})
	return out, nil
}

// Delete removes a version. Remaining versions keep their numbers.
func (r *MemoryRepo) Delete(ctx context.Context, userID, versionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[versionID]
	if !ok || v.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, versionID)
	return nil
}

// SetAnalysis replaces the version's analysis.
func (r *MemoryRepo) SetAnalysis(ctx context.Context, userID, versionID string, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[versionID]
	if !ok || v.UserID != userID {
		return ErrNotFound
	}
	a := copyAnalysis(analysis)
	v.Analysis = &a
	r.byID[versionID] = v
	return nil
}

func copyVersion(v Version) Version {
	if v.Analysis != nil {
		a := copyAnalysis(*v.Analysis)
		v.Analysis = &a
	}
	return v
}

func copyAnalysis(a Analysis) Analysis {
	if a.ScoreBreakdown != nil {
		breakdown := make(map[string]int, len(a.ScoreBreakdown))
		for k, v := range a.ScoreBreakdown {
			breakdown[k] = v
		}
		a.ScoreBreakdown = breakdown
	}
	return a
}

var _ Repo = (*MemoryRepo)(nil)
