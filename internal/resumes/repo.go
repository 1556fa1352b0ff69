package resumes

import (
	"context"
	"errors"
)

// ErrNotFound indicates the version does not exist for the user.
var ErrNotFound = errors.New("resume version not found")

// Repo defines persistence operations for resume versions.
type Repo interface {
	// Create stores v and assigns the next version number for its application.
	Create(ctx context.Context, v Version) (Version, error)
	GetByID(ctx context.Context, userID, versionID string) (Version, error)
	// ListByApplication returns versions newest first.
	ListByApplication(ctx context.Context, userID, applicationID string) ([]Version, error)
	Delete(ctx context.Context, userID, versionID string) error
	SetAnalysis(ctx context.Context, userID, versionID string, analysis Analysis) error
}
