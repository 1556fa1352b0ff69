package applications

import (
	"context"
	"errors"
)

// ErrNotFound indicates the application does not exist for the user.
var ErrNotFound = errors.New("job application not found")

// Repo reads job applications. Writes belong to the CRUD surface.
type Repo interface {
	GetByID(ctx context.Context, userID, applicationID string) (JobApplication, error)
}
