package resumes

import (
	"time"

	"jobtracker-backend/resume/model"
)

// Version sources.
const (
	SourceAI       = model.GeneratorAI
	SourceFallback = model.GeneratorFallback
	SourceImport   = model.GeneratorImport
)

// Version is one immutable resume for a job application. Version numbers start at 1
// and only grow per application; deletions leave gaps.
type Version struct {
	ID               string
	UserID           string
	JobApplicationID string
	Version          int
	Content          string
	Source           string
	Analysis         *Analysis
	CreatedAt        time.Time
}

// Analysis is the fit analysis attached to a version. A new analysis replaces the old one.
type Analysis struct {
	MatchScore     int            `json:"matchScore"`
	ScoreBreakdown map[string]int `json:"scoreBreakdown"`
	Suggestions    string         `json:"suggestions"`
	AnalyzedAt     time.Time      `json:"analyzedAt"`
}
