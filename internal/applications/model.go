package applications

import "time"

// JobApplication is a tracked application; resumes are versioned per application.
type JobApplication struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	JobTitle       string    `json:"jobTitle"`
	JobDescription string    `json:"jobDescription"`
	Platform       string    `json:"platform"`
	ApplicationURL string    `json:"applicationUrl"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}
