package model

import "time"

// TMEntry is a reusable source/target pair in a user's translation memory.
type TMEntry struct {
	ID             string
	UserID         string
	SourceLanguage string
	TargetLanguage string
	SourceText     string
	TargetText     string
	Confidence     float64 // in [0, 1]
	DocumentID     *string // informational back-reference, not ownership
	Context        *string
	Tags           []string
	UseCount       int
	IsVerified     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// JobStatus is the state of a document processing job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// ProcessingJob records one request to extract and segment a document.
type ProcessingJob struct {
	ID         string
	DocumentID string
	Status     JobStatus
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
