package models

import "time"

// VerificationJob is one asynchronous batch run over an uploaded file.
type VerificationJob struct {
	ID             string                `json:"id"`
	Status         string                `json:"status"`
	Progress       int                   `json:"progress"`
	Total          int                   `json:"total"`
	CurrentMessage string                `json:"message"`
	ResultHandle   string                `json:"result_file,omitempty"`
	Outcomes       []VerificationOutcome `json:"outcomes,omitempty"`

	// Submission parameters
	InputFile   string `json:"input_file,omitempty"`
	Region      string `json:"region,omitempty"`
	SchoolLevel string `json:"school_level,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Job statuses
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Terminal reports whether the job can no longer change.
func (j *VerificationJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
