package queue

import "time"

// DefaultQueueName is used when no queue is configured.
const DefaultQueueName = "notifications"

// JobStatus is the broker-side state of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one unit of deferred work held by the broker.
type Job struct {
	ID          string        `json:"id"`
	Queue       string        `json:"queue"`
	Name        string        `json:"name"`           // handler name
	Type        string        `json:"type,omitempty"` // domain label used in logs
	RecipientID string        `json:"recipient_id"`
	Payload     []byte        `json:"payload"`
	Status      JobStatus     `json:"status"`
	Attempts    int           `json:"attempts"` // claims so far, including the current one
	MaxAttempts int           `json:"max_attempts"`
	Backoff     time.Duration `json:"backoff"` // delay applied before the current run
	RunAt       time.Time     `json:"run_at"`
	LockedUntil *time.Time    `json:"locked_until,omitempty"`
	LockedBy    string        `json:"locked_by,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// FailedJob is an entry of the bounded failed-job record.
type FailedJob struct {
	Job      Job       `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}
