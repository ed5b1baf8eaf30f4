package ingest

// Status of an ingestion job. Completed, failed and error are terminal:
// completed is full success, failed means the job ran but indexed nothing,
// error means the worker crashed. Consumers stop polling after any of them.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusError     Status = "error"
)

// Terminal reports whether the status ends the job lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusError
}

// StatusEvent is one record on a job's status channel.
type StatusEvent struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Job is the registry record for one ingestion run. The job id is the site
// name by convention; re-registering a name supersedes the previous record.
type Job struct {
	JobID         string `json:"job_id"`
	URL           string `json:"url"`
	Status        Status `json:"status"`
	DocumentCount int    `json:"successful_document_count"`
}
