// Package importjob owns the import job lifecycle: the job model, the
// creation service and the processor that drives one job through its
// state machine.
package importjob

import "time"

// Status is the lifecycle state of an import job. Transitions are
// RECEIVED -> PROCESSING -> COMPLETED | FAILED; no transition leaves a
// terminal state.
type Status string

const (
	StatusReceived   Status = "RECEIVED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// ImportJob is one import attempt for exactly one target month. After
// creation only the Processor mutates it.
type ImportJob struct {
	ID        string `json:"id"`
	YearMonth string `json:"yearMonth"`
	FileName  string `json:"fileName"`
	Status    Status `json:"status"`

	TotalRows    int `json:"totalRows"`
	ImportedRows int `json:"importedRows"`
	InvalidRows  int `json:"invalidRows"`

	CreatedAt  time.Time  `json:"createdAt"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`

	// ErrorMessage is set only on FAILED jobs, truncated to a bounded
	// length.
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Report carries the running counters of one import run.
// TotalRows == ImportedRows + InvalidRows once the run is over.
type Report struct {
	TotalRows    int
	ImportedRows int
	InvalidRows  int
}
