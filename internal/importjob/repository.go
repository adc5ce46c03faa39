package importjob

import "context"

// Repository is the storage contract for import jobs. Jobs are never
// deleted by the service.
type Repository interface {
	// Create persists a new job.
	Create(ctx context.Context, job *ImportJob) error

	// FindByID returns the job or an apperr.KindNotFound error.
	FindByID(ctx context.Context, id string) (*ImportJob, error)

	// ExistsForMonth reports whether any job exists for the month,
	// regardless of status.
	ExistsForMonth(ctx context.Context, yearMonth string) (bool, error)

	// Save upserts the job by id.
	Save(ctx context.Context, job *ImportJob) error
}
