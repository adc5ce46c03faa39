package importjob

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marcinh992/bank-transactions-api/internal/apperr"
	"github.com/marcinh992/bank-transactions-api/internal/jobs"
)

// Archiver stores the raw bytes of an uploaded file for audit.
// Archiving is best-effort: a failure is logged, never fatal.
type Archiver interface {
	Archive(ctx context.Context, yearMonth, fileName string, data []byte) (string, error)
}

// Service is the synchronous boundary of the import pipeline: it
// creates jobs and serves job lookups. Processing itself runs off the
// caller's path via the task queue.
type Service struct {
	repo      Repository
	publisher jobs.Publisher
	archiver  Archiver
	log       zerolog.Logger
}

// NewService creates an import Service. archiver may be nil when no
// archive bucket is configured.
func NewService(repo Repository, publisher jobs.Publisher, archiver Archiver, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		archiver:  archiver,
		log:       log,
	}
}

// CreateImport validates that the month is free, creates the job in
// RECEIVED status and enqueues processing. The returned snapshot is
// taken before processing starts. The exists-check and the create are
// not atomic: two concurrent requests for the same month can race past
// the check.
func (s *Service) CreateImport(ctx context.Context, yearMonth, fileName string, file io.Reader) (*ImportJob, error) {
	if file == nil {
		return nil, apperr.FileInvalid("no file uploaded")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFileInvalid, "cannot read uploaded file", err)
	}

	exists, err := s.repo.ExistsForMonth(ctx, yearMonth)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("import already exists for %s", yearMonth)
	}

	job := &ImportJob{
		ID:        uuid.NewString(),
		YearMonth: yearMonth,
		FileName:  fileName,
		Status:    StatusReceived,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}

	if s.archiver != nil {
		if uri, err := s.archiver.Archive(ctx, yearMonth, fileName, data); err != nil {
			s.log.Warn().Err(err).Str("job_id", job.ID).Msg("archiving uploaded file failed")
		} else {
			s.log.Debug().Str("job_id", job.ID).Str("uri", uri).Msg("uploaded file archived")
		}
	}

	if err := s.publisher.PublishImport(ctx, &jobs.ImportTask{JobID: job.ID, FileBytes: data}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("year_month", yearMonth).
		Str("file_name", fileName).
		Msg("import job created")

	return job, nil
}

// GetImport returns the current job snapshot or a not-found error.
func (s *Service) GetImport(ctx context.Context, id string) (*ImportJob, error) {
	return s.repo.FindByID(ctx, id)
}
