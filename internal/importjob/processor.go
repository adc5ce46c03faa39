package importjob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/marcinh992/bank-transactions-api/internal/apperr"
	"github.com/marcinh992/bank-transactions-api/internal/csv"
	"github.com/marcinh992/bank-transactions-api/internal/stats"
	"github.com/marcinh992/bank-transactions-api/internal/transactions"
)

const (
	// batchSize is the flush threshold of the record batch buffer.
	batchSize = 1000

	// maxErrorMessageLen bounds the error message persisted on a
	// FAILED job.
	maxErrorMessageLen = 300
)

// Processor drives one import job through its state machine: it is the
// only component that mutates a job after creation, and it persists
// the job at every transition so a poller can observe PROCESSING
// before a terminal state.
type Processor struct {
	reader       *csv.TransactionReader
	repo         Repository
	writer       *transactions.BatchWriter
	materializer *stats.Materializer
	log          zerolog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(reader *csv.TransactionReader, repo Repository, writer *transactions.BatchWriter, materializer *stats.Materializer, log zerolog.Logger) *Processor {
	return &Processor{
		reader:       reader,
		repo:         repo,
		writer:       writer,
		materializer: materializer,
		log:          log,
	}
}

// Process runs the full pipeline for one job. Row-level failures are
// counted and never abort the run; any other failure after the job
// entered PROCESSING lands it in FAILED with a bounded error message.
func (p *Processor) Process(ctx context.Context, jobID string, fileBytes []byte) error {
	job, err := p.repo.FindByID(ctx, jobID)
	if err != nil {
		// The creator persisted this job moments ago; its absence is an
		// internal consistency error, there is no job record to fail.
		p.log.Error().Err(err).Str("job_id", jobID).Msg("import job missing at processing time")
		return err
	}

	if err := p.start(ctx, job); err != nil {
		p.fail(ctx, job, err)
		return err
	}

	report, err := p.importTransactions(ctx, job, fileBytes)
	if err != nil {
		p.fail(ctx, job, err)
		return err
	}

	if err := p.complete(ctx, job, report); err != nil {
		p.fail(ctx, job, err)
		return err
	}

	p.log.Info().
		Str("job_id", job.ID).
		Str("year_month", job.YearMonth).
		Int("total_rows", report.TotalRows).
		Int("imported_rows", report.ImportedRows).
		Int("invalid_rows", report.InvalidRows).
		Msg("import job completed")

	return nil
}

// importTransactions streams the file through map -> validate ->
// record, batching writes at batchSize. The final flush covers the
// remainder; an empty remainder is a no-op.
func (p *Processor) importTransactions(ctx context.Context, job *ImportJob, fileBytes []byte) (Report, error) {
	var report Report

	if _, err := time.Parse(csv.YearMonthLayout, job.YearMonth); err != nil {
		return report, fmt.Errorf("invalid target month %q: %w", job.YearMonth, err)
	}

	rows, err := p.reader.Open(fileBytes)
	if err != nil {
		return report, err
	}

	batch := make([]*transactions.Record, 0, batchSize)

	for {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report, err
		}

		report.TotalRows++

		draft, err := csv.MapRow(row)
		if err != nil {
			report.InvalidRows++
			continue
		}
		if err := csv.ValidateRow(draft, job.YearMonth); err != nil {
			report.InvalidRows++
			continue
		}

		batch = append(batch, transactions.NewRecord(draft, job.ID, job.YearMonth))
		report.ImportedRows++

		if len(batch) >= batchSize {
			if err := p.writer.SaveBatch(ctx, batch); err != nil {
				return report, err
			}
			batch = batch[:0]
		}
	}

	if err := p.writer.SaveBatch(ctx, batch); err != nil {
		return report, err
	}

	return report, nil
}

// start transitions the job to PROCESSING and persists immediately so
// the status is externally observable mid-run.
func (p *Processor) start(ctx context.Context, job *ImportJob) error {
	now := time.Now().UTC()
	job.Status = StatusProcessing
	job.StartedAt = &now
	return p.repo.Save(ctx, job)
}

// complete materializes the month's stats, records the final counters
// and transitions the job to COMPLETED.
func (p *Processor) complete(ctx context.Context, job *ImportJob, report Report) error {
	job.TotalRows = report.TotalRows
	job.ImportedRows = report.ImportedRows
	job.InvalidRows = report.InvalidRows

	if err := p.materializer.MaterializeForMonth(ctx, job.YearMonth); err != nil {
		return err
	}

	now := time.Now().UTC()
	job.Status = StatusCompleted
	job.FinishedAt = &now
	return p.repo.Save(ctx, job)
}

// fail transitions the job to FAILED with a bounded error message.
func (p *Processor) fail(ctx context.Context, job *ImportJob, cause error) {
	p.log.Error().
		Err(cause).
		Str("job_id", job.ID).
		Str("year_month", job.YearMonth).
		Msg("import job failed")

	now := time.Now().UTC()
	job.Status = StatusFailed
	job.FinishedAt = &now
	job.ErrorMessage = safeMessage(cause)

	if err := p.repo.Save(ctx, job); err != nil {
		p.log.Error().Err(err).Str("job_id", job.ID).Msg("persisting FAILED status failed")
	}
}

// safeMessage derives the persisted error message: the error text when
// present, the error kind otherwise, truncated to maxErrorMessageLen.
// The cut never splits a multi-byte rune.
func safeMessage(err error) string {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if strings.TrimSpace(msg) == "" {
		msg = string(apperr.KindOf(err))
	}
	if len(msg) > maxErrorMessageLen {
		cut := maxErrorMessageLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}
