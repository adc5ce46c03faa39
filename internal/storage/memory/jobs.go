// Package memory provides mutex-guarded in-memory implementations of
// the storage contracts. They back the test suite and single-instance
// runs without GCP configured; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcinh992/bank-transactions-api/internal/apperr"
	"github.com/marcinh992/bank-transactions-api/internal/importjob"
)

// JobStore is an in-memory importjob.Repository.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*importjob.ImportJob
}

// NewJobStore creates an empty JobStore.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*importjob.ImportJob)}
}

// Create implements importjob.Repository.
func (s *JobStore) Create(ctx context.Context, job *importjob.ImportJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job already exists: %s", job.ID)
	}

	// Store a copy to avoid external modifications
	jobCopy := *job
	s.jobs[job.ID] = &jobCopy
	return nil
}

// FindByID implements importjob.Repository.
func (s *JobStore) FindByID(ctx context.Context, id string) (*importjob.ImportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, apperr.NotFound("import job not found: %s", id)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ExistsForMonth implements importjob.Repository.
func (s *JobStore) ExistsForMonth(ctx context.Context, yearMonth string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, job := range s.jobs {
		if job.YearMonth == yearMonth {
			return true, nil
		}
	}
	return false, nil
}

// Save implements importjob.Repository.
func (s *JobStore) Save(ctx context.Context, job *importjob.ImportJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.ID] = &jobCopy
	return nil
}

// Ensure JobStore implements the repository contract.
var _ importjob.Repository = (*JobStore)(nil)
