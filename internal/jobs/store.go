// Package jobs keeps the in-memory registry of verification jobs.
//
// Jobs live for the lifetime of the process; there is no durable storage.
// The store is constructed once per process and passed by reference, never
// held as a package-level singleton, so tests can isolate state with their
// own instances. All reads return snapshots; callers never see live
// references into the store.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AH100-1/book-project/internal/models"
)

// ErrNotFound is returned when a job id is unknown (or already deleted).
var ErrNotFound = errors.New("job not found")

// Store is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*entry
}

type entry struct {
	job    models.VerificationJob
	cancel context.CancelFunc
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*entry)}
}

// Create registers a new pending job and returns its snapshot.
func (s *Store) Create(inputFile, region, schoolLevel string) models.VerificationJob {
	now := time.Now()
	job := models.VerificationJob{
		ID:             uuid.New().String()[:8],
		Status:         models.JobStatusPending,
		CurrentMessage: "waiting to start",
		InputFile:      inputFile,
		Region:         region,
		SchoolLevel:    schoolLevel,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = &entry{job: job}
	s.mu.Unlock()

	return job
}

// SetCancel attaches the cancel function of the goroutine processing a job.
// Delete calls it so a removed job stops its loop cooperatively.
func (s *Store) SetCancel(id string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[id]; ok {
		e.cancel = cancel
	}
}

// Get returns a snapshot of one job.
func (s *Store) Get(id string) (models.VerificationJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[id]
	if !ok {
		return models.VerificationJob{}, false
	}
	return snapshot(e.job), true
}

// List returns snapshots of all jobs, newest first.
func (s *Store) List() []models.VerificationJob {
	s.mu.RLock()
	out := make([]models.VerificationJob, 0, len(s.jobs))
	for _, e := range s.jobs {
		out = append(out, snapshot(e.job))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Delete removes a job and cancels its loop if one is still running.
// The loop itself may outlive the record briefly; its updates become no-ops.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	if ok && e.cancel != nil {
		e.cancel()
	}
	return ok
}

// Start moves a pending job to running and records the batch size.
func (s *Store) Start(id string, total int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if e.job.Status != models.JobStatusPending {
		return fmt.Errorf("job %s is %s, cannot start", id, e.job.Status)
	}
	e.job.Status = models.JobStatusRunning
	e.job.Total = total
	e.job.CurrentMessage = message
	e.job.UpdatedAt = time.Now()
	return nil
}

// AppendOutcome commits one processed record: the outcome is appended, the
// progress counter and message advance. Progress never exceeds the total.
func (s *Store) AppendOutcome(id string, outcome models.VerificationOutcome, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if e.job.Status != models.JobStatusRunning {
		return fmt.Errorf("job %s is %s, cannot append", id, e.job.Status)
	}
	e.job.Outcomes = append(e.job.Outcomes, outcome)
	e.job.Progress = len(e.job.Outcomes)
	if e.job.Progress > e.job.Total {
		e.job.Progress = e.job.Total
	}
	e.job.CurrentMessage = message
	e.job.UpdatedAt = time.Now()
	return nil
}

// Complete moves a running job to completed and records the result handle.
// The outcome sequence is frozen from here on.
func (s *Store) Complete(id, resultHandle, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if e.job.Status != models.JobStatusRunning {
		return fmt.Errorf("job %s is %s, cannot complete", id, e.job.Status)
	}
	e.job.Status = models.JobStatusCompleted
	e.job.ResultHandle = resultHandle
	e.job.CurrentMessage = message
	e.job.UpdatedAt = time.Now()
	return nil
}

// Fail moves a job to failed with the error surfaced as the current message.
// Outcomes accumulated so far stay visible.
func (s *Store) Fail(id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if e.job.Terminal() {
		return fmt.Errorf("job %s is already %s", id, e.job.Status)
	}
	e.job.Status = models.JobStatusFailed
	e.job.CurrentMessage = message
	e.job.UpdatedAt = time.Now()
	return nil
}

func snapshot(job models.VerificationJob) models.VerificationJob {
	copied := job
	if len(job.Outcomes) > 0 {
		copied.Outcomes = make([]models.VerificationOutcome, len(job.Outcomes))
		copy(copied.Outcomes, job.Outcomes)
	}
	return copied
}
