package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/AH100-1/book-project/internal/catalog"
	"github.com/AH100-1/book-project/internal/jobs"
	"github.com/AH100-1/book-project/internal/models"
)

// Runner launches verification jobs in the background. Submission returns as
// soon as the job is registered; callers poll the store for progress. Each
// job runs in its own goroutine with a supervised error boundary: a panic or
// an infrastructure error marks the job failed instead of vanishing.
type Runner struct {
	engine *Engine
	store  *jobs.Store
	wg     sync.WaitGroup
}

// SubmitOptions carries the per-submission hints.
type SubmitOptions struct {
	InputFile   string
	Region      string // region display name, resolved to a partition code
	SchoolLevel string
}

// NewRunner creates a Runner on top of an Engine and its job store.
func NewRunner(e *Engine, store *jobs.Store) *Runner {
	return &Runner{engine: e, store: store}
}

// Submit registers a job for the given records and starts processing it in
// the background. The returned snapshot is the pending job.
func (r *Runner) Submit(records []models.BookRecord, opts SubmitOptions) models.VerificationJob {
	job := r.store.Create(opts.InputFile, opts.Region, opts.SchoolLevel)

	ctx, cancel := context.WithCancel(context.Background())
	r.store.SetCancel(job.ID, cancel)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		defer func() {
			if p := recover(); p != nil {
				log.Printf("job %s panicked: %v", job.ID, p)
				_ = r.store.Fail(job.ID, fmt.Sprintf("internal error: %v", p))
			}
		}()

		provCode := catalog.ProvCode(opts.Region)
		if opts.Region != "" && provCode == "" {
			log.Printf("job %s: unknown region %q, searching default partitions", job.ID, opts.Region)
		}

		if err := r.engine.RunBatch(ctx, job.ID, records, provCode); err != nil {
			if errors.Is(err, context.Canceled) {
				// Job was deleted while running; nothing left to update.
				return
			}
			log.Printf("job %s failed: %v", job.ID, err)
			_ = r.store.Fail(job.ID, err.Error())
		}
	}()

	log.Printf("job %s submitted (%d records, region=%q)", job.ID, len(records), opts.Region)
	return job
}

// Wait blocks until all submitted jobs have finished. Used on shutdown and
// by the one-shot CLI.
func (r *Runner) Wait() {
	r.wg.Wait()
}
