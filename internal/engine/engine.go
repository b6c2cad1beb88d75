// Package engine orchestrates the verification pipeline: for each input
// record it resolves an ISBN, checks the catalog for holders, and records a
// per-record outcome with a human-readable reason. Batches run as background
// jobs tracked in the job store.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AH100-1/book-project/internal/cache"
	"github.com/AH100-1/book-project/internal/catalog"
	"github.com/AH100-1/book-project/internal/jobs"
	"github.com/AH100-1/book-project/internal/models"
)

// ISBNResolver resolves a (title, author) pair to an ISBN-13.
type ISBNResolver interface {
	Resolve(ctx context.Context, title, author string) (models.ResolvedISBN, error)
}

// CatalogSearcher aggregates catalog holdings for an ISBN across partitions.
type CatalogSearcher interface {
	SearchMultiPartition(ctx context.Context, isbn, preferredProv string) (catalog.MultiPartitionResult, error)
}

// ResultWriter renders a completed job's outcomes into a downloadable
// artifact and returns its handle.
type ResultWriter interface {
	WriteResults(jobID string, outcomes []models.VerificationOutcome) (string, error)
}

// Options tunes engine behavior.
type Options struct {
	// RecordDelay is the pause between records, bounding the outbound
	// request rate (default 100ms, negative disables).
	RecordDelay time.Duration
}

// Engine runs verification batches. It is safe to run multiple jobs
// concurrently on one Engine; records within a job are processed
// sequentially.
type Engine struct {
	resolver    ISBNResolver
	catalog     CatalogSearcher
	cache       *cache.ResultCache
	store       *jobs.Store
	results     ResultWriter
	recordDelay time.Duration
}

// New creates an Engine. The result writer may be nil, in which case a
// completed job's handle is its id.
func New(res ISBNResolver, cat CatalogSearcher, c *cache.ResultCache, store *jobs.Store, results ResultWriter, opts Options) *Engine {
	delay := opts.RecordDelay
	if delay == 0 {
		delay = 100 * time.Millisecond
	} else if delay < 0 {
		delay = 0
	}
	return &Engine{
		resolver:    res,
		catalog:     cat,
		cache:       c,
		store:       store,
		results:     results,
		recordDelay: delay,
	}
}

// RunBatch processes every record of a job in input order, committing
// progress to the store after each one. On success the job completes with a
// result handle; an error return means the job must be failed by the caller.
func (e *Engine) RunBatch(ctx context.Context, jobID string, records []models.BookRecord, provCode string) error {
	if err := e.store.Start(jobID, len(records), fmt.Sprintf("processing %d records", len(records))); err != nil {
		return err
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome := e.verifyRecord(ctx, rec, provCode)

		message := fmt.Sprintf("processing %d/%d - %s", i+1, len(records), preview(rec.Title))
		if err := e.store.AppendOutcome(jobID, outcome, message); err != nil {
			// Job deleted mid-run; stop quietly.
			if err == jobs.ErrNotFound {
				return nil
			}
			return err
		}

		if err := sleepCtx(ctx, e.recordDelay); err != nil {
			return err
		}
	}

	handle := jobID
	if e.results != nil {
		job, ok := e.store.Get(jobID)
		if !ok {
			return nil
		}
		var err error
		handle, err = e.results.WriteResults(jobID, job.Outcomes)
		if err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	}

	err := e.store.Complete(jobID, handle, fmt.Sprintf("completed, %d records processed", len(records)))
	if err == jobs.ErrNotFound {
		return nil
	}
	if err == nil {
		stats := e.cache.Stats()
		log.Printf("job %s completed: %d records, cache isbn %d/%d holding %d/%d (hits/misses)",
			jobID, len(records), stats.ISBNHits, stats.ISBNMisses, stats.HoldingHits, stats.HoldingMisses)
	}
	return err
}

// verifyRecord runs the resolve-then-check pipeline for one record. Soft
// failures become reason strings; only context cancellation escapes as an
// error through the catalog call, and even that is folded into the outcome
// so the loop's cancellation check handles it.
func (e *Engine) verifyRecord(ctx context.Context, rec models.BookRecord, provCode string) models.VerificationOutcome {
	school := strings.TrimSpace(rec.School)
	title := strings.TrimSpace(rec.Title)
	author := strings.TrimSpace(rec.Author)

	outcome := models.VerificationOutcome{
		Record:        rec,
		MatchedSchool: school,
		ExistsMark:    models.ExistsMarkNotFound,
	}

	resolved, ok := e.cache.GetISBN(title, author)
	if !ok {
		res, err := e.resolver.Resolve(ctx, title, author)
		if err != nil {
			res = models.ResolvedISBN{ErrorReason: fmt.Sprintf("resolver error: %v", err)}
		}
		// Cancellation artifacts must not poison the shared cache.
		if ctx.Err() == nil {
			e.cache.SetISBN(title, author, res)
		}
		resolved = res
	}

	outcome.ISBN13 = resolved.ISBN13
	if resolved.ISBN13 == "" {
		outcome.Reason = resolved.ErrorReason
		return outcome
	}

	holding, ok := e.cache.GetHolding(school, resolved.ISBN13)
	if !ok {
		holding = e.lookupHolding(ctx, school, resolved.ISBN13, provCode)
		if ctx.Err() == nil {
			e.cache.SetHolding(school, resolved.ISBN13, holding)
		}
	}

	if holding.Exists {
		outcome.ExistsMark = models.ExistsMarkFound
	}
	if holding.MatchedSchoolName != "" {
		outcome.MatchedSchool = holding.MatchedSchoolName
	}
	outcome.Reason = reasonFor(school, resolved, holding)
	return outcome
}

func (e *Engine) lookupHolding(ctx context.Context, school, isbn, provCode string) models.HoldingResult {
	res, err := e.catalog.SearchMultiPartition(ctx, isbn, provCode)
	if err != nil {
		return models.HoldingResult{ErrorReason: fmt.Sprintf("catalog error: %v", err)}
	}

	matches := catalog.FindSchoolMatches(res.Books, school)
	return models.HoldingResult{
		Exists:             len(matches.Books) > 0,
		HolderCount:        res.TotalCount,
		MatchedSchoolName:  matches.FirstMatchedName,
		MatchedSchoolNames: matches.AllMatchedNames,
	}
}

// reasonFor applies the reason-string policy, in priority order.
func reasonFor(school string, resolved models.ResolvedISBN, holding models.HoldingResult) string {
	if holding.ErrorReason != "" {
		return holding.ErrorReason
	}

	distinct := distinctNames(holding.MatchedSchoolNames)
	switch {
	case holding.Exists && len(distinct) > 1:
		return "multiple same-named schools matched: " + strings.Join(distinct, ", ")
	case !holding.Exists && holding.HolderCount == 0:
		return "no holdings found in any searched partition"
	case !holding.Exists:
		reason := fmt.Sprintf("not held by %s (%d other holder(s))", school, holding.HolderCount)
		if resolved.CandidateCount > 1 {
			reason += "; multiple title variants matched the search, a more specific title may help"
		}
		return reason
	default:
		return ""
	}
}

func distinctNames(names []string) []string {
	var distinct []string
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		distinct = append(distinct, n)
	}
	return distinct
}

// preview truncates a title for progress messages.
func preview(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= 20 {
		return string(runes)
	}
	return string(runes[:20]) + "..."
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
