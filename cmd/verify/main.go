package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/AH100-1/book-project/internal/cache"
	"github.com/AH100-1/book-project/internal/catalog"
	"github.com/AH100-1/book-project/internal/config"
	"github.com/AH100-1/book-project/internal/engine"
	"github.com/AH100-1/book-project/internal/excel"
	"github.com/AH100-1/book-project/internal/jobs"
	"github.com/AH100-1/book-project/internal/models"
	"github.com/AH100-1/book-project/internal/resolver"
)

// fileWriter writes job results to a fixed path instead of a managed
// output directory.
type fileWriter struct {
	path string
}

func (w fileWriter) WriteResults(jobID string, outcomes []models.VerificationOutcome) (string, error) {
	if err := excel.WriteOutcomes(w.path, outcomes); err != nil {
		return "", err
	}
	return w.path, nil
}

func main() {
	var (
		input   = flag.String("input", "", "Input workbook (.xlsx)")
		output  = flag.String("output", "result.xlsx", "Output workbook")
		region  = flag.String("region", "", "Region to search first (e.g. 서울, 경기)")
		level   = flag.String("level", "", "School level hint (e.g. 초등학교)")
		verbose = flag.Bool("v", false, "Verbose output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -input books.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -input books.xlsx -output checked.xlsx -region 경기\n", os.Args[0])
	}

	flag.Parse()

	if *input == "" {
		fmt.Fprintf(os.Stderr, "Error: input workbook is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	settings := config.Load()
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *region == "" {
		*region = settings.RegionName
	}
	if *level == "" {
		*level = settings.SchoolLevel
	}

	records, err := excel.ReadRecords(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", *input, err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "Error: %s has no records\n", *input)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Verifying %d records from %s\n", len(records), *input)
	}

	resultCache := cache.New()
	store := jobs.NewStore()

	res := resolver.NewClient(resolver.Options{
		APIKey:    settings.ResolverAPIKey,
		Timeout:   settings.RequestTimeout,
		Threshold: settings.SimilarityThreshold,
	})
	cat := catalog.NewClient(catalog.Options{
		Timeout:       settings.RequestTimeout,
		PageDelay:     settings.PageDelay,
		MaxPartitions: settings.MaxPartitions,
	})

	eng := engine.New(res, cat, resultCache, store, fileWriter{path: *output}, engine.Options{
		RecordDelay: settings.RecordDelay,
	})
	runner := engine.NewRunner(eng, store)

	job := runner.Submit(records, engine.SubmitOptions{
		InputFile:   *input,
		Region:      *region,
		SchoolLevel: *level,
	})

	done := make(chan struct{})
	go func() {
		runner.Wait()
		close(done)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	lastProgress := -1
poll:
	for {
		select {
		case <-done:
			break poll
		case <-ticker.C:
			if *verbose {
				if snap, ok := store.Get(job.ID); ok && snap.Progress != lastProgress {
					fmt.Fprintf(os.Stderr, "  %d/%d %s\n", snap.Progress, snap.Total, snap.CurrentMessage)
					lastProgress = snap.Progress
				}
			}
		}
	}

	final, ok := store.Get(job.ID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: job vanished\n")
		os.Exit(1)
	}
	if final.Status != models.JobStatusCompleted {
		fmt.Fprintf(os.Stderr, "Error: verification failed: %s\n", final.CurrentMessage)
		os.Exit(1)
	}

	found := 0
	for _, o := range final.Outcomes {
		if o.ExistsMark == models.ExistsMarkFound {
			found++
		}
	}
	stats := resultCache.Stats()
	fmt.Printf("Verified %d records: %d held, %d not held\n", len(final.Outcomes), found, len(final.Outcomes)-found)
	if *verbose {
		fmt.Fprintf(os.Stderr, "Cache: %d ISBN entries (%d hits), %d holding entries (%d hits)\n",
			stats.ISBNSize, stats.ISBNHits, stats.HoldingSize, stats.HoldingHits)
	}
	fmt.Printf("Results written to %s\n", *output)
}
