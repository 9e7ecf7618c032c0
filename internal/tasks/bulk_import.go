package tasks

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/shared"
	"golang.org/x/time/rate"
)

// ImportOpts contains configuration for bulk movie imports.
type ImportOpts struct {
	NumWorkers int     // Concurrent workers (default: 2)
	RateLimit  float64 // Backend requests per second, shared by search and add (default: 2)
	DryRun     bool    // Search only; nothing is added
}

// ImportResult is the outcome of importing one title.
type ImportResult struct {
	Query   string               // Title as given
	Movie   *models.SearchResult // Best search hit, nil when nothing was found
	AddedID models.ID            // Catalogue ID assigned by the backend
	Skipped bool                 // Dry run: found but not added
	Error   error
}

// ImportSummary aggregates a bulk import.
type ImportSummary struct {
	Total   int
	Added   int
	Skipped int
	Failed  int
	Results []ImportResult
}

type importJob struct {
	index int
	query string
}

// ReadTitles reads one title per line, skipping blanks and "#" comments.
// A line may hold several titles separated by ";".
func ReadTitles(r io.Reader) ([]string, error) {
	var titles []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for part := range strings.SplitSeq(line, ";") {
			if part = strings.TrimSpace(part); part != "" {
				titles = append(titles, part)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read titles: %w", err)
	}
	return titles, nil
}

// Import searches each title and adds the first hit to the catalogue.
//
// Workers share one rate limiter so the backend (and the OMDb quota behind it) sees at most RateLimit requests
// per second. Per-title failures are collected in the summary; only a cancelled context aborts the run.
// Results keep the order of titles.
func (e *Engine) Import(ctx context.Context, prog chan<- ProgressUpdate, titles []string, opts ImportOpts) (*ImportSummary, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: no titles to import", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	if opts.NumWorkers > 5 {
		opts.NumWorkers = 5
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	total := len(titles)

	jobs := make(chan importJob, total)
	for i, title := range titles {
		jobs <- importJob{index: i, query: title}
	}
	close(jobs)

	results := make([]ImportResult, total)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				e.sendProgress(prog, searchingUpdate(job.index+1, total, job.query))

				res := e.importOne(ctx, limiter, job.query, opts.DryRun)
				results[job.index] = res

				mu.Lock()
				completed++
				step := completed
				mu.Unlock()

				if res.Error != nil {
					e.sendProgress(prog, importFailedUpdate(step, total, job.query, res.Error))
				} else {
					e.sendProgress(prog, importedUpdate(step, total, *res.Movie))
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &ImportSummary{Total: total, Results: results}
	for _, r := range results {
		switch {
		case r.Error != nil:
			summary.Failed++
		case r.Skipped:
			summary.Skipped++
		default:
			summary.Added++
		}
	}
	return summary, nil
}

func (e *Engine) importOne(ctx context.Context, limiter *rate.Limiter, query string, dryRun bool) ImportResult {
	result := ImportResult{Query: query}

	if err := limiter.Wait(ctx); err != nil {
		result.Error = err
		return result
	}
	hits, err := e.catalog.Search(ctx, query)
	if err != nil {
		if errors.Is(err, shared.ErrNoSearchResults) {
			result.Error = fmt.Errorf("%w for %q", shared.ErrNoSearchResults, query)
		} else {
			result.Error = fmt.Errorf("search failed: %w", err)
		}
		return result
	}

	if len(hits) == 0 {
		result.Error = fmt.Errorf("%w for %q", shared.ErrNoSearchResults, query)
		return result
	}

	movie := hits[0]
	result.Movie = &movie

	if dryRun {
		result.Skipped = true
		return result
	}

	if err := limiter.Wait(ctx); err != nil {
		result.Error = err
		return result
	}
	added, err := e.catalog.Add(ctx, movie)
	if err != nil {
		result.Error = fmt.Errorf("add failed: %w", err)
		return result
	}
	result.AddedID = added.ID
	return result
}
