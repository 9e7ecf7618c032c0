package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/desertthunder/mmx/internal/tasks"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// MoviesNext prints the next movie waiting for a decision without deciding on it.
func (r *Runner) MoviesNext(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMovies(); err != nil {
		return err
	}

	candidate, err := r.movies.Next(ctx)
	if errors.Is(err, shared.ErrNoMoreCandidates) {
		r.writePlain("🎉 You've seen all the movies!\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(candidate, true)
	}
	r.writeCandidate(*candidate)
	r.writePlain("ID: %s\n", candidate.ID)
	return nil
}

// MoviesProgress prints the seen/unseen counters.
func (r *Runner) MoviesProgress(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMovies(); err != nil {
		return err
	}

	progress, err := r.movies.Progress(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(progress, true)
	}
	r.writePlain("Seen:      %s\n", shared.FormatCount(progress.Seen))
	r.writePlain("Remaining: %s\n", shared.FormatCount(progress.Remaining))
	r.writePlain("Total:     %s\n", shared.FormatCount(progress.Total))
	return nil
}

// MoviesDecide returns an action recording decision for the movie given as the first argument.
func (r *Runner) MoviesDecide(decision models.Decision) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.requireMovies(); err != nil {
			return err
		}

		id := strings.TrimSpace(cmd.StringArg("id"))
		if id == "" {
			return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
		}

		if err := r.movies.Decide(ctx, models.ID(id), decision); err != nil {
			return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
		}

		r.logger.Info("decision recorded", "movie", id, "decision", decision)
		r.writePlain("✓ %s: %s\n", decision.Label(), id)
		return nil
	}
}

// MoviesAll lists the whole catalogue with who still has to see each movie.
func (r *Runner) MoviesAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMovies(); err != nil {
		return err
	}

	movies, err := r.movies.Library(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, true)
	}

	r.writePlainHeader(fmt.Sprintf("All Movies (%s)", shared.FormatCount(len(movies))))
	for _, m := range movies {
		r.writePlain("%s\n", m.Heading())
		r.writePlain("  Likes: %s", shared.FormatCount(m.LikesCount))
		if m.AddedBy.Username != "" {
			r.writePlain("  Added by: %s", m.AddedBy.Username)
		}
		r.writePlain("\n")
		if m.SeenByAll() {
			r.writePlain("  Seen by all\n")
		} else {
			names := make([]string, len(m.UnseenBy))
			for i, u := range m.UnseenBy {
				names[i] = u.Username
			}
			r.writePlain("  Not yet seen by: %s\n", strings.Join(names, ", "))
		}
	}
	return nil
}

// MoviesSearch looks titles up in the external movie database.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMovies(); err != nil {
		return err
	}

	results, err := r.movies.Search(ctx, cmd.StringArg("query"))
	if errors.Is(err, shared.ErrNoSearchResults) {
		r.writePlain("No movies found. Try a different search term.\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	for i, res := range results {
		r.writePlain("%d. %s (%s)", i+1, res.Title, res.Year)
		if res.IMDBRating != "" && res.IMDBRating != "N/A" {
			r.writePlain("  ★ %s", res.IMDBRating)
		}
		r.writePlain("\n")
		if res.Genre != "" {
			r.writePlain("   %s\n", res.Genre)
		}
	}
	return nil
}

// MoviesAdd searches for query and adds the chosen hit (the first by default) to the catalogue.
func (r *Runner) MoviesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMovies(); err != nil {
		return err
	}

	results, err := r.movies.Search(ctx, cmd.StringArg("query"))
	if errors.Is(err, shared.ErrNoSearchResults) {
		r.writePlain("No movies found. Try a different search term.\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}

	pick := int(cmd.Int("pick"))
	if pick < 1 || pick > len(results) {
		return fmt.Errorf("%w: --pick must be between 1 and %d", shared.ErrInvalidArgument, len(results))
	}
	movie := results[pick-1]

	added, err := r.movies.Add(ctx, movie)
	if err != nil {
		r.logger.Error("failed to add movie", "title", movie.Title, "error", err)
		return fmt.Errorf("%w: Failed to add movie. It might already exist in the database.", shared.ErrAPIRequest)
	}

	r.logger.Info("movie added", "title", movie.Title, "id", added.ID)
	r.writePlain("✓ Added %s (%s)\n", movie.Title, movie.Year)
	return nil
}

// MoviesImport adds every title listed in a file, one search and one add per title, rate limited.
func (r *Runner) MoviesImport(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: task engine not initialized", shared.ErrServiceUnavailable)
	}

	path := cmd.String("file")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: cannot open %s: %v", shared.ErrInvalidArgument, path, err)
	}
	defer f.Close()

	titles, err := tasks.ReadTitles(f)
	if err != nil {
		return err
	}

	opts := tasks.ImportOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		DryRun:     cmd.Bool("dry-run"),
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = r.config.API.RateLimit
	}

	r.logger.Info("importing movies", "titles", len(titles), "dry_run", opts.DryRun)

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	summary, err := r.engine.Import(ctx, progress, titles, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Added %d, skipped %d, failed %d of %s",
		summary.Added, summary.Skipped, summary.Failed, shared.Pluralize(summary.Total, "title", "titles"))
	for _, res := range summary.Results {
		if res.Error != nil {
			r.writePlain("  ✗ %s: %s\n", res.Query, services.UserMessage(res.Error))
		}
	}
	return nil
}

// Matches lists the movies every compared user liked.
func (r *Runner) Matches(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: task engine not initialized", shared.ErrServiceUnavailable)
	}

	result, err := r.engine.Matches(ctx, nil, cmd.StringSlice("user"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Matches, true)
	}

	title := "Universal Matches"
	if !result.Universal {
		names := make([]string, len(result.Users))
		for i, u := range result.Users {
			names[i] = u.Username
		}
		title = "Matches for " + strings.Join(names, ", ")
	}
	r.writePlainHeader(title)

	if len(result.Matches) == 0 {
		r.writePlain("No universal matches found yet. Keep swiping!\n")
		return nil
	}
	for _, m := range result.Matches {
		r.writePlain("%s  ♥ %d\n", m.Heading(), m.MatchCount)
		if m.Genre != "" {
			r.writePlain("  %s\n", m.Genre)
		}
	}
	return nil
}

// History prints the logged-in user's decisions, from the backend or, with --local, from the journal.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("local") || cmd.Bool("failed") {
		return r.localHistory(ctx, cmd)
	}

	if err := r.requireMovies(); err != nil {
		return err
	}

	entries, err := r.movies.History(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	r.writePlainHeader("Movie History")
	if len(entries) == 0 {
		r.writePlain("No decisions yet.\n")
		return nil
	}
	for _, e := range entries {
		mark := "✗"
		if e.Liked {
			mark = "✓"
		}
		r.writePlain("%s %s\n", mark, e.Title)
	}
	return nil
}

func (r *Runner) localHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMovies(); err != nil {
		return err
	}

	journal, err := r.journal(ctx)
	if err != nil {
		return err
	}

	records, err := journal.Entries(cmd.Bool("failed"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type row struct {
			Sequence    int       `json:"sequence"`
			CandidateID models.ID `json:"movie_id"`
			Title       string    `json:"title"`
			Decision    string    `json:"decision"`
			SubmitError string    `json:"submit_error,omitempty"`
			CreatedAt   string    `json:"created_at"`
		}
		rows := make([]row, len(records))
		for i, rec := range records {
			rows[i] = row{
				Sequence:    rec.Sequence(),
				CandidateID: rec.CandidateID(),
				Title:       rec.Title(),
				Decision:    rec.Decision().String(),
				SubmitError: rec.SubmitError(),
				CreatedAt:   rec.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
			}
		}
		return r.writeJSON(rows, true)
	}

	r.writePlainHeader("Local Decision Journal")
	if len(records) == 0 {
		r.writePlain("No journaled decisions.\n")
		return nil
	}
	for _, rec := range records {
		status := "sent"
		if !rec.Submitted() {
			status = "not sent: " + rec.SubmitError()
		}
		r.writePlain("#%d %-7s %s  (%s, %s)\n",
			rec.Sequence(), rec.Decision(), rec.Title(), humanize.Time(rec.CreatedAt()), status)
	}
	return nil
}

// Users lists every account known to the backend.
func (r *Runner) Users(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMovies(); err != nil {
		return err
	}

	users, err := r.movies.Users(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, true)
	}
	for _, u := range users {
		r.writePlain("%4d  %s\n", u.ID, u.Username)
	}
	return nil
}
