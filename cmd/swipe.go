package main

import (
	"bufio"
	"context"
	"strings"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/session"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/urfave/cli/v3"
)

const swipePrompt = "[l]ike  [d]islike  [r]etry  [q]uit > "

// Swipe runs a line-oriented swipe session: one candidate at a time, one command per line.
func (r *Runner) Swipe(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMovies(); err != nil {
		return err
	}

	ctrl := r.newController(ctx, !cmd.Bool("no-journal"))

	ctrl.Initialize(ctx)
	r.renderSession(ctrl.View())

	scanner := bufio.NewScanner(r.input)
	for {
		r.writePlain(swipePrompt)
		if !scanner.Scan() {
			r.writePlain("\n")
			return scanner.Err()
		}

		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch input {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "r", "retry":
			if !ctrl.Retry(ctx) {
				r.writePlain("Nothing to retry.\n")
				continue
			}
		default:
			decision, err := models.ParseDecision(input)
			if err != nil {
				r.writePlain("Unknown command %q.\n", input)
				continue
			}
			if !ctrl.SubmitDecision(ctx, decision) {
				r.writePlain("No movie to %s right now.\n", decision)
				continue
			}
		}

		r.renderSession(ctrl.View())
	}
}

// newController builds a session controller logging through the runner, journaling when asked.
// A journal that cannot be opened is logged and skipped.
func (r *Runner) newController(ctx context.Context, journal bool) *session.Controller {
	opts := []session.Option{session.WithLogger(shared.WithLogger(r.logger, "component", "session"))}

	if journal {
		j, err := r.journal(ctx)
		if err != nil {
			r.logger.Warn("decision journal disabled", "error", err)
		} else {
			opts = append(opts, session.WithRecorder(j))
		}
	}

	return session.New(r.movies, opts...)
}

func (r *Runner) renderSession(vm session.ViewModel) {
	r.writePlain("\n")
	switch vm.Status {
	case session.StatusLoading:
		r.writePlain("Loading...\n")
	case session.StatusExhausted:
		r.writePlain("🎉 You've seen all the movies!\n")
		r.writePlain("Check back later for new additions, or press r to look again.\n")
	case session.StatusFailed:
		r.writePlain("✗ %s\n", vm.ErrorMessage)
		r.writePlain("Press r to try again.\n")
	case session.StatusReady:
		r.writeCandidate(*vm.Candidate)
	}

	if vm.Remaining != nil {
		r.writePlain("%s left to swipe\n", shared.Pluralize(*vm.Remaining, "movie", "movies"))
	}
}

func (r *Runner) writeCandidate(c models.Candidate) {
	r.writePlainHeader(c.Heading())
	for _, field := range []struct{ label, value string }{
		{"Genre", c.Genre},
		{"Rating", c.Rating},
		{"Length", c.Runtime},
		{"Starring", c.Cast},
	} {
		if field.value != "" {
			r.writePlain("%-9s %s\n", field.label+":", field.value)
		}
	}
	if c.Synopsis != "" {
		r.writePlain("\n%s\n", c.Synopsis)
	}
	if c.Poster != "" && c.Poster != "N/A" {
		r.writePlain("\nPoster: %s\n", c.Poster)
	}
	r.writePlain("\n")
}

func swipeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "swipe",
		Usage: "Like or dislike movies one at a time (line mode; see `mmx tui`)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-journal",
				Usage: "Do not record decisions in the local journal",
			},
		},
		Action: r.Swipe,
	}
}
