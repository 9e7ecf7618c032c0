package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mmx/internal/formatter"
	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/urfave/cli/v3"
)

type exportBuilder func(ctx context.Context, cmd *cli.Command) (*formatter.Export, error)

// Export returns an action that builds a listing with build and writes it in the requested format.
//
// "--output -" writes to stdout instead of a file.
func (r *Runner) Export(build exportBuilder) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		format, err := formatter.ParseFormat(cmd.String("format"))
		if err != nil {
			return err
		}

		e, err := build(ctx, cmd)
		if err != nil {
			return err
		}

		output := cmd.String("output")
		if output == "-" {
			data, err := formatter.Render(e, format)
			if err != nil {
				return err
			}
			if _, err := r.output.Write(data); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		}

		path, err := formatter.WriteExport(e, format, output)
		if err != nil {
			return err
		}

		r.logger.Info("export written", "path", path, "format", format)
		r.writePlain("✓ Exported %s to %s\n", e.Title, path)
		return nil
	}
}

func (r *Runner) libraryExport(ctx context.Context, cmd *cli.Command) (*formatter.Export, error) {
	if err := r.requireMovies(); err != nil {
		return nil, err
	}
	movies, err := r.movies.Library(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}
	return formatter.LibraryExport(movies), nil
}

func (r *Runner) matchesExport(ctx context.Context, cmd *cli.Command) (*formatter.Export, error) {
	if r.engine == nil {
		return nil, fmt.Errorf("%w: task engine not initialized", shared.ErrServiceUnavailable)
	}
	result, err := r.engine.Matches(ctx, nil, cmd.StringSlice("user"))
	if err != nil {
		return nil, err
	}
	return formatter.MatchesExport(result.Matches), nil
}

func (r *Runner) historyExport(ctx context.Context, cmd *cli.Command) (*formatter.Export, error) {
	if err := r.requireMovies(); err != nil {
		return nil, err
	}
	entries, err := r.movies.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}
	return formatter.HistoryExport(entries), nil
}

func (r *Runner) journalExport(ctx context.Context, cmd *cli.Command) (*formatter.Export, error) {
	if err := r.requireMovies(); err != nil {
		return nil, err
	}
	journal, err := r.journal(ctx)
	if err != nil {
		return nil, err
	}
	records, err := journal.Entries(cmd.Bool("failed"))
	if err != nil {
		return nil, err
	}
	return formatter.JournalExport(records), nil
}

func exportCommand(r *Runner) *cli.Command {
	outputFlags := func(extra ...cli.Flag) []cli.Flag {
		return append([]cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: csv, markdown, text, yaml, json",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default {listing}.{ext}, - for stdout)",
			},
		}, extra...)
	}

	return &cli.Command{
		Name:  "export",
		Usage: "Export movie listings to a file",
		Commands: []*cli.Command{
			{
				Name:   "library",
				Usage:  "Export every movie in the catalogue",
				Flags:  outputFlags(),
				Action: r.Export(r.libraryExport),
			},
			{
				Name:  "matches",
				Usage: "Export movies liked by all compared users",
				Flags: outputFlags(&cli.StringSliceFlag{
					Name:  "user",
					Usage: "Username to compare (repeatable; default all users)",
				}),
				Action: r.Export(r.matchesExport),
			},
			{
				Name:   "history",
				Usage:  "Export your decision history",
				Flags:  outputFlags(),
				Action: r.Export(r.historyExport),
			},
			{
				Name:  "journal",
				Usage: "Export the local decision journal",
				Flags: outputFlags(&cli.BoolFlag{
					Name:  "failed",
					Usage: "Only decisions that could not be sent",
				}),
				Action: r.Export(r.journalExport),
			},
		},
	}
}
