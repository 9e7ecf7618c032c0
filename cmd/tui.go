package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/desertthunder/mmx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMovies(); err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: task engine not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if err := shared.SetLogLevel(fileLogger, r.config.Log.Level); err != nil {
		fileLogger.Warn("ignoring log level", "error", err)
	}
	r.SetLogger(fileLogger)

	ctrl := r.newController(ctx, !cmd.Bool("no-journal"))
	model := ui.NewModel(ctx, ctrl, r.movies, r.engine)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-journal",
				Usage: "Do not record decisions in the local journal",
			},
		},
		Action: r.TUI,
	}
}
