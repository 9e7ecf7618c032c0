package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mmx/internal/repositories"
	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/desertthunder/mmx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// RawAPI sends hand-written requests to the backend.
type RawAPI interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
	Post(ctx context.Context, path string, data []byte) (*services.APIResponse, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	movies services.MovieAPI
	auth   services.MovieAPI
	api    RawAPI
	tokens services.TokenStore
	db     *sql.DB
	logger *log.Logger
	output io.Writer
	input  io.Reader
	engine *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Movies services.MovieAPI   // Authenticated backend calls
	Auth   services.MovieAPI   // Login and registration; defaults to Movies
	Client RawAPI              // Used by `mmx api`
	Tokens services.TokenStore // Defaults to an empty in-memory store
	DB     *sql.DB             // Decision journal; opened from Config on first use when nil
	Logger *log.Logger
	Output io.Writer
	Input  io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Tokens == nil {
		opts.Tokens = services.NewMemoryTokenStore("")
	}
	if opts.Auth == nil {
		opts.Auth = opts.Movies
	}

	var engine *tasks.Engine
	if opts.Movies != nil || opts.Client != nil {
		var catalog tasks.Catalog
		if opts.Movies != nil {
			catalog = opts.Movies
		}
		var api tasks.APIClient
		if opts.Client != nil {
			api = opts.Client
		}
		engine = tasks.NewEngine(catalog, api)
	}

	return &Runner{
		config: opts.Config,
		movies: opts.Movies,
		auth:   opts.Auth,
		api:    opts.Client,
		tokens: opts.Tokens,
		db:     opts.DB,
		logger: opts.Logger,
		output: opts.Output,
		input:  opts.Input,
		engine: engine,
	}
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the journal database if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, swipeCommand, moviesCommand, matchesCommand, historyCommand, usersCommand,
		exportCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) requireMovies() error {
	if r.movies == nil {
		return fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// decisions returns the journal repository, opening the database from config on first use.
func (r *Runner) decisions() (*repositories.DecisionRepository, error) {
	if r.db == nil {
		db, err := shared.OpenJournal(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open decision journal: %w", err)
		}
		r.db = db
	}
	return repositories.NewDecisionRepository(r.db), nil
}

// journal returns a journal for the logged-in account. An unknown username is journaled as empty.
func (r *Runner) journal(ctx context.Context) (*repositories.DecisionJournal, error) {
	repo, err := r.decisions()
	if err != nil {
		return nil, err
	}

	username := ""
	if info, err := r.movies.UserInfo(ctx); err == nil {
		username = info.Username
	} else {
		r.logger.Warn("could not resolve username for journal", "error", err)
	}
	return repositories.NewDecisionJournal(repo, username), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
