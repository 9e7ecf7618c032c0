package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
)

// MovieDecider is the part of the backend the swipe session needs.
type MovieDecider interface {
	Next(ctx context.Context) (*models.Candidate, error)
	Progress(ctx context.Context) (*models.Progress, error)
	Decide(ctx context.Context, candidateID models.ID, decision models.Decision) error
}

// DecisionRecorder is told about every submitted decision along with the submission outcome.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, candidate models.Candidate, decision models.Decision, submitErr error) error
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the logger used for diagnostics. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder attaches a recorder that journals submitted decisions.
func WithRecorder(r DecisionRecorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithMessage overrides how fetch errors are turned into display text. The default is [services.UserMessage].
func WithMessage(fn func(error) string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.message = fn
		}
	}
}

// Controller drives one user's fetch, present, decide, advance cycle.
//
// It owns the session [State] and the remaining-movies counter; callers observe them through [Controller.View].
// Methods are safe to call from multiple goroutines. Each fetch is tagged with a sequence number and its result
// is applied only if no later fetch has been issued.
type Controller struct {
	svc      MovieDecider
	recorder DecisionRecorder
	logger   *log.Logger
	message  func(error) string

	mu          sync.Mutex
	state       State
	remaining   *int
	fetchSeq    uint64
	progressSeq uint64
}

// New creates a controller in the [Loading] state. Call [Controller.Initialize] to start the session.
func New(svc MovieDecider, opts ...Option) *Controller {
	c := &Controller{
		svc:     svc,
		logger:  log.New(io.Discard),
		message: services.UserMessage,
		state:   Loading{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize enters [Loading] and fetches the first candidate.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	c.setState(Loading{})
	c.mu.Unlock()

	c.FetchNextCandidate(ctx)
}

// FetchNextCandidate requests the next undecided movie and settles the state to [Ready], [Exhausted] or [Failed].
//
// The remaining counter is refreshed in the background and never awaited; its outcome never affects the state.
// If another fetch was issued while this one was in flight, this result is dropped.
func (c *Controller) FetchNextCandidate(ctx context.Context) {
	c.mu.Lock()
	seq := c.beginFetch()
	c.mu.Unlock()

	c.fetch(ctx, seq)
}

// beginFetch enters [Loading] and claims the next fetch sequence number. c.mu must be held.
func (c *Controller) beginFetch() uint64 {
	c.fetchSeq++
	c.setState(Loading{})
	return c.fetchSeq
}

func (c *Controller) fetch(ctx context.Context, seq uint64) {
	go c.RefreshProgress(ctx)

	candidate, err := c.svc.Next(ctx)
	next := c.settle(candidate, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.fetchSeq {
		c.logger.Debug("discarding stale fetch", "seq", seq, "latest", c.fetchSeq, "status", next.Status())
		return
	}
	c.setState(next)
}

func (c *Controller) settle(candidate *models.Candidate, err error) State {
	switch {
	case errors.Is(err, shared.ErrNoMoreCandidates):
		return Exhausted{}
	case err == nil && candidate == nil:
		err = fmt.Errorf("%w: next movie response had no movie", shared.ErrInvalidResponse)
		c.logger.Warn("failed to fetch next movie", "error", err)
		return Failed{Message: c.message(err), Err: err}
	case err != nil:
		c.logger.Warn("failed to fetch next movie", "error", err)
		return Failed{Message: c.message(err), Err: err}
	default:
		return Ready{Candidate: *candidate}
	}
}

// SubmitDecision sends decision for the current candidate and advances to the next one.
//
// It reports false and does nothing unless the state is [Ready]. A failed submission is logged and the
// controller advances anyway; it is never retried.
func (c *Controller) SubmitDecision(ctx context.Context, decision models.Decision) bool {
	c.mu.Lock()
	ready, ok := c.state.(Ready)
	if !ok {
		c.logger.Debug("ignoring decision", "decision", decision, "status", c.state.Status())
		c.mu.Unlock()
		return false
	}
	candidate := ready.Candidate
	c.setState(Loading{})
	c.mu.Unlock()

	err := c.svc.Decide(ctx, candidate.ID, decision)
	if err != nil {
		c.logger.Error("failed to submit decision", "movie", candidate.ID, "decision", decision, "error", err)
	}

	if c.recorder != nil {
		if rerr := c.recorder.RecordDecision(ctx, candidate, decision, err); rerr != nil {
			c.logger.Warn("failed to journal decision", "movie", candidate.ID, "error", rerr)
		}
	}

	c.FetchNextCandidate(ctx)
	return true
}

// Retry fetches again after a failure, or re-polls after exhaustion.
// It reports false and does nothing in any other state, including while an earlier retry is still loading.
func (c *Controller) Retry(ctx context.Context) bool {
	c.mu.Lock()
	status := c.state.Status()
	if status != StatusFailed && status != StatusExhausted {
		c.logger.Debug("ignoring retry", "status", status)
		c.mu.Unlock()
		return false
	}
	seq := c.beginFetch()
	c.mu.Unlock()

	c.fetch(ctx, seq)
	return true
}

// RefreshProgress updates the remaining counter. Failures are logged and leave the previous value in place.
func (c *Controller) RefreshProgress(ctx context.Context) {
	c.mu.Lock()
	c.progressSeq++
	seq := c.progressSeq
	c.mu.Unlock()

	progress, err := c.svc.Progress(ctx)
	if err != nil {
		c.logger.Warn("failed to refresh progress", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.progressSeq {
		return
	}
	remaining := progress.Remaining
	c.remaining = &remaining
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns a snapshot of the session for rendering.
func (c *Controller) View() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return newViewModel(c.state, c.remaining)
}

// setState is the single place state changes. Callers hold c.mu.
func (c *Controller) setState(s State) {
	if c.state != nil && c.state.Status() != s.Status() {
		c.logger.Debug("session transition", "from", c.state.Status(), "to", s.Status())
	}
	c.state = s
}
