package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nextResult struct {
	candidate *models.Candidate
	err       error
	gate      chan struct{}
}

// scriptedDecider replays queued Next results in order; an empty queue means exhaustion.
type scriptedDecider struct {
	mu          sync.Mutex
	queue       []nextResult
	nextCalls   int
	decideErr   error
	decisions   []models.ID
	progress    *models.Progress
	progressErr error
	// progressGate, when set, holds every Progress call until it is closed.
	progressGate chan struct{}
}

func (s *scriptedDecider) push(results ...nextResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, results...)
}

func (s *scriptedDecider) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextCalls
}

func (s *scriptedDecider) Next(ctx context.Context) (*models.Candidate, error) {
	s.mu.Lock()
	s.nextCalls++
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return nil, shared.ErrNoMoreCandidates
	}
	r := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	if r.gate != nil {
		<-r.gate
	}
	return r.candidate, r.err
}

func (s *scriptedDecider) Progress(ctx context.Context) (*models.Progress, error) {
	s.mu.Lock()
	gate := s.progressGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progressErr != nil {
		return nil, s.progressErr
	}
	if s.progress == nil {
		return &models.Progress{}, nil
	}
	p := *s.progress
	return &p, nil
}

func (s *scriptedDecider) Decide(ctx context.Context, id models.ID, d models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, id)
	return s.decideErr
}

type recordedDecision struct {
	candidate models.ID
	decision  models.Decision
	submitErr error
}

type fakeRecorder struct {
	records []recordedDecision
	err     error
}

func (f *fakeRecorder) RecordDecision(ctx context.Context, c models.Candidate, d models.Decision, submitErr error) error {
	f.records = append(f.records, recordedDecision{c.ID, d, submitErr})
	return f.err
}

func movie(id, title string) *models.Candidate {
	return &models.Candidate{ID: models.ID(id), Title: title}
}

func ok(c *models.Candidate) nextResult { return nextResult{candidate: c} }

func fail(err error) nextResult { return nextResult{err: err} }

func requireReady(t *testing.T, c *Controller, id string) {
	t.Helper()
	ready, isReady := c.State().(Ready)
	require.True(t, isReady, "expected ready, got %v", c.State().Status())
	assert.Equal(t, models.ID(id), ready.Candidate.ID)
}

// requireRemaining waits for the background progress refresh to land.
func requireRemaining(t *testing.T, c *Controller, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		r := c.View().Remaining
		return r != nil && *r == want
	}, time.Second, time.Millisecond, "remaining never reached %d", want)
}

// returnsWithin fails the test if fn is still running after a second.
func returnsWithin(t *testing.T, name string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("%s did not return", name)
	}
}

func TestController(t *testing.T) {
	ctx := context.Background()

	t.Run("starts loading", func(t *testing.T) {
		c := New(&scriptedDecider{})
		assert.Equal(t, StatusLoading, c.State().Status())
		assert.Nil(t, c.View().Candidate)
	})

	t.Run("Initialize presents the first candidate", func(t *testing.T) {
		svc := &scriptedDecider{progress: &models.Progress{Total: 5, Seen: 1, Remaining: 4}}
		svc.push(ok(movie("1", "Heat")))

		c := New(svc)
		c.Initialize(ctx)

		requireReady(t, c, "1")
		requireRemaining(t, c, 4)
		vm := c.View()
		require.NotNil(t, vm.Candidate)
		assert.Equal(t, "Heat", vm.Candidate.Title)
		assert.Empty(t, vm.ErrorMessage)
	})

	t.Run("exhausted then retry finds a new candidate", func(t *testing.T) {
		svc := &scriptedDecider{}
		c := New(svc)
		c.Initialize(ctx)
		assert.Equal(t, StatusExhausted, c.State().Status())

		svc.push(ok(movie("9", "Alien")))
		assert.True(t, c.Retry(ctx))
		requireReady(t, c, "9")
	})

	t.Run("empty response without error fails", func(t *testing.T) {
		svc := &scriptedDecider{}
		svc.push(nextResult{})

		c := New(svc)
		c.Initialize(ctx)

		failed, isFailed := c.State().(Failed)
		require.True(t, isFailed, "expected failed, got %v", c.State().Status())
		assert.ErrorIs(t, failed.Err, shared.ErrInvalidResponse)
		assert.NotEmpty(t, c.View().ErrorMessage)
	})

	t.Run("failure carries the user message", func(t *testing.T) {
		svc := &scriptedDecider{}
		svc.push(fail(&services.HTTPError{Status: 500, Body: []byte(`{"message":"db down"}`)}))

		c := New(svc)
		c.Initialize(ctx)

		vm := c.View()
		assert.Equal(t, StatusFailed, vm.Status)
		assert.Equal(t, "db down", vm.ErrorMessage)
		assert.Nil(t, vm.Candidate)
	})

	t.Run("submission failure still advances", func(t *testing.T) {
		svc := &scriptedDecider{decideErr: &services.HTTPError{Status: 500}}
		svc.push(ok(movie("1", "Heat")), ok(movie("2", "Ronin")))

		c := New(svc)
		c.Initialize(ctx)
		require.True(t, c.SubmitDecision(ctx, models.Like))

		requireReady(t, c, "2")
		assert.Equal(t, []models.ID{"1"}, svc.decisions)
		assert.Equal(t, 2, svc.calls())
	})

	t.Run("successful like advances", func(t *testing.T) {
		svc := &scriptedDecider{}
		svc.push(ok(movie("1", "Heat")))

		c := New(svc)
		c.Initialize(ctx)
		require.True(t, c.SubmitDecision(ctx, models.Like))

		assert.Equal(t, StatusExhausted, c.State().Status())
		assert.Equal(t, 2, svc.calls())
	})

	t.Run("SubmitDecision outside Ready is a no-op", func(t *testing.T) {
		tests := []struct {
			name  string
			setup func(*scriptedDecider)
			want  Status
		}{
			{"loading", nil, StatusLoading},
			{"exhausted", func(s *scriptedDecider) {}, StatusExhausted},
			{"failed", func(s *scriptedDecider) { s.push(fail(errors.New("boom"))) }, StatusFailed},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := &scriptedDecider{}
				c := New(svc)
				if tt.setup != nil {
					tt.setup(svc)
					c.Initialize(ctx)
				}
				before := c.View()
				calls := svc.calls()

				assert.False(t, c.SubmitDecision(ctx, models.Dislike))
				assert.Equal(t, before, c.View())
				assert.Equal(t, tt.want, c.State().Status())
				assert.Equal(t, calls, svc.calls())
				assert.Empty(t, svc.decisions)
			})
		}
	})

	t.Run("Retry is ignored while Ready or Loading", func(t *testing.T) {
		svc := &scriptedDecider{}
		c := New(svc)
		assert.False(t, c.Retry(ctx))

		svc.push(ok(movie("1", "Heat")))
		c.Initialize(ctx)
		assert.False(t, c.Retry(ctx))
		requireReady(t, c, "1")
		assert.Equal(t, 1, svc.calls())
	})

	t.Run("retrying twice keeps the last result", func(t *testing.T) {
		svc := &scriptedDecider{}
		svc.push(
			fail(errors.New("first")),
			fail(errors.New("second")),
			ok(movie("3", "Thief")),
		)

		c := New(svc)
		c.Initialize(ctx)
		assert.Equal(t, "first", c.View().ErrorMessage)

		assert.True(t, c.Retry(ctx))
		assert.Equal(t, "second", c.View().ErrorMessage)

		assert.True(t, c.Retry(ctx))
		requireReady(t, c, "3")
		assert.Equal(t, 3, svc.calls())
	})

	t.Run("overlapping retries fetch once", func(t *testing.T) {
		gate := make(chan struct{})
		svc := &scriptedDecider{}
		svc.push(
			fail(errors.New("down")),
			nextResult{candidate: movie("4", "Sorcerer"), gate: gate},
		)

		c := New(svc)
		c.Initialize(ctx)
		require.Equal(t, StatusFailed, c.State().Status())

		first := make(chan bool)
		go func() { first <- c.Retry(ctx) }()
		require.Eventually(t, func() bool { return svc.calls() == 2 }, time.Second, time.Millisecond)

		assert.False(t, c.Retry(ctx))
		assert.Equal(t, StatusLoading, c.State().Status())

		close(gate)
		assert.True(t, <-first)
		requireReady(t, c, "4")
		assert.Equal(t, 2, svc.calls())
	})

	t.Run("stale fetch result is discarded", func(t *testing.T) {
		gate := make(chan struct{})
		svc := &scriptedDecider{}
		svc.push(
			nextResult{err: errors.New("slow failure"), gate: gate},
			ok(movie("2", "Ronin")),
		)

		c := New(svc)
		done := make(chan struct{})
		go func() {
			defer close(done)
			c.FetchNextCandidate(ctx)
		}()
		require.Eventually(t, func() bool { return svc.calls() == 1 }, time.Second, time.Millisecond)

		c.FetchNextCandidate(ctx)
		requireReady(t, c, "2")

		close(gate)
		<-done
		requireReady(t, c, "2")
	})

	t.Run("progress failure is swallowed", func(t *testing.T) {
		svc := &scriptedDecider{progressErr: errors.New("counts unavailable")}
		svc.push(ok(movie("1", "Heat")))

		c := New(svc)
		c.Initialize(ctx)

		vm := c.View()
		assert.Equal(t, StatusReady, vm.Status)
		assert.Nil(t, vm.Remaining)
		assert.Empty(t, vm.ErrorMessage)
	})

	t.Run("pending progress never blocks the session", func(t *testing.T) {
		release := make(chan struct{})
		svc := &scriptedDecider{progress: &models.Progress{Remaining: 1}, progressGate: release}
		svc.push(ok(movie("1", "Heat")))

		c := New(svc)
		returnsWithin(t, "Initialize", func() { c.Initialize(ctx) })
		requireReady(t, c, "1")
		assert.Nil(t, c.View().Remaining)

		var submitted bool
		returnsWithin(t, "SubmitDecision", func() { submitted = c.SubmitDecision(ctx, models.Like) })
		assert.True(t, submitted)
		assert.Equal(t, StatusExhausted, c.State().Status())
		assert.Nil(t, c.View().Remaining)

		close(release)
		requireRemaining(t, c, 1)
		assert.Equal(t, StatusExhausted, c.State().Status())
	})

	t.Run("progress failure keeps previous value", func(t *testing.T) {
		svc := &scriptedDecider{progress: &models.Progress{Remaining: 3}}
		c := New(svc)
		c.RefreshProgress(ctx)

		svc.mu.Lock()
		svc.progressErr = errors.New("down")
		svc.mu.Unlock()
		c.RefreshProgress(ctx)

		vm := c.View()
		require.NotNil(t, vm.Remaining)
		assert.Equal(t, 3, *vm.Remaining)
	})

	t.Run("recorder sees every submission", func(t *testing.T) {
		submitErr := errors.New("write failed")
		svc := &scriptedDecider{decideErr: submitErr}
		svc.push(ok(movie("1", "Heat")), ok(movie("2", "Ronin")))
		rec := &fakeRecorder{err: errors.New("disk full")}

		c := New(svc, WithRecorder(rec))
		c.Initialize(ctx)
		c.SubmitDecision(ctx, models.Like)
		c.SubmitDecision(ctx, models.Dislike)

		require.Len(t, rec.records, 2)
		assert.Equal(t, recordedDecision{"1", models.Like, submitErr}, rec.records[0])
		assert.Equal(t, models.ID("2"), rec.records[1].candidate)
		assert.Equal(t, StatusExhausted, c.State().Status())
	})

	t.Run("WithMessage", func(t *testing.T) {
		svc := &scriptedDecider{}
		svc.push(fail(errors.New("raw")))

		c := New(svc, WithMessage(func(err error) string { return "custom: " + err.Error() }))
		c.Initialize(ctx)
		assert.Equal(t, "custom: raw", c.View().ErrorMessage)
	})

	t.Run("view snapshots are copies", func(t *testing.T) {
		svc := &scriptedDecider{progress: &models.Progress{Remaining: 2}}
		svc.push(ok(movie("1", "Heat")))

		c := New(svc)
		c.Initialize(ctx)
		requireRemaining(t, c, 2)

		vm := c.View()
		vm.Candidate.Title = "changed"
		*vm.Remaining = 99

		again := c.View()
		assert.Equal(t, "Heat", again.Candidate.Title)
		assert.Equal(t, 2, *again.Remaining)
	})
}

// TestControllerOverHTTP drives the controller through the real movie service.
func TestControllerOverHTTP(t *testing.T) {
	ctx := context.Background()

	newController := func(url string, client *http.Client) *Controller {
		svc := services.NewMovieService(services.NewClient(url, services.NewMemoryTokenStore("tok"), client))
		return New(svc)
	}

	t.Run("404 means exhausted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"No more movies"}`))
		}))
		defer server.Close()

		c := newController(server.URL, server.Client())
		c.Initialize(ctx)
		assert.Equal(t, StatusExhausted, c.View().Status)
		assert.Empty(t, c.View().ErrorMessage)
	})

	t.Run("server message is shown", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == services.RouteProgress {
				w.Write([]byte(`{"total_movies":1,"seen_movies":0,"unseen_movies":1}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"db down"}`))
		}))
		defer server.Close()

		c := newController(server.URL, server.Client())
		c.Initialize(ctx)

		vm := c.View()
		assert.Equal(t, StatusFailed, vm.Status)
		assert.Equal(t, "db down", vm.ErrorMessage)
		requireRemaining(t, c, 1)
	})

	t.Run("unreachable server shows the no response text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		c := newController(url, nil)
		c.Initialize(ctx)

		vm := c.View()
		assert.Equal(t, StatusFailed, vm.Status)
		assert.Equal(t, services.NoResponseMessage, vm.ErrorMessage)
	})

	t.Run("missing token shows the setup message", func(t *testing.T) {
		svc := services.NewMovieService(services.NewClient("http://127.0.0.1:1", services.NewMemoryTokenStore(""), nil))
		c := New(svc)
		c.Initialize(ctx)

		vm := c.View()
		assert.Equal(t, StatusFailed, vm.Status)
		assert.Contains(t, vm.ErrorMessage, "not logged in")
	})
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "ready", StatusReady.String())
	assert.Equal(t, "exhausted", StatusExhausted.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "", Status(42).String())
}
