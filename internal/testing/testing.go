// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/shared"
)

// FakeMovieService is an in-memory stand-in for the backend movie API.
//
// Candidates are served in order; once they run out Next returns [shared.ErrNoMoreCandidates].
// Setting one of the *Err fields makes the matching call fail.
type FakeMovieService struct {
	mu sync.Mutex

	Candidates []models.Candidate
	Decisions  []FakeDecision
	Catalogue  []models.LibraryMovie
	Found      []models.SearchResult
	Added      []models.SearchResult
	UserList   []models.User
	MatchList  []models.Match
	Entries    []models.HistoryEntry
	Username   string
	Token      string

	NextErr     error
	ProgressErr error
	DecideErr   error
	LoginErr    error
	SearchErr   error
	AddErr      error
	MatchesErr  error

	// MatchCalls records the user id sets Matches was called with.
	MatchCalls [][]int

	cursor int
}

// FakeDecision is one recorded Decide call.
type FakeDecision struct {
	CandidateID models.ID
	Decision    models.Decision
}

func (f *FakeMovieService) Next(ctx context.Context) (*models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NextErr != nil {
		return nil, f.NextErr
	}
	if f.cursor >= len(f.Candidates) {
		return nil, shared.ErrNoMoreCandidates
	}
	c := f.Candidates[f.cursor]
	f.cursor++
	return &c, nil
}

func (f *FakeMovieService) Progress(ctx context.Context) (*models.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProgressErr != nil {
		return nil, f.ProgressErr
	}
	total := len(f.Candidates)
	return &models.Progress{Total: total, Seen: f.cursor, Remaining: total - f.cursor}, nil
}

func (f *FakeMovieService) Decide(ctx context.Context, id models.ID, d models.Decision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Decisions = append(f.Decisions, FakeDecision{CandidateID: id, Decision: d})
	return f.DecideErr
}

func (f *FakeMovieService) Login(ctx context.Context, username, password string) (string, error) {
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.Username = username
	if f.Token == "" {
		return "fake-token", nil
	}
	return f.Token, nil
}

func (f *FakeMovieService) Register(ctx context.Context, username, password string) error {
	return f.LoginErr
}

func (f *FakeMovieService) UserInfo(ctx context.Context) (*models.UserInfo, error) {
	return &models.UserInfo{Username: f.Username}, nil
}

func (f *FakeMovieService) History(ctx context.Context) ([]models.HistoryEntry, error) {
	return f.Entries, nil
}

func (f *FakeMovieService) Users(ctx context.Context) ([]models.User, error) {
	return f.UserList, nil
}

func (f *FakeMovieService) Matches(ctx context.Context, userIDs []int) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MatchCalls = append(f.MatchCalls, append([]int(nil), userIDs...))
	if len(userIDs) < 2 {
		return nil, shared.ErrNotEnoughUsers
	}
	if f.MatchesErr != nil {
		return nil, f.MatchesErr
	}
	return f.MatchList, nil
}

// Search returns every Found entry whose title contains one of the ";"-separated queries.
func (f *FakeMovieService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	var out []models.SearchResult
	for part := range strings.SplitSeq(query, ";") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		for _, r := range f.Found {
			if strings.Contains(strings.ToLower(r.Title), part) {
				out = append(out, r)
			}
		}
	}
	if len(out) == 0 {
		return nil, shared.ErrNoSearchResults
	}
	return out, nil
}

func (f *FakeMovieService) Add(ctx context.Context, movie models.SearchResult) (*models.AddResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddErr != nil {
		return nil, f.AddErr
	}
	f.Added = append(f.Added, movie)
	return &models.AddResult{Message: "Movie added successfully", ID: models.ID(strings.Repeat("1", len(f.Added)))}, nil
}

func (f *FakeMovieService) Library(ctx context.Context) ([]models.LibraryMovie, error) {
	return f.Catalogue, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error

	// Requests holds every request seen, in order.
	Requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	if m.response != nil {
		m.response.Request = req
	}
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
