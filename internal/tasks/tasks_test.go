package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
	th "github.com/desertthunder/mmx/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	responses map[string]any
}

func (m *mockAPI) Get(ctx context.Context, path string) (*services.APIResponse, error) {
	data, ok := m.responses[path]
	if !ok {
		return nil, &services.HTTPError{Status: 500}
	}
	return &services.APIResponse{StatusCode: 200, IsJSON: true, JSONData: data}, nil
}

// emptyCatalog answers every search with no hits and no error.
type emptyCatalog struct {
	th.FakeMovieService
}

func (c *emptyCatalog) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	return []models.SearchResult{}, nil
}

func users() []models.User {
	return []models.User{{ID: 1, Username: "alice"}, {ID: 2, Username: "Bob"}, {ID: 3, Username: "carol"}}
}

func TestEngineMatches(t *testing.T) {
	ctx := context.Background()

	t.Run("universal when no users given", func(t *testing.T) {
		svc := &th.FakeMovieService{
			UserList: users(),
			MatchList: []models.Match{
				{Candidate: models.Candidate{ID: "1", Title: "Heat"}, MatchCount: 2},
				{Candidate: models.Candidate{ID: "2", Title: "Alien"}, MatchCount: 3},
			},
		}
		progress := make(chan ProgressUpdate, 10)

		result, err := NewEngine(svc, nil).Matches(ctx, progress, nil)
		require.NoError(t, err)
		assert.True(t, result.Universal)
		assert.Len(t, result.Users, 3)
		assert.Equal(t, [][]int{{1, 2, 3}}, svc.MatchCalls)
		assert.Equal(t, "Alien", result.Matches[0].Title, "sorted by match count")

		close(progress)
		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		assert.Equal(t, []Phase{FetchUsers, FetchMatches}, phases)
	})

	t.Run("named users are case-insensitive and deduplicated", func(t *testing.T) {
		svc := &th.FakeMovieService{UserList: users()}

		result, err := NewEngine(svc, nil).Matches(ctx, nil, []string{"bob", "CAROL", "Bob"})
		require.NoError(t, err)
		assert.False(t, result.Universal)
		assert.Equal(t, [][]int{{2, 3}}, svc.MatchCalls)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := &th.FakeMovieService{UserList: users()}
		_, err := NewEngine(svc, nil).Matches(ctx, nil, []string{"alice", "dave"})
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
		assert.Empty(t, svc.MatchCalls)
	})

	t.Run("needs two users", func(t *testing.T) {
		svc := &th.FakeMovieService{UserList: users()[:1]}
		_, err := NewEngine(svc, nil).Matches(ctx, nil, nil)
		assert.ErrorIs(t, err, shared.ErrNotEnoughUsers)
	})

	t.Run("backend failure", func(t *testing.T) {
		svc := &th.FakeMovieService{UserList: users(), MatchesErr: errors.New("db down")}
		_, err := NewEngine(svc, nil).Matches(ctx, nil, nil)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("nil catalog", func(t *testing.T) {
		_, err := NewEngine(nil, nil).Matches(ctx, nil, nil)
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})
}

func TestEngineImport(t *testing.T) {
	ctx := context.Background()
	found := []models.SearchResult{
		{Title: "Alien", Year: "1979"},
		{Title: "Heat", Year: "1995"},
	}

	t.Run("adds first hit per title in order", func(t *testing.T) {
		svc := &th.FakeMovieService{Found: found}
		progress := make(chan ProgressUpdate, 20)

		summary, err := NewEngine(svc, nil).Import(ctx, progress, []string{"heat", "alien", "zzz"}, ImportOpts{RateLimit: 1000})
		require.NoError(t, err)

		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 2, summary.Added)
		assert.Equal(t, 1, summary.Failed)
		require.Len(t, summary.Results, 3)
		assert.Equal(t, "Heat", summary.Results[0].Movie.Title)
		assert.Equal(t, "Alien", summary.Results[1].Movie.Title)
		assert.ErrorIs(t, summary.Results[2].Error, shared.ErrNoSearchResults)
		assert.Len(t, svc.Added, 2)
		assert.NotEmpty(t, progress)
	})

	t.Run("dry run adds nothing", func(t *testing.T) {
		svc := &th.FakeMovieService{Found: found}

		summary, err := NewEngine(svc, nil).Import(ctx, nil, []string{"alien"}, ImportOpts{DryRun: true, RateLimit: 1000})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Skipped)
		assert.Empty(t, svc.Added)
	})

	t.Run("add failure is reported per title", func(t *testing.T) {
		svc := &th.FakeMovieService{Found: found, AddErr: errors.New("already exists")}

		summary, err := NewEngine(svc, nil).Import(ctx, nil, []string{"alien"}, ImportOpts{RateLimit: 1000})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		assert.ErrorContains(t, summary.Results[0].Error, "already exists")
	})

	t.Run("empty search without error", func(t *testing.T) {
		svc := &emptyCatalog{}

		summary, err := NewEngine(svc, nil).Import(ctx, nil, []string{"alien"}, ImportOpts{RateLimit: 1000})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		assert.ErrorIs(t, summary.Results[0].Error, shared.ErrNoSearchResults)
		assert.Nil(t, summary.Results[0].Movie)
		assert.Empty(t, svc.Added)
	})

	t.Run("no titles", func(t *testing.T) {
		_, err := NewEngine(&th.FakeMovieService{}, nil).Import(ctx, nil, nil, ImportOpts{})
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewEngine(&th.FakeMovieService{Found: found}, nil).Import(cctx, nil, []string{"alien"}, ImportOpts{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReadTitles(t *testing.T) {
	input := "# favourites\nHeat\n\n  Alien ; Ronin;\n"
	titles, err := ReadTitles(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat", "Alien", "Ronin"}, titles)
}

func TestEngineDump(t *testing.T) {
	ctx := context.Background()

	t.Run("collects endpoint errors", func(t *testing.T) {
		api := &mockAPI{responses: map[string]any{
			services.RouteUserInfo: map[string]any{"username": "alice"},
			services.RouteUsers:    []any{},
		}}
		progress := make(chan ProgressUpdate, 10)

		result, err := NewEngine(nil, api).Dump(ctx, progress)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"username": "alice"}, result.UserInfo)
		assert.Len(t, result.Errors, 3)
		assert.Len(t, progress, 5)
	})

	t.Run("nil client", func(t *testing.T) {
		_, err := NewEngine(nil, nil).Dump(ctx, nil)
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "fetch_users", FetchUsers.String())
	assert.Equal(t, "add_movies", AddMovies.String())
	assert.Equal(t, "", Phase(99).String())
}
