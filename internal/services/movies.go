package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/shared"
)

// Backend routes.
const (
	RouteLogin       = "/api/auth/login"
	RouteRegister    = "/api/auth/register"
	RouteNext        = "/api/movies/random"
	RouteLike        = "/api/movies/like"
	RouteDislike     = "/api/movies/dislike"
	RouteProgress    = "/api/debug/movie-counts"
	RouteMatches     = "/api/movies/matches"
	RouteSearch      = "/api/movies/search"
	RouteAdd         = "/api/movies/add"
	RouteLibrary     = "/api/movies/all"
	RouteUserInfo    = "/api/user/info"
	RouteHistory     = "/api/user/movie-history"
	RouteUsers       = "/api/users"
	RouteHealthCheck = "/"
)

var _ MovieAPI = (*MovieService)(nil)

// MovieService implements [MovieAPI] on top of an authenticated [Client].
type MovieService struct {
	client *Client
}

// NewMovieService wraps client, which must carry a token store for everything but Login and Register.
func NewMovieService(client *Client) *MovieService {
	return &MovieService{client: client}
}

// Client exposes the underlying HTTP client for raw requests.
func (s *MovieService) Client() *Client { return s.client }

// Next fetches a random movie the user has not judged yet.
// A 404 means every movie has been seen and is reported as [shared.ErrNoMoreCandidates].
func (s *MovieService) Next(ctx context.Context) (*models.Candidate, error) {
	resp, err := s.client.Get(ctx, RouteNext)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.NotFound() {
			return nil, shared.ErrNoMoreCandidates
		}
		return nil, err
	}

	var candidate models.Candidate
	if err := resp.Decode(&candidate); err != nil {
		return nil, err
	}
	if candidate.ID == "" {
		return nil, fmt.Errorf("%w: movie without id", shared.ErrInvalidResponse)
	}
	return &candidate, nil
}

// Progress fetches the seen/unseen counters for the current user.
func (s *MovieService) Progress(ctx context.Context) (*models.Progress, error) {
	var progress models.Progress
	if err := s.getJSON(ctx, RouteProgress, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// Decide records a like or dislike for the movie; both mark it as seen.
func (s *MovieService) Decide(ctx context.Context, candidateID models.ID, decision models.Decision) error {
	route := RouteDislike
	if decision == models.Like {
		route = RouteLike
	}

	body := struct {
		MovieID models.ID `json:"movieId"`
	}{candidateID}

	_, err := s.client.Request(ctx, http.MethodPost, route, body)
	return err
}

// Login exchanges credentials for an access token.
func (s *MovieService) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := s.client.Request(ctx, http.MethodPost, RouteLogin, credentials{username, password})
	if err != nil {
		return "", err
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := resp.Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: missing access token", shared.ErrInvalidResponse)
	}
	return payload.AccessToken, nil
}

// Register creates a new account.
func (s *MovieService) Register(ctx context.Context, username, password string) error {
	_, err := s.client.Request(ctx, http.MethodPost, RouteRegister, credentials{username, password})
	return err
}

// UserInfo returns the logged-in account.
func (s *MovieService) UserInfo(ctx context.Context) (*models.UserInfo, error) {
	var info models.UserInfo
	if err := s.getJSON(ctx, RouteUserInfo, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// History lists the logged-in user's decisions.
func (s *MovieService) History(ctx context.Context) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	if err := s.getJSON(ctx, RouteHistory, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Users lists every account.
func (s *MovieService) Users(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.getJSON(ctx, RouteUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Matches returns the movies liked by every user in userIDs.
func (s *MovieService) Matches(ctx context.Context, userIDs []int) ([]models.Match, error) {
	if len(userIDs) < 2 {
		return nil, shared.ErrNotEnoughUsers
	}

	body := struct {
		UserIDs []int `json:"userIds"`
	}{userIDs}

	resp, err := s.client.Request(ctx, http.MethodPost, RouteMatches, body)
	if err != nil {
		return nil, err
	}

	matches := []models.Match{}
	if err := resp.Decode(&matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// Search looks titles up in the external movie database.
// Several titles can be separated by ";". No hit at all is reported as [shared.ErrNoSearchResults].
func (s *MovieService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrMissingArgument)
	}

	resp, err := s.client.Get(ctx, RouteSearch+"?query="+url.QueryEscape(query))
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.NotFound() {
			return nil, shared.ErrNoSearchResults
		}
		return nil, err
	}

	results := []models.SearchResult{}
	if err := resp.Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, shared.ErrNoSearchResults
	}
	return results, nil
}

// Add stores a search hit in the catalogue.
func (s *MovieService) Add(ctx context.Context, movie models.SearchResult) (*models.AddResult, error) {
	resp, err := s.client.Request(ctx, http.MethodPost, RouteAdd, movie)
	if err != nil {
		return nil, err
	}

	var result models.AddResult
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Library lists every movie with its likes and the users who have not seen it.
func (s *MovieService) Library(ctx context.Context) ([]models.LibraryMovie, error) {
	movies := []models.LibraryMovie{}
	if err := s.getJSON(ctx, RouteLibrary, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (s *MovieService) getJSON(ctx context.Context, path string, v any) error {
	resp, err := s.client.Get(ctx, path)
	if err != nil {
		return err
	}
	return resp.Decode(v)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
