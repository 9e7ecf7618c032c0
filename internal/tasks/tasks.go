// package tasks implements multi-request operations against the movie matcher backend.
package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
)

// Catalog is the part of the backend the engine orchestrates.
type Catalog interface {
	Users(ctx context.Context) ([]models.User, error)
	Matches(ctx context.Context, userIDs []int) ([]models.Match, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Add(ctx context.Context, movie models.SearchResult) (*models.AddResult, error)
}

// APIClient defines the interface for making raw API requests.
type APIClient interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
}

// MatchesResult contains the compared users and the movies all of them liked.
type MatchesResult struct {
	Users     []models.User  // Users that were compared
	Universal bool           // True when every account was compared
	Matches   []models.Match // Movies liked by all compared users
}

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// DumpResult contains the raw responses of every read-only endpoint.
type DumpResult struct {
	UserInfo any              `json:"user_info"`
	Progress any              `json:"progress"`
	Users    any              `json:"users"`
	History  any              `json:"history"`
	Library  any              `json:"library"`
	Errors   []EndpointResult `json:"-"`
}

type endpointOperation struct {
	path    string
	target  *any
	phase   Phase
	message string
}

// Engine runs operations that span several backend calls, reporting progress on an optional channel.
type Engine struct {
	catalog Catalog
	api     APIClient
}

// NewEngine creates an Engine. Either dependency may be nil if the matching operations are not used.
func NewEngine(catalog Catalog, api APIClient) *Engine {
	return &Engine{catalog: catalog, api: api}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Matches finds the movies liked by every user in usernames. With no usernames, all accounts are compared.
//
// Usernames are matched case-insensitively. Fewer than two resolved users yields [shared.ErrNotEnoughUsers].
func (e *Engine) Matches(ctx context.Context, progress chan<- ProgressUpdate, usernames []string) (*MatchesResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchUsersUpdate(1, 2))
	users, err := e.catalog.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list users: %w", shared.ErrAPIRequest, err)
	}

	selected, err := selectUsers(users, usernames)
	if err != nil {
		return nil, err
	}
	if len(selected) < 2 {
		return nil, fmt.Errorf("%w: found %d", shared.ErrNotEnoughUsers, len(selected))
	}

	ids := make([]int, len(selected))
	for i, u := range selected {
		ids[i] = u.ID
	}

	e.sendProgress(progress, fetchMatchesUpdate(2, 2, len(ids)))
	matches, err := e.catalog.Matches(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch matches: %w", shared.ErrAPIRequest, err)
	}

	slices.SortStableFunc(matches, func(a, b models.Match) int { return b.MatchCount - a.MatchCount })

	return &MatchesResult{
		Users:     selected,
		Universal: len(usernames) == 0,
		Matches:   matches,
	}, nil
}

func selectUsers(users []models.User, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return users, nil
	}

	byName := make(map[string]models.User, len(users))
	for _, u := range users {
		byName[strings.ToLower(u.Username)] = u
	}

	selected := make([]models.User, 0, len(usernames))
	seen := make(map[int]bool, len(usernames))
	for _, name := range usernames {
		u, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown user %q", shared.ErrInvalidArgument, name)
		}
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		selected = append(selected, u)
	}
	return selected, nil
}

// Dump fetches every read-only endpoint for the logged-in user. Failing endpoints are collected, not fatal.
func (e *Engine) Dump(ctx context.Context, progress chan<- ProgressUpdate) (*DumpResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{Errors: []EndpointResult{}}

	endpoints := []endpointOperation{
		{path: services.RouteUserInfo, target: &result.UserInfo, phase: FetchUserInfo, message: "Fetching account..."},
		{path: services.RouteProgress, target: &result.Progress, phase: FetchProgress, message: "Fetching progress..."},
		{path: services.RouteUsers, target: &result.Users, phase: FetchUsers, message: "Fetching users..."},
		{path: services.RouteHistory, target: &result.History, phase: FetchHistory, message: "Fetching history..."},
		{path: services.RouteLibrary, target: &result.Library, phase: FetchLibrary, message: "Fetching library..."},
	}

	total := len(endpoints)
	for i, endpoint := range endpoints {
		e.sendProgress(progress, operationUpdate(endpoint, i+1, total))

		resp, err := e.api.Get(ctx, endpoint.path)
		if err != nil {
			result.Errors = append(result.Errors, EndpointResult{Endpoint: endpoint.path, Error: err})
			continue
		}
		*endpoint.target = resp.JSONData
	}

	return result, nil
}
