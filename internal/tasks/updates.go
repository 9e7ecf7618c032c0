package tasks

import (
	"fmt"

	"github.com/desertthunder/mmx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchUsers Phase = iota
	FetchMatches
	FetchUserInfo
	FetchProgress
	FetchHistory
	FetchLibrary
	SearchMovies
	AddMovies
)

func (p Phase) String() string {
	switch p {
	case FetchUsers:
		return "fetch_users"
	case FetchMatches:
		return "fetch_matches"
	case FetchUserInfo:
		return "fetch_user_info"
	case FetchProgress:
		return "fetch_progress"
	case FetchHistory:
		return "fetch_history"
	case FetchLibrary:
		return "fetch_library"
	case SearchMovies:
		return "search_movies"
	case AddMovies:
		return "add_movies"
	default:
		return ""
	}
}

func fetchUsersUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchUsers,
		Step:    step,
		Total:   total,
		Message: "Fetching users...",
	}
}

func fetchMatchesUpdate(step, total, users int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMatches,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Comparing likes across %d users...", users),
	}
}

func operationUpdate(endpoint endpointOperation, step int, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   endpoint.phase,
		Step:    step,
		Total:   total,
		Message: endpoint.message,
	}
}

func searchingUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching: %s...", step, total, title),
	}
}

func importedUpdate(step, total int, movie models.SearchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, movie.Title, movie.Year),
		Data:    movie,
	}
}

func importFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
