// package services implements the HTTP side of the movie matcher client
package services

import (
	"context"

	"github.com/desertthunder/mmx/internal/models"
)

// MovieAPI defines every backend operation the client uses.
type MovieAPI interface {
	// Next returns the next undecided movie, or [shared.ErrNoMoreCandidates].
	Next(ctx context.Context) (*models.Candidate, error)

	// Progress returns the seen/unseen counters.
	Progress(ctx context.Context) (*models.Progress, error)

	// Decide records a like/dislike for a movie.
	Decide(ctx context.Context, candidateID models.ID, decision models.Decision) error

	// Login exchanges credentials for a bearer token. Register creates an account.
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) error

	UserInfo(ctx context.Context) (*models.UserInfo, error)
	History(ctx context.Context) ([]models.HistoryEntry, error)
	Users(ctx context.Context) ([]models.User, error)

	// Matches returns movies liked by all of userIDs (at least two).
	Matches(ctx context.Context, userIDs []int) ([]models.Match, error)

	// Search queries the external movie database; Add stores a hit in the catalogue.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Add(ctx context.Context, movie models.SearchResult) (*models.AddResult, error)

	// Library lists the whole catalogue with per-user seen status.
	Library(ctx context.Context) ([]models.LibraryMovie, error)
}
