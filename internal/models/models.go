// package models defines the data model for the movie matcher client
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// ID is an opaque, server-assigned identifier.
//
// The backend sends integer IDs; they are kept as text and written back as JSON numbers when numeric.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer-looking IDs as numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Decision is a user's judgment on a [Candidate].
type Decision int

const (
	Dislike Decision = iota
	Like
)

func (d Decision) String() string {
	switch d {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	default:
		return ""
	}
}

// Label is the swipe button text.
func (d Decision) Label() string {
	if d == Like {
		return "Want to watch"
	}
	return "Nah"
}

// ParseDecision parses "like"/"dislike" (and the y/n, yes/no shorthands).
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like", "l", "y", "yes":
		return Like, nil
	case "dislike", "d", "n", "no", "nah":
		return Dislike, nil
	default:
		return Dislike, fmt.Errorf("unknown decision %q", s)
	}
}

// Candidate is the movie currently presented for judgment. It is replaced wholesale on advance.
type Candidate struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	Year     int    `json:"year,omitempty"`
	Synopsis string `json:"description"`
	Genre    string `json:"genre"`
	Rating   string `json:"rating"`
	Runtime  string `json:"length"`
	Cast     string `json:"starring"`
	Poster   string `json:"poster"`
}

// Heading returns "Title (Year)", or just the title when the year is unknown.
func (c Candidate) Heading() string {
	if c.Year == 0 {
		return c.Title
	}
	return fmt.Sprintf("%s (%d)", c.Title, c.Year)
}

// Progress is a read-only snapshot of the current user's seen/unseen counts.
type Progress struct {
	Total     int `json:"total_movies"`
	Seen      int `json:"seen_movies"`
	Remaining int `json:"unseen_movies"`
}

// UserRef identifies another account in match and library listings.
type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// User is an account as listed by the backend.
type User = UserRef

// UserInfo is the profile of the logged-in account.
type UserInfo struct {
	Username string `json:"username"`
}

// Match is a movie liked by every compared user.
type Match struct {
	Candidate
	MatchCount   int       `json:"match_count"`
	MatchedUsers []UserRef `json:"matched_users"`
}

// LibraryMovie is a catalogue entry with per-user "seen" status.
type LibraryMovie struct {
	Candidate
	LikesCount int       `json:"likes_count"`
	UnseenBy   []UserRef `json:"unseen_by"`
	AddedBy    UserRef   `json:"added_by"`
}

// SeenByAll reports whether no user is still waiting to judge the movie.
func (m LibraryMovie) SeenByAll() bool {
	return len(m.UnseenBy) == 0
}

// HistoryEntry is one decision from the logged-in user's history.
type HistoryEntry struct {
	Title string `json:"title"`
	Liked bool   `json:"liked"`
}

// SearchResult is an OMDb search hit. It is posted back verbatim to add the movie.
type SearchResult struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated,omitempty"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director,omitempty"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	IMDBRating string `json:"imdbRating"`
	IMDBID     string `json:"imdbID,omitempty"`
	Type       string `json:"Type,omitempty"`
	Response   string `json:"Response,omitempty"`
}

// ReleaseYear parses the leading year of OMDb's Year field ("1999", "2008–2013"); 0 when absent.
func (r SearchResult) ReleaseYear() int {
	digits := r.Year
	if len(digits) > 4 {
		digits = digits[:4]
	}
	year, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return year
}

// Candidate converts the search hit to the shape the backend stores.
func (r SearchResult) Candidate() Candidate {
	return Candidate{
		Title:    r.Title,
		Year:     r.ReleaseYear(),
		Synopsis: r.Plot,
		Genre:    r.Genre,
		Rating:   r.IMDBRating,
		Runtime:  r.Runtime,
		Cast:     r.Actors,
		Poster:   r.Poster,
	}
}

// AddResult is the backend's acknowledgement of an added movie.
type AddResult struct {
	Message string `json:"message"`
	ID      ID     `json:"id"`
}
