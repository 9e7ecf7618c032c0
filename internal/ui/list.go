package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/shared"
)

var (
	_ list.Item = matchItem{}
	_ list.Item = libraryItem{}
	_ list.Item = historyItem{}
	_ list.Item = searchItem{}
)

// matchItem wraps [models.Match] to implement [list.Item].
type matchItem struct {
	match models.Match
}

func (i matchItem) FilterValue() string { return i.match.Title }
func (i matchItem) Title() string       { return i.match.Heading() }
func (i matchItem) Description() string {
	names := make([]string, len(i.match.MatchedUsers))
	for j, u := range i.match.MatchedUsers {
		names[j] = u.Username
	}
	desc := shared.Pluralize(i.match.MatchCount, "like", "likes")
	if len(names) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(names, ", "))
	}
	return desc
}

// libraryItem wraps [models.LibraryMovie] to implement [list.Item].
type libraryItem struct {
	movie models.LibraryMovie
}

func (i libraryItem) FilterValue() string { return i.movie.Title }
func (i libraryItem) Title() string       { return i.movie.Heading() }
func (i libraryItem) Description() string {
	seen := "Seen by all"
	if !i.movie.SeenByAll() {
		names := make([]string, len(i.movie.UnseenBy))
		for j, u := range i.movie.UnseenBy {
			names[j] = u.Username
		}
		seen = "Unseen by " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s • %s • added by %s",
		shared.Pluralize(i.movie.LikesCount, "like", "likes"), seen, i.movie.AddedBy.Username)
}

// historyItem wraps [models.HistoryEntry] to implement [list.Item].
type historyItem struct {
	entry models.HistoryEntry
}

func (i historyItem) FilterValue() string { return i.entry.Title }
func (i historyItem) Title() string       { return i.entry.Title }
func (i historyItem) Description() string {
	if i.entry.Liked {
		return "👍 " + models.Like.Label()
	}
	return "👎 " + models.Dislike.Label()
}

// searchItem wraps [models.SearchResult] to implement [list.Item].
type searchItem struct {
	result models.SearchResult
}

func (i searchItem) FilterValue() string { return i.result.Title }
func (i searchItem) Title() string       { return fmt.Sprintf("%s (%s)", i.result.Title, i.result.Year) }
func (i searchItem) Description() string {
	parts := []string{}
	for _, p := range []string{i.result.Genre, i.result.Runtime, i.result.IMDBRating} {
		if p != "" && p != "N/A" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " • ")
}
