package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionChanged MsgKind = iota
	MsgUserLoaded
	MsgMatchesLoaded
	MsgLibraryLoaded
	MsgHistoryLoaded
	MsgSearchDone
	MsgMovieAdded
)

type result[T any] struct {
	value T
	err   error
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]; the view is re-read from the controller.
func sessionChangedMsg() Msg {
	return Msg{kind: MsgSessionChanged}
}

// userLoadedMsg is the constructor for [MsgUserLoaded]
func userLoadedMsg(info *models.UserInfo, err error) Msg {
	return Msg{kind: MsgUserLoaded, data: result[*models.UserInfo]{info, err}}
}

// matchesLoadedMsg is the constructor for [MsgMatchesLoaded]
func matchesLoadedMsg(res *tasks.MatchesResult, err error) Msg {
	return Msg{kind: MsgMatchesLoaded, data: result[*tasks.MatchesResult]{res, err}}
}

// libraryLoadedMsg is the constructor for [MsgLibraryLoaded]
func libraryLoadedMsg(movies []models.LibraryMovie, err error) Msg {
	return Msg{kind: MsgLibraryLoaded, data: result[[]models.LibraryMovie]{movies, err}}
}

// historyLoadedMsg is the constructor for [MsgHistoryLoaded]
func historyLoadedMsg(entries []models.HistoryEntry, err error) Msg {
	return Msg{kind: MsgHistoryLoaded, data: result[[]models.HistoryEntry]{entries, err}}
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(results []models.SearchResult, err error) Msg {
	return Msg{kind: MsgSearchDone, data: result[[]models.SearchResult]{results, err}}
}

// movieAddedMsg is the constructor for [MsgMovieAdded]
func movieAddedMsg(title string, res *models.AddResult, err error) Msg {
	return Msg{kind: MsgMovieAdded, data: addedData{title: title, value: res, err: err}}
}

type addedData struct {
	title string
	value *models.AddResult
	err   error
}
