// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has five views, switched with tab or the number keys:
//  1. [SwipeView] : the swipe card driven by a [session.Controller]
//  2. [MatchesView] : movies every user wants to watch
//  3. [LibraryView] : the whole catalogue with who has yet to see each movie
//  4. [HistoryView] : the logged-in user's likes and dislikes
//  5. [AddView] : search the external movie database and add hits to the catalogue
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving results via the Msg union type.
// Backend calls run inside [tea.Cmd] functions; the swipe view re-reads the controller's view model after each one,
// so the controller stays the only owner of session state.
//
// Keyboard navigation uses vim-style bindings (h/l for nah/want to watch, r to retry, / to search, q to quit) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
