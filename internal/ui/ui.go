package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/session"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/desertthunder/mmx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SwipeView ViewState = iota
	MatchesView
	LibraryView
	HistoryView
	AddView
)

var viewNames = []string{"Swipe", "Matches", "All Movies", "History", "Add Movie"}

func (v ViewState) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return ""
}

// Browser is the read side of the backend used by the non-swipe views.
type Browser interface {
	UserInfo(ctx context.Context) (*models.UserInfo, error)
	History(ctx context.Context) ([]models.HistoryEntry, error)
	Library(ctx context.Context) ([]models.LibraryMovie, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Add(ctx context.Context, movie models.SearchResult) (*models.AddResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	session *session.Controller
	browser Browser
	engine  *tasks.Engine

	width    int
	height   int
	username string
	busy     bool
	status   string
	err      error

	spinner     spinner.Model
	matchList   list.Model
	libraryList list.Model
	historyList list.Model
	resultList  list.Model
	searchInput textinput.Model
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, ctrl *session.Controller, browser Browser, engine *tasks.Engine) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title.UnsetMarginBottom()

	input := textinput.New()
	input.Placeholder = "Movie titles, separated by ;"
	input.CharLimit = 200

	return &Model{
		ctx:         ctx,
		view:        SwipeView,
		session:     ctrl,
		browser:     browser,
		engine:      engine,
		spinner:     sp,
		matchList:   newList("Universal Matches"),
		libraryList: newList("All Movies"),
		historyList: newList("Your History"),
		resultList:  newList("Search Results"),
		searchInput: input,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init starts the swipe session and loads the account banner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initSession(), m.loadUser())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.matchList, &m.libraryList, &m.historyList, &m.resultList} {
			l.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateActive(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionChanged:
		return m, nil

	case MsgUserLoaded:
		r := msg.data.(result[*models.UserInfo])
		if r.err == nil && r.value != nil {
			m.username = r.value.Username
		}
		return m, nil

	case MsgMatchesLoaded:
		m.busy = false
		r := msg.data.(result[*tasks.MatchesResult])
		if m.fail(r.err) {
			return m, nil
		}
		items := make([]list.Item, len(r.value.Matches))
		for i, match := range r.value.Matches {
			items[i] = matchItem{match: match}
		}
		m.status = ""
		if len(items) == 0 {
			m.status = "No universal matches found yet. Keep swiping!"
		}
		return m, m.matchList.SetItems(items)

	case MsgLibraryLoaded:
		m.busy = false
		r := msg.data.(result[[]models.LibraryMovie])
		if m.fail(r.err) {
			return m, nil
		}
		items := make([]list.Item, len(r.value))
		for i, movie := range r.value {
			items[i] = libraryItem{movie: movie}
		}
		return m, m.libraryList.SetItems(items)

	case MsgHistoryLoaded:
		m.busy = false
		r := msg.data.(result[[]models.HistoryEntry])
		if m.fail(r.err) {
			return m, nil
		}
		items := make([]list.Item, len(r.value))
		for i, entry := range r.value {
			items[i] = historyItem{entry: entry}
		}
		return m, m.historyList.SetItems(items)

	case MsgSearchDone:
		m.busy = false
		r := msg.data.(result[[]models.SearchResult])
		if errors.Is(r.err, shared.ErrNoSearchResults) {
			m.status = "No movies found."
			return m, m.resultList.SetItems(nil)
		}
		if m.fail(r.err) {
			return m, nil
		}
		items := make([]list.Item, len(r.value))
		for i, res := range r.value {
			items[i] = searchItem{result: res}
		}
		m.status = fmt.Sprintf("Found %s. Press enter to add.", shared.Pluralize(len(items), "movie", "movies"))
		m.searchInput.Blur()
		return m, m.resultList.SetItems(items)

	case MsgMovieAdded:
		m.busy = false
		data := msg.data.(addedData)
		if data.err != nil {
			m.err = nil
			m.status = styles.err.Render("Failed to add movie. It might already exist in the database.")
			return m, nil
		}
		status := fmt.Sprintf("✓ Added %s", data.title)
		if data.value != nil && data.value.ID != "" {
			status = fmt.Sprintf("%s (#%s)", status, data.value.ID)
		}
		m.status = styles.ok.Render(status)
		return m, nil
	}
	return m, nil
}

// fail records err for display and reports whether there was one.
func (m *Model) fail(err error) bool {
	if err == nil {
		m.err = nil
		return false
	}
	m.err = err
	return true
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == AddView && m.searchInput.Focused() {
		switch {
		case msg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.searchInput.Blur()
			return m, nil
		case key.Matches(msg, m.keys.enter):
			return m, m.search(m.searchInput.Value())
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	if m.filtering() {
		return m.updateActive(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		return m, m.switchTo((m.view + 1) % ViewState(len(viewNames)))
	case key.Matches(msg, m.keys.prev):
		return m, m.switchTo((m.view + ViewState(len(viewNames)) - 1) % ViewState(len(viewNames)))
	case key.Matches(msg, m.keys.swipe):
		return m, m.switchTo(SwipeView)
	case key.Matches(msg, m.keys.matches):
		return m, m.switchTo(MatchesView)
	case key.Matches(msg, m.keys.library):
		return m, m.switchTo(LibraryView)
	case key.Matches(msg, m.keys.history):
		return m, m.switchTo(HistoryView)
	case key.Matches(msg, m.keys.add):
		return m, m.switchTo(AddView)
	}

	switch m.view {
	case SwipeView:
		return m.handleSwipeKeys(msg)
	case AddView:
		return m.handleAddKeys(msg)
	}
	return m.updateActive(msg)
}

func (m *Model) handleSwipeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vm := m.session.View()
	switch {
	case key.Matches(msg, m.keys.like) && vm.Status == session.StatusReady:
		return m, m.decide(models.Like)
	case key.Matches(msg, m.keys.dislike) && vm.Status == session.StatusReady:
		return m, m.decide(models.Dislike)
	case key.Matches(msg, m.keys.retry):
		if vm.Status == session.StatusFailed || vm.Status == session.StatusExhausted {
			return m, m.retry()
		}
	}
	return m, nil
}

func (m *Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.search):
		m.status = ""
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.resultList.SelectedItem().(searchItem); ok && !m.busy {
			return m, m.addMovie(item.result)
		}
		return m, nil
	}
	return m.updateActive(msg)
}

// switchTo changes view and (re)loads its data.
func (m *Model) switchTo(v ViewState) tea.Cmd {
	m.view = v
	m.err = nil
	m.status = ""

	switch v {
	case MatchesView:
		return m.loadMatches()
	case LibraryView:
		return m.loadLibrary()
	case HistoryView:
		return m.loadHistory()
	case AddView:
		return m.searchInput.Focus()
	case SwipeView:
		return m.refreshProgress()
	}
	return nil
}

func (m *Model) filtering() bool {
	if l := m.activeList(); l != nil {
		return l.FilterState() == list.Filtering
	}
	return false
}

func (m *Model) activeList() *list.Model {
	switch m.view {
	case MatchesView:
		return &m.matchList
	case LibraryView:
		return &m.libraryList
	case HistoryView:
		return &m.historyList
	case AddView:
		return &m.resultList
	}
	return nil
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := m.activeList()
	if l == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

func (m *Model) initSession() tea.Cmd {
	return func() tea.Msg {
		m.session.Initialize(m.ctx)
		return sessionChangedMsg()
	}
}

func (m *Model) decide(d models.Decision) tea.Cmd {
	return func() tea.Msg {
		m.session.SubmitDecision(m.ctx, d)
		return sessionChangedMsg()
	}
}

func (m *Model) retry() tea.Cmd {
	return func() tea.Msg {
		m.session.Retry(m.ctx)
		return sessionChangedMsg()
	}
}

func (m *Model) refreshProgress() tea.Cmd {
	return func() tea.Msg {
		m.session.RefreshProgress(m.ctx)
		return sessionChangedMsg()
	}
}

func (m *Model) loadUser() tea.Cmd {
	if m.browser == nil {
		return nil
	}
	return func() tea.Msg {
		info, err := m.browser.UserInfo(m.ctx)
		return userLoadedMsg(info, err)
	}
}

func (m *Model) loadMatches() tea.Cmd {
	if m.engine == nil {
		return nil
	}
	m.busy = true
	return func() tea.Msg {
		res, err := m.engine.Matches(m.ctx, nil, nil)
		return matchesLoadedMsg(res, err)
	}
}

func (m *Model) loadLibrary() tea.Cmd {
	if m.browser == nil {
		return nil
	}
	m.busy = true
	return func() tea.Msg {
		movies, err := m.browser.Library(m.ctx)
		return libraryLoadedMsg(movies, err)
	}
}

func (m *Model) loadHistory() tea.Cmd {
	if m.browser == nil {
		return nil
	}
	m.busy = true
	return func() tea.Msg {
		entries, err := m.browser.History(m.ctx)
		return historyLoadedMsg(entries, err)
	}
}

func (m *Model) search(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" || m.browser == nil {
		return nil
	}
	m.busy = true
	m.status = ""
	return func() tea.Msg {
		results, err := m.browser.Search(m.ctx, query)
		return searchDoneMsg(results, err)
	}
}

func (m *Model) addMovie(movie models.SearchResult) tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		res, err := m.browser.Add(m.ctx, movie)
		return movieAddedMsg(movie.Title, res, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SwipeView:
		body = m.renderSwipe()
	case AddView:
		body = m.renderAdd()
	default:
		body = m.renderList()
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderHeader(), body, m.renderHelp())
}

func (m *Model) renderHeader() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if ViewState(i) == m.view {
			tabs[i] = styles.tab.Render(label)
		} else {
			tabs[i] = styles.help.Render(label)
		}
	}

	header := strings.Join(tabs, "  ")
	if m.username != "" {
		header = fmt.Sprintf("%s  %s", styles.ok.Render("Welcome, "+m.username+"!"), header)
	}
	return header
}

func (m *Model) renderSwipe() string {
	vm := m.session.View()

	var remaining string
	if vm.Remaining != nil {
		remaining = styles.help.Render(fmt.Sprintf("%s left to swipe", shared.Pluralize(*vm.Remaining, "movie", "movies")))
	}

	switch vm.Status {
	case session.StatusLoading:
		return fmt.Sprintf("%s Loading...", m.spinner.View())
	case session.StatusExhausted:
		return fmt.Sprintf("%s\n\n%s",
			styles.ok.Render("🎉 You've seen all the movies!"),
			styles.help.Render("Check back later or add more movies. Press r to look again."))
	case session.StatusFailed:
		return fmt.Sprintf("%s\n\n%s",
			styles.err.Render("Error: "+vm.ErrorMessage),
			styles.help.Render("Press r to retry."))
	}

	return fmt.Sprintf("%s\n%s", renderCard(*vm.Candidate), remaining)
}

func renderCard(c models.Candidate) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(c.Heading()))
	b.WriteString("\n")

	fields := []struct{ label, value string }{
		{"Genre", c.Genre},
		{"Rating", c.Rating},
		{"Length", c.Runtime},
		{"Starring", c.Cast},
	}
	for _, f := range fields {
		if f.value != "" && f.value != "N/A" {
			fmt.Fprintf(&b, "%s %s\n", styles.warn.Render(f.label+":"), f.value)
		}
	}
	if c.Synopsis != "" {
		fmt.Fprintf(&b, "\n%s\n", c.Synopsis)
	}
	fmt.Fprintf(&b, "\n%s    %s",
		styles.err.Render("← "+models.Dislike.Label()),
		styles.ok.Render(models.Like.Label()+" →"))

	return styles.card.Render(b.String())
}

func (m *Model) renderList() string {
	if m.err != nil {
		return styles.err.Render("Error: " + services.UserMessage(m.err))
	}
	if m.busy {
		return fmt.Sprintf("%s Loading %s...", m.spinner.View(), strings.ToLower(m.view.String()))
	}
	out := m.activeList().View()
	if m.status != "" {
		out = fmt.Sprintf("%s\n%s", styles.warn.Render(m.status), out)
	}
	return out
}

func (m *Model) renderAdd() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Add Movie"))
	b.WriteString("\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	switch {
	case m.busy:
		fmt.Fprintf(&b, "%s Working...", m.spinner.View())
	case m.err != nil:
		b.WriteString(styles.err.Render("Error: " + services.UserMessage(m.err)))
	default:
		if m.status != "" {
			b.WriteString(m.status + "\n")
		}
		if len(m.resultList.Items()) > 0 {
			b.WriteString(m.resultList.View())
		}
	}
	return b.String()
}

func (m *Model) renderHelp() string {
	var bindings []key.Binding
	switch m.view {
	case SwipeView:
		bindings = []key.Binding{m.keys.like, m.keys.dislike, m.keys.retry}
	case AddView:
		bindings = []key.Binding{m.keys.search, m.keys.enter, m.keys.back}
	}
	bindings = append(bindings, m.keys.next, m.keys.quit)
	return m.help.ShortHelpView(bindings)
}
