// Package tui is an interactive terminal browser for the documentation service.
package tui

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Laisky/aws-documentation-mcp/internal/docs"
)

const (
	// PageLength is the number of characters loaded per page view.
	PageLength = 5000
	// SearchLimit caps the results shown per search.
	SearchLimit  = 10
	requestLimit = 60 * time.Second
)

// Backend is the documentation service the browser drives.
type Backend interface {
	Partition() docs.Partition
	Search(ctx context.Context, phrase string, limit int) ([]docs.SearchResult, error)
	ReadDocumentation(ctx context.Context, url string, maxLength, startIndex int) (string, error)
	Recommendations(ctx context.Context, url string) ([]docs.RecommendationResult, error)
}

// ViewState is the screen currently shown.
type ViewState int

const (
	// ViewSearch shows the search box.
	ViewSearch ViewState = iota
	// ViewResults lists search results.
	ViewResults
	// ViewPage shows a documentation page.
	ViewPage
	// ViewRecommendations lists pages related to the open page.
	ViewRecommendations
)

// docItem is a list entry for both search results and recommendations.
type docItem struct {
	title   string
	url     string
	context string
}

func (i docItem) Title() string { return i.title }

func (i docItem) Description() string {
	if i.context != "" {
		return i.context
	}
	return i.url
}

func (i docItem) FilterValue() string { return i.title }

type searchDoneMsg struct {
	phrase  string
	results []docs.SearchResult
	err     error
}

type pageLoadedMsg struct {
	url        string
	startIndex int
	content    string
	err        error
}

type recommendationsMsg struct {
	url     string
	results []docs.RecommendationResult
	err     error
}

type keyMap struct {
	Enter key.Binding
	Back  key.Binding
	Next  key.Binding
	Prev  key.Binding
	Recs  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Next:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
	Prev:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous page")),
	Recs:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "related pages")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

var nextStartPattern = regexp.MustCompile(`start_index=(\d+)`)

// Model is the Bubble Tea model of the browser.
type Model struct {
	backend Backend
	state   ViewState

	input    textinput.Model
	results  list.Model
	recs     list.Model
	page     viewport.Model
	spinner  spinner.Model
	loading  bool
	status   string
	err      error
	quitting bool

	// pageURL and pageStarts track the open page; pageStarts is the stack of
	// start indexes visited, the last one is shown.
	pageURL    string
	pageStarts []int
	nextStart  int

	width  int
	height int
}

// NewModel creates the browser on top of backend.
func NewModel(backend Backend) Model {
	input := textinput.New()
	input.Placeholder = "search phrase or https://... .html page URL"
	input.CharLimit = 512
	input.Width = 60
	input.Prompt = "> "
	input.PromptStyle = inputLabelStyle
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = progressStyle

	return Model{
		backend: backend,
		state:   ViewSearch,
		input:   input,
		results: newDocList("Search results"),
		recs:    newDocList("Related pages"),
		page:    viewport.New(80, 20),
		spinner: sp,
	}
}

func newDocList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(primaryColor).
		BorderForeground(primaryColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(secondaryColor)

	l := list.New(nil, delegate, 80, 20)
	l.Title = title
	l.Styles.Title = headerStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}

// State returns the current view.
func (m Model) State() ViewState { return m.state }

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.results.SetSize(msg.Width-4, msg.Height-6)
		m.recs.SetSize(msg.Width-4, msg.Height-6)
		m.page.Width = msg.Width - 4
		m.page.Height = msg.Height - 6
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case searchDoneMsg:
		return m.onSearchDone(msg), nil
	case pageLoadedMsg:
		return m.onPageLoaded(msg), nil
	case recommendationsMsg:
		return m.onRecommendations(msg), nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}

		switch m.state {
		case ViewSearch:
			return m.handleSearchKeys(msg)
		case ViewResults:
			return m.handleListKeys(msg, &m.results, ViewSearch)
		case ViewRecommendations:
			return m.handleListKeys(msg, &m.recs, ViewPage)
		case ViewPage:
			return m.handlePageKeys(msg)
		}
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Enter):
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
			return m.openPage(query, 0, true)
		}
		if !m.backend.Partition().Supports(docs.ToolSearchDocumentation) {
			m.err = errors.Errorf("search is not available in partition %s, enter a page URL", m.backend.Partition().Name)
			return m, nil
		}
		m.err = nil
		m.loading = true
		m.status = fmt.Sprintf("searching %q", query)
		return m, tea.Batch(m.spinner.Tick, searchCmd(m.backend, query))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg, l *list.Model, back ViewState) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.state = back
		m.err = nil
		return m, nil

	case key.Matches(msg, keys.Enter):
		item, ok := l.SelectedItem().(docItem)
		if !ok || item.url == "" {
			return m, nil
		}
		return m.openPage(item.url, 0, true)
	}

	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

func (m Model) handlePageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.state = ViewSearch
		if len(m.results.Items()) > 0 {
			m.state = ViewResults
		}
		return m, nil

	case key.Matches(msg, keys.Next):
		if m.nextStart <= 0 {
			m.status = "end of page"
			return m, nil
		}
		return m.openPage(m.pageURL, m.nextStart, false)

	case key.Matches(msg, keys.Prev):
		if len(m.pageStarts) < 2 {
			return m, nil
		}
		m.pageStarts = m.pageStarts[:len(m.pageStarts)-1]
		prev := m.pageStarts[len(m.pageStarts)-1]
		m.pageStarts = m.pageStarts[:len(m.pageStarts)-1]
		return m.openPage(m.pageURL, prev, false)

	case key.Matches(msg, keys.Recs):
		if !m.backend.Partition().Supports(docs.ToolRecommend) {
			m.status = "recommendations are not available in this partition"
			return m, nil
		}
		m.loading = true
		m.status = "loading related pages"
		return m, tea.Batch(m.spinner.Tick, recommendCmd(m.backend, m.pageURL))
	}

	var cmd tea.Cmd
	m.page, cmd = m.page.Update(msg)
	return m, cmd
}

func (m Model) openPage(url string, startIndex int, fresh bool) (tea.Model, tea.Cmd) {
	if fresh {
		m.pageStarts = nil
	}
	m.err = nil
	m.loading = true
	m.status = "loading " + url
	return m, tea.Batch(m.spinner.Tick, readCmd(m.backend, url, startIndex))
}

func (m Model) onSearchDone(msg searchDoneMsg) Model {
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		return m
	}

	items := make([]list.Item, 0, len(msg.results))
	for _, r := range msg.results {
		items = append(items, docItem{title: r.Title, url: r.URL, context: deref(r.Context)})
	}
	m.results.SetItems(items)
	m.results.Title = fmt.Sprintf("Results for %q", msg.phrase)
	m.status = fmt.Sprintf("%d results", len(items))
	m.state = ViewResults
	return m
}

func (m Model) onPageLoaded(msg pageLoadedMsg) Model {
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		return m
	}

	m.pageURL = msg.url
	m.pageStarts = append(m.pageStarts, msg.startIndex)
	m.nextStart = NextStartIndex(msg.content)
	m.page.SetContent(msg.content)
	m.page.GotoTop()
	m.status = fmt.Sprintf("%s from %d", msg.url, msg.startIndex)
	m.state = ViewPage
	return m
}

func (m Model) onRecommendations(msg recommendationsMsg) Model {
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		return m
	}

	items := make([]list.Item, 0, len(msg.results))
	for _, r := range msg.results {
		items = append(items, docItem{title: r.Title, url: r.URL, context: deref(r.Context)})
	}
	m.recs.SetItems(items)
	m.status = fmt.Sprintf("%d related pages", len(items))
	m.state = ViewRecommendations
	return m
}

// NextStartIndex extracts the start_index announced by a truncated page, or 0.
func NextStartIndex(content string) int {
	matches := nextStartPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return 0
	}
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0
	}
	return n
}

func searchCmd(backend Backend, phrase string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestLimit)
		defer cancel()
		results, err := backend.Search(ctx, phrase, SearchLimit)
		return searchDoneMsg{phrase: phrase, results: results, err: err}
	}
}

func readCmd(backend Backend, url string, startIndex int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestLimit)
		defer cancel()
		content, err := backend.ReadDocumentation(ctx, url, PageLength, startIndex)
		return pageLoadedMsg{url: url, startIndex: startIndex, content: content, err: err}
	}
}

func recommendCmd(backend Backend, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestLimit)
		defer cancel()
		results, err := backend.Recommendations(ctx, url)
		return recommendationsMsg{url: url, results: results, err: err}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return subtitleStyle.Render("Goodbye!\n")
	}

	var body, help string
	switch m.state {
	case ViewSearch:
		body = m.renderSearch()
		help = "enter: search or open URL • esc: quit"
	case ViewResults:
		body = m.results.View()
		help = "↑/↓ navigate • enter: open • esc: back"
	case ViewRecommendations:
		body = m.recs.View()
		help = "↑/↓ navigate • enter: open • esc: back to page"
	case ViewPage:
		body = m.page.View()
		help = "↑/↓ scroll • n: next page • p: previous page • r: related • esc: back"
	}

	parts := []string{body}
	if m.err != nil {
		parts = append(parts, errorStyle.Render("error: "+m.err.Error()))
	}
	status := m.status
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	if status != "" {
		parts = append(parts, statusBarStyle.Render(status))
	}
	parts = append(parts, helpStyle.Render(help+" • ctrl+c: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderSearch() string {
	partition := m.backend.Partition()
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("AWS Documentation") + "\n")
	sb.WriteString(subtitleStyle.Render("partition "+partition.Name+" · "+partition.Host) + "\n\n")
	sb.WriteString(inputLabelStyle.Render("Search or page URL:") + "\n")
	sb.WriteString(m.input.View())
	return boxStyle.Render(sb.String())
}
