package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	SummaryView
	DetailView
)

const headerHeight = 12

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	history      *tasks.HistoryEngine
	overview     *tasks.OverviewEngine
	files        []string
	width        int
	height       int
	sections     list.Model
	detail       list.Model
	summary      *models.StatisticsSummary
	recent       *models.RecentOverview
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	spinner      spinner.Model
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a stats browser. When files is non-empty they are imported first,
// replacing the stored history; otherwise the stored history is loaded. overview may be nil.
func NewModel(ctx context.Context, history *tasks.HistoryEngine, overview *tasks.OverviewEngine, files []string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	return &Model{
		ctx:      ctx,
		view:     LoadingView,
		history:  history,
		overview: overview,
		files:    files,
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts the import or load.
func (m *Model) Init() tea.Cmd {
	if len(m.files) > 0 {
		return tea.Batch(m.spinner.Tick, m.startImport())
	}
	return tea.Batch(m.spinner.Tick, m.loadSummary())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case spinner.TickMsg:
		if m.view != LoadingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case SummaryView:
			return m.handleSummaryKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSummaryLoaded:
		data := msg.data.(summaryLoaded)
		m.progressChan, m.done = nil, nil
		m.summary, m.err = data.summary, data.err
		m.view = SummaryView
		if m.summary != nil {
			m.sections = m.newList(sectionItems(m.summary, m.overview != nil), "Sections")
		}
		return m, nil

	case MsgOverviewFetched:
		data := msg.data.(overviewFetched)
		if data.err != nil {
			m.err = data.err
			m.view = SummaryView
			return m, nil
		}
		m.recent = data.overview
		m.detail = m.newList(recentItems(data.overview), fmt.Sprintf("Recently played • %d min • top genre %s", data.overview.TotalMinutes, data.overview.TopGenre))
		m.view = DetailView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case SummaryView:
		return m.renderSummary()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleSummaryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		m.err = nil
		m.view = LoadingView
		return m, tea.Batch(m.spinner.Tick, m.loadSummary())
	case key.Matches(msg, m.keys.back):
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.summary == nil {
			return m, nil
		}
		if item, ok := m.sections.SelectedItem().(sectionItem); ok {
			return m.openSection(item)
		}
		return m, nil
	}

	if m.summary == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.sections, cmd = m.sections.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SummaryView
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *Model) openSection(item sectionItem) (tea.Model, tea.Cmd) {
	s := m.summary

	var items []list.Item
	switch item.section {
	case TopArtistsSection:
		items = rankedItems(s.TopArtists)
	case TopTracksSection:
		items = rankedItems(s.TopTracks)
	case YearlySection:
		items = yearlyItems(s.YearlyMinutes)
	case DailySection:
		items = dailyItems(s.DailyMinutes)
	case HourlySection:
		items = hourlyItems(s.HourlyPlays)
	case RecentSection:
		m.view = LoadingView
		m.progress = tasks.ProgressUpdate{Message: "Fetching recently played from Spotify..."}
		return m, tea.Batch(m.spinner.Tick, m.fetchOverview())
	}

	m.detail = m.newList(items, item.title)
	m.view = DetailView
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SummaryView:
		if m.summary != nil {
			m.sections, cmd = m.sections.Update(msg)
		}
	case DetailView:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m *Model) newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetSize(maxInt(m.width-4, 0), maxInt(m.height-headerHeight, 0))
	return l
}

func (m *Model) resizeLists() {
	w, h := maxInt(m.width-4, 0), maxInt(m.height-headerHeight, 0)
	if m.summary != nil {
		m.sections.SetSize(w, h)
	}
	if m.view == DetailView {
		m.detail.SetSize(w, h)
	}
}

func (m *Model) loadSummary() tea.Cmd {
	return func() tea.Msg {
		if m.history == nil {
			return summaryLoadedMsg(nil, fmt.Errorf("%w: history storage not initialized", shared.ErrServiceUnavailable))
		}
		summary, err := m.history.Load(0)
		return summaryLoadedMsg(summary, err)
	}
}

func (m *Model) startImport() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan, m.done = progress, done

	sources := make([]tasks.Source, len(m.files))
	for i, f := range m.files {
		sources[i] = tasks.FileSource(f)
	}

	go func() {
		summary, err := m.history.Upload(m.ctx, sources, progress)
		done <- summaryLoadedMsg(summary, err)
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) fetchOverview() tea.Cmd {
	return func() tea.Msg {
		overview, err := m.overview.Overview(m.ctx, models.MediumTerm, nil)
		return overviewFetchedMsg(overview, err)
	}
}

func (m *Model) renderLoading() string {
	message := m.progress.Message
	if message == "" {
		message = "Loading listening history..."
	}

	var steps string
	if m.progress.Total > 0 && m.progress.Phase == tasks.ReadFiles {
		steps = styles.help.Render(fmt.Sprintf(" (%d/%d files)", m.progress.Step, m.progress.Total))
	}
	return fmt.Sprintf("%s %s%s\n\n%s", m.spinner.View(), message, steps, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderSummary() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("spins • listening history"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	if m.summary == nil {
		if m.err == nil {
			b.WriteString(styles.warn.Render("No listening history stored."))
			b.WriteString("\nImport your StreamingHistory*.json files with: spins history import <files...>\n\n")
		}
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit}))
		return b.String()
	}

	s := m.summary
	b.WriteString(fmt.Sprintf("%s minutes (%s) • %s plays • %s artists • %s tracks\n",
		styles.value.Render(shared.FormatCount(s.TotalMinutes)),
		shared.FormatMinutes(s.TotalMinutes),
		styles.value.Render(shared.FormatCount(s.TotalTracks)),
		styles.value.Render(shared.FormatCount(s.UniqueArtists)),
		styles.value.Render(shared.FormatCount(s.UniqueTracks)),
	))
	b.WriteString(fmt.Sprintf("%s min/day • %s day streak • %s min this year\n",
		styles.value.Render(fmt.Sprint(s.DailyAverageMinutes)),
		styles.value.Render(fmt.Sprint(s.LongestStreakDays)),
		styles.value.Render(shared.FormatCount(s.TotalMinutesThisYear)),
	))
	if peak, ok := s.PeakHour(); ok {
		b.WriteString(styles.help.Render(fmt.Sprintf("Most plays around %s", peak.Hour)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.sections.View())
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.reload, m.keys.quit}))
	return b.String()
}

func (m *Model) renderDetail() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.detail.View(), m.help.ShortHelpView(helpKeys))
}
