package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/repositories"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/tasks"
	tu "github.com/desertthunder/spins/internal/testing"
)

func newTestModel(t *testing.T, files ...string) *Model {
	t.Helper()
	engine := tasks.NewHistoryEngine(repositories.NewHistoryStore(repositories.NewMemoryStore()), tasks.HistoryOpts{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	m := NewModel(context.Background(), engine, nil, files)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// drain runs cmd and feeds its messages back into m until no follow-up command remains.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 50 {
			t.Fatal("too many messages")
		}
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel(t *testing.T) {
	t.Run("starts loading", func(t *testing.T) {
		m := newTestModel(t)
		if m.view != LoadingView {
			t.Errorf("expected LoadingView, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Loading listening history") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("empty store shows import hint", func(t *testing.T) {
		m := newTestModel(t)
		drain(t, m, m.loadSummary())

		if m.view != SummaryView || m.summary != nil {
			t.Fatalf("expected empty SummaryView, got view=%v summary=%v", m.view, m.summary)
		}
		if !strings.Contains(m.View(), "No listening history stored.") {
			t.Errorf("unexpected view:\n%s", m.View())
		}

		_, cmd := m.Update(keyPress("enter"))
		if cmd != nil || m.view != SummaryView {
			t.Error("enter should do nothing without a summary")
		}
	})

	t.Run("imports files with progress", func(t *testing.T) {
		path := tu.WriteHistoryFile(t, "StreamingHistory0.json", tu.SampleHistory)
		m := newTestModel(t, path)

		drain(t, m, m.startImport())

		if m.err != nil {
			t.Fatalf("import failed: %v", m.err)
		}
		if m.view != SummaryView || m.summary == nil {
			t.Fatalf("expected SummaryView with summary, got %v", m.view)
		}
		if m.summary.TotalTracks != 2 || m.summary.TotalMinutes != 5 {
			t.Errorf("unexpected summary %+v", m.summary)
		}
		if m.progress.Phase != tasks.ComputeStats {
			t.Errorf("expected last progress phase compute_stats, got %s", m.progress.Phase)
		}
		if got := len(m.sections.Items()); got != 5 {
			t.Errorf("expected 5 sections without a Spotify session, got %d", got)
		}
		if !strings.Contains(m.View(), "day streak") {
			t.Errorf("summary missing streak:\n%s", m.View())
		}
	})

	t.Run("import failure is shown", func(t *testing.T) {
		path := tu.WriteHistoryFile(t, "broken.json", `{"not":"an array"}`)
		m := newTestModel(t, path)

		drain(t, m, m.startImport())

		if !errors.Is(m.err, shared.ErrParse) {
			t.Fatalf("expected ErrParse, got %v", m.err)
		}
		if !strings.Contains(m.View(), "Error:") {
			t.Errorf("expected error in view:\n%s", m.View())
		}

		m.Update(keyPress("esc"))
		if m.err != nil {
			t.Error("esc should dismiss the error")
		}
	})

	t.Run("drills into sections", func(t *testing.T) {
		path := tu.WriteHistoryFile(t, "StreamingHistory0.json", tu.SampleHistory)
		m := newTestModel(t, path)
		drain(t, m, m.startImport())

		m.Update(keyPress("enter"))
		if m.view != DetailView {
			t.Fatalf("expected DetailView, got %v", m.view)
		}
		if m.detail.Title != "Top artists" || len(m.detail.Items()) != 1 {
			t.Errorf("unexpected detail list %q with %d items", m.detail.Title, len(m.detail.Items()))
		}

		m.Update(keyPress("esc"))
		if m.view != SummaryView {
			t.Errorf("expected esc to return to SummaryView, got %v", m.view)
		}
	})

	t.Run("reload", func(t *testing.T) {
		m := newTestModel(t)
		drain(t, m, m.loadSummary())

		_, cmd := m.Update(keyPress("r"))
		if m.view != LoadingView || cmd == nil {
			t.Errorf("expected reload to return to LoadingView")
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := newTestModel(t)
		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestOverviewMessages(t *testing.T) {
	t.Run("fetched overview opens detail", func(t *testing.T) {
		m := newTestModel(t)
		overview := &models.RecentOverview{
			TotalMinutes: 12,
			TopGenre:     "idm",
			RecentPlays: []models.RecentPlay{
				{Track: models.Track{Name: "Windowlicker", Artists: []string{"Aphex Twin"}}, PlayedAt: time.Now()},
			},
		}

		m.Update(overviewFetchedMsg(overview, nil))
		if m.view != DetailView || m.recent != overview {
			t.Fatalf("expected DetailView with overview, got %v", m.view)
		}
		if !strings.Contains(m.detail.Title, "top genre idm") || len(m.detail.Items()) != 1 {
			t.Errorf("unexpected detail list %q", m.detail.Title)
		}
	})

	t.Run("fetch failure returns to summary", func(t *testing.T) {
		m := newTestModel(t)
		m.Update(overviewFetchedMsg(nil, shared.ErrNotAuthenticated))
		if m.view != SummaryView || !errors.Is(m.err, shared.ErrNotAuthenticated) {
			t.Errorf("expected error on SummaryView, got view=%v err=%v", m.view, m.err)
		}
	})
}

func TestBar(t *testing.T) {
	tc := []struct {
		value, max, width int
		cells             int
	}{
		{0, 10, 10, 0},
		{5, 0, 10, 0},
		{10, 10, 10, 10},
		{5, 10, 10, 5},
		{1, 1000, 10, 1},
	}

	for _, tt := range tc {
		got := strings.Count(bar(tt.value, tt.max, tt.width), "█")
		if got != tt.cells {
			t.Errorf("bar(%d, %d, %d) = %d cells, want %d", tt.value, tt.max, tt.width, got, tt.cells)
		}
	}
}
