package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/tasks"
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
	MsgSummaryLoaded MsgKind = iota
	MsgOverviewFetched
	MsgProgressUpdate
)

type summaryLoaded struct {
	summary *models.StatisticsSummary
	err     error
}

type overviewFetched struct {
	overview *models.RecentOverview
	err      error
}

// summaryLoadedMsg is the constructor for [MsgSummaryLoaded]
func summaryLoadedMsg(summary *models.StatisticsSummary, err error) Msg {
	return Msg{kind: MsgSummaryLoaded, data: summaryLoaded{summary, err}}
}

// overviewFetchedMsg is the constructor for [MsgOverviewFetched]
func overviewFetchedMsg(overview *models.RecentOverview, err error) Msg {
	return Msg{kind: MsgOverviewFetched, data: overviewFetched{overview, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}
