// Package ui implements an interactive terminal stats browser using bubbletea's Elm architecture.
//
// The browser moves between three views:
//  1. [LoadingView] : Import history files or load the stored history, showing ingestion progress
//  2. [SummaryView] : Headline statistics and a menu of sections
//  3. [DetailView] : Rankings, yearly/daily/hourly breakdowns, or the live recently played feed
//
// Progress updates flow through a channel from the HistoryEngine and are drained one message at a time.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
