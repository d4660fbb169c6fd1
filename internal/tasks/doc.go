// Package tasks runs the long-lived operations behind the CLI, the web dashboard and the TUI,
// reporting progress over non-blocking channels.
//
// # Engines
//
//  1. [HistoryEngine] : uploaded listening history
//     - [Ingest] reads every history file concurrently (bounded by a worker count)
//     - Events are concatenated in file order; any bad file fails the whole upload
//     - The combined history replaces the stored one and statistics are computed with [stats.Compute]
//
//  2. [OverviewEngine] : live dashboard data
//     - Fetches top artists and the recently played feed from Spotify in parallel
//     - Aggregates them with [stats.Overview]
//
//  3. [InsightEngine] : natural-language summaries
//     - Builds the summary payload from Spotify top items or from the stored history
//     - Sends it to a [services.Summarizer] and archives the reply
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default so a slow consumer never stalls an operation.
//
// # Parse Errors
//
// History files that cannot be decoded produce a [*ParseError] naming the file and, when a single entry
// is at fault, its index. Every ParseError matches [shared.ErrParse].
package tasks
