// Package models defines the domain entities and persistence interfaces for spins.
//
// The package contains three groups of types:
//
// 1. Listening history: the raw export records and their derived aggregates
//   - [PlayEvent] : one playback record from a StreamingHistory export
//   - [StatisticsSummary] : totals, rankings, histograms and streaks computed from a history
//   - [RankedEntry], [YearlyMinutes], [DailyMinutes], [HourlyPlays] : the summary's series
//
// 2. Spotify Web API DTOs: lightweight structs decoupled from the wire format
//   - [Track], [Artist], [RecentPlay], [Profile]
//   - [RecentOverview] : aggregates over the recently played feed
//
// 3. Persistent entities: database-backed models with lifecycle management
//   - [Insight] : a generated listening summary and the payload that produced it
//
// Persistent entities implement the [Model] interface; [Repository] defines CRUD access.
package models
