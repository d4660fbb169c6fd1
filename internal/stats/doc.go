// Package stats computes listening aggregates from play histories.
//
// [Compute] is a pure function over an in-memory slice of [models.PlayEvent]: it never reads the clock,
// storage or network, so the current year and the time zone used to derive calendar dates are passed in
// through [Options]. A single pass groups plays by artist, track, date, year and hour; rankings are stable
// so equal totals keep the order in which names were first seen.
//
// [Overview] does the same for the Spotify recently played feed, and the payload builders shape either
// source into the [models.ListeningData] sent to the summary service.
package stats
