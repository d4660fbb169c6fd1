package models

import (
	"errors"
	"time"
)

// HistoryKey is the blob store key holding the serialized listening history.
const HistoryKey = "spotifyHistory"

const msPerMinute = 60000.0

// PlayEvent is one playback record from a listening history export.
//
// EndTime is kept in UTC; calendar dates are derived from it in the caller's zone.
type PlayEvent struct {
	EndTime    time.Time `json:"endTime"`
	ArtistName string    `json:"artistName"`
	TrackName  string    `json:"trackName"`
	MsPlayed   int64     `json:"msPlayed"`
}

// Minutes converts MsPlayed to fractional minutes.
func (e PlayEvent) Minutes() float64 {
	return float64(e.MsPlayed) / msPerMinute
}

// Validate checks the invariants a stored event must satisfy.
func (e PlayEvent) Validate() error {
	switch {
	case e.EndTime.IsZero():
		return errors.New("endTime is required")
	case e.ArtistName == "":
		return errors.New("artistName is required")
	case e.TrackName == "":
		return errors.New("trackName is required")
	case e.MsPlayed < 0:
		return errors.New("msPlayed must not be negative")
	}
	return nil
}

// RankedEntry is one row of a top-N ranking.
//
// Artist is only populated for track rankings and holds the artist of the first play seen for that track.
type RankedEntry struct {
	Name    string `json:"name"`
	Artist  string `json:"artist,omitempty"`
	Minutes int    `json:"minutes"`
	Plays   int    `json:"plays"`
}

// YearlyMinutes is the listening total for one calendar year.
type YearlyMinutes struct {
	Year    string `json:"year"`
	Minutes int    `json:"minutes"`
}

// DailyMinutes is the listening total for one calendar date (YYYY-MM-DD).
type DailyMinutes struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// HourlyPlays counts plays that ended within one hour of the day ("00:00" through "23:00").
type HourlyPlays struct {
	Hour  string `json:"hour"`
	Plays int    `json:"plays"`
}

// StatisticsSummary holds every aggregate derived from a listening history.
//
// It is recomputed from scratch whenever the history changes and is never partially updated.
type StatisticsSummary struct {
	TotalMinutes         int             `json:"totalMinutes"`
	TotalTracks          int             `json:"totalTracks"`
	UniqueArtists        int             `json:"uniqueArtists"`
	UniqueTracks         int             `json:"uniqueTracks"`
	DailyAverageMinutes  int             `json:"dailyAverageMinutes"`
	LongestStreakDays    int             `json:"longestStreakDays"`
	YearlyMinutes        []YearlyMinutes `json:"yearlyMinutes"`
	TopArtists           []RankedEntry   `json:"topArtists"`
	TopTracks            []RankedEntry   `json:"topTracks"`
	TotalMinutesThisYear int             `json:"totalMinutesThisYear"`
	DailyMinutes         []DailyMinutes  `json:"dailyMinutes"`
	HourlyPlays          []HourlyPlays   `json:"hourlyPlays"`
	FirstPlay            time.Time       `json:"firstPlay"`
	LastPlay             time.Time       `json:"lastPlay"`
}

// PeakHour returns the busiest hour bucket, or false when there were no plays.
//
// Ties resolve to the earliest hour.
func (s StatisticsSummary) PeakHour() (HourlyPlays, bool) {
	var peak HourlyPlays
	found := false
	for _, h := range s.HourlyPlays {
		if h.Plays > peak.Plays {
			peak = h
			found = true
		}
	}
	return peak, found
}
