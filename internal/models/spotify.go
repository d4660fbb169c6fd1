package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange selects the window Spotify uses to compute a user's top items.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // ~4 weeks
	MediumTerm TimeRange = "medium_term" // ~6 months
	LongTerm   TimeRange = "long_term"   // ~1 year
)

// ParseTimeRange accepts the API values plus the short aliases "short", "medium" and "long".
//
// An empty string selects [MediumTerm].
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium", "medium_term":
		return MediumTerm, nil
	case "short", "short_term":
		return ShortTerm, nil
	case "long", "long_term":
		return LongTerm, nil
	default:
		return "", fmt.Errorf("unknown time range %q", s)
	}
}

// Label returns a display label for the range.
func (r TimeRange) Label() string {
	switch r {
	case ShortTerm:
		return "Last 4 weeks"
	case LongTerm:
		return "Last year"
	default:
		return "Last 6 months"
	}
}

// Track represents a track returned by the Spotify Web API.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	DurationMs int      `json:"durationMs"`
	Popularity int      `json:"popularity"`
}

// ArtistNames joins the track's artists with ", ".
func (t Track) ArtistNames() string {
	return strings.Join(t.Artists, ", ")
}

// Artist represents an artist returned by the Spotify Web API.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Followers  int      `json:"followers"`
}

// RecentPlay is one item of the recently played feed.
type RecentPlay struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"playedAt"`
}

// Profile is the authenticated user's public profile.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"`
	Followers   int    `json:"followers"`
}

// Username prefers the display name and falls back to the account id.
func (p Profile) Username() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.ID
}

// RecentOverview aggregates the recently played feed for the dashboard.
type RecentOverview struct {
	TimeRange            TimeRange      `json:"timeRange"`
	TotalMinutes         int            `json:"totalMinutes"`
	TotalTracks          int            `json:"totalTracks"`
	MostPlayedArtist     string         `json:"mostPlayedArtist"`
	AvgListeningDuration float64        `json:"avgListeningDuration"`
	TopGenre             string         `json:"topGenre"`
	DailyMinutes         []DailyMinutes `json:"dailyMinutes"`
	HourlyPlays          []HourlyPlays  `json:"hourlyPlays"`
	TopArtists           []Artist       `json:"topArtists"`
	RecentPlays          []RecentPlay   `json:"recentPlays"`
}
