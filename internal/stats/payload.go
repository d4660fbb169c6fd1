package stats

import (
	"fmt"
	"math"

	"github.com/desertthunder/spins/internal/models"
)

const (
	payloadTracks  = 5
	payloadArtists = 3
)

// FromTopItems shapes Spotify top tracks and artists into the summary payload.
//
// Total minutes are the rounded sum of the top tracks' durations; the service offers no
// time-of-day data here, so the distribution is reported as not available.
func FromTopItems(tracks []models.Track, artists []models.Artist) models.ListeningData {
	var totalMs float64
	for _, t := range tracks {
		totalMs += float64(t.DurationMs)
	}

	data := models.ListeningData{
		TotalMinutes:          int(math.Round(totalMs / 60000)),
		TopTracks:             make([]models.TrackRef, 0, payloadTracks),
		TopArtists:            make([]string, 0, payloadArtists),
		ListeningDistribution: models.NotAvailable,
	}

	for i, t := range tracks {
		if i == payloadTracks {
			break
		}
		data.TopTracks = append(data.TopTracks, models.TrackRef{Title: t.Name, Artist: t.ArtistNames()})
	}
	for i, a := range artists {
		if i == payloadArtists {
			break
		}
		data.TopArtists = append(data.TopArtists, a.Name)
	}
	return data
}

// FromSummary shapes an uploaded history's aggregates into the summary payload.
func FromSummary(s models.StatisticsSummary) models.ListeningData {
	data := models.ListeningData{
		TotalMinutes:          s.TotalMinutes,
		TopTracks:             make([]models.TrackRef, 0, payloadTracks),
		TopArtists:            make([]string, 0, payloadArtists),
		ListeningDistribution: Distribution(s),
	}

	for i, t := range s.TopTracks {
		if i == payloadTracks {
			break
		}
		data.TopTracks = append(data.TopTracks, models.TrackRef{Title: t.Name, Artist: t.Artist})
	}
	for i, a := range s.TopArtists {
		if i == payloadArtists {
			break
		}
		data.TopArtists = append(data.TopArtists, a.Name)
	}
	return data
}

// Distribution describes when the listening happened, or "Not available" for an empty history.
func Distribution(s models.StatisticsSummary) string {
	peak, ok := s.PeakHour()
	if !ok {
		return models.NotAvailable
	}
	return fmt.Sprintf(
		"Most plays around %s (%d plays); %d listening days averaging %d minutes; longest streak %d days",
		peak.Hour, peak.Plays, len(s.DailyMinutes), s.DailyAverageMinutes, s.LongestStreakDays,
	)
}
